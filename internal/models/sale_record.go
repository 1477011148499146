package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SaleEventType represents what happened at the counter
type SaleEventType string

const (
	SaleEventConfirmed        SaleEventType = "confirmed"
	SaleEventPaymentInitiated SaleEventType = "payment_initiated"
)

// SaleRecord is one row of the walk-in sales ledger
type SaleRecord struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	SessionID     uuid.UUID       `json:"session_id" db:"session_id"`
	TicketerID    uuid.UUID       `json:"ticketer_id" db:"ticketer_id"`
	ScheduleID    string          `json:"schedule_id" db:"schedule_id"`
	SeatNumber    int             `json:"seat_number" db:"seat_number"`
	Amount        float64         `json:"amount" db:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	EventType     SaleEventType   `json:"event_type" db:"event_type"`
	ReferenceCode *string         `json:"reference_code,omitempty" db:"reference_code"`
	CheckoutURL   *string         `json:"checkout_url,omitempty" db:"checkout_url"`
	IPAddress     string          `json:"ip_address" db:"ip_address"`
	DeviceInfo    json.RawMessage `json:"device_info,omitempty" db:"device_info"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// SalesSummaryLine aggregates ledger rows for one payment method and event
type SalesSummaryLine struct {
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	EventType     SaleEventType `json:"event_type" db:"event_type"`
	Count         int           `json:"count" db:"count"`
	TotalAmount   float64       `json:"total_amount" db:"total_amount"`
}

// SalesSummary is a ticketer's shift report for one day
type SalesSummary struct {
	TicketerID  uuid.UUID          `json:"ticketer_id"`
	Date        string             `json:"date"`
	Lines       []SalesSummaryLine `json:"lines"`
	CashTotal   float64            `json:"cash_total"`
	TicketCount int                `json:"ticket_count"`
}

package models

import (
	"fmt"
	"strings"
	"time"
)

// PaymentMethod represents how a walk-in passenger pays
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodDigital PaymentMethod = "digital"
)

// ParsePaymentMethod converts a request value into a PaymentMethod
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(value))) {
	case PaymentMethodCash:
		return PaymentMethodCash, nil
	case PaymentMethodDigital:
		return PaymentMethodDigital, nil
	default:
		return "", fmt.Errorf("unknown payment method: %q", value)
	}
}

// PaymentStatus represents the payment state of a draft
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// BookingDraft is the in-progress reservation accumulated across wizard steps
type BookingDraft struct {
	ScheduleID     string        `json:"schedule_id"`
	PassengerName  string        `json:"passenger_name"`
	PassengerPhone string        `json:"passenger_phone"`
	PassengerEmail string        `json:"passenger_email,omitempty"`
	SeatNumbers    []int         `json:"seat_numbers"`
	TotalAmount    float64       `json:"total_amount"`
	PaymentMethod  PaymentMethod `json:"payment_method,omitempty"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
}

// NewBookingDraft returns an empty draft
func NewBookingDraft() BookingDraft {
	return BookingDraft{
		SeatNumbers:   []int{},
		PaymentStatus: PaymentStatusPending,
	}
}

// Clone returns a copy that does not share the seat slice
func (d BookingDraft) Clone() BookingDraft {
	clone := d
	clone.SeatNumbers = append([]int{}, d.SeatNumbers...)
	return clone
}

// HasSeat reports whether at least one seat has been recorded
func (d BookingDraft) HasSeat() bool {
	return len(d.SeatNumbers) > 0
}

// CompletedBooking is the server-confirmed result of a submitted draft,
// enriched with the details needed to print a ticket
type CompletedBooking struct {
	ReferenceCode  string        `json:"reference_code"`
	Status         string        `json:"status"`
	Schedule       Schedule      `json:"schedule"`
	SeatNumber     int           `json:"seat_number"`
	PassengerName  string        `json:"passenger_name"`
	PassengerPhone string        `json:"passenger_phone"`
	PassengerEmail string        `json:"passenger_email,omitempty"`
	TotalAmount    float64       `json:"total_amount"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	IssuedAt       time.Time     `json:"issued_at"`
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/walkin-pos/internal/models"
	"github.com/smarttransit/walkin-pos/internal/utils"
)

// ErrLedgerDisabled is returned by read operations when no database is configured
var ErrLedgerDisabled = errors.New("sales ledger is not configured")

// SalesStore persists ledger rows
type SalesStore interface {
	Insert(ctx context.Context, record *models.SaleRecord) error
	Summarize(ctx context.Context, ticketerID uuid.UUID, day time.Time) (*models.SalesSummary, error)
}

// SaleContext identifies who sold a ticket and from where
type SaleContext struct {
	SessionID  uuid.UUID
	TicketerID uuid.UUID
	IPAddress  string
	UserAgent  string
}

// SalesService records counter sales in the ledger. With a nil store every
// write is a no-op.
type SalesService struct {
	store  SalesStore
	logger *logrus.Logger
}

// NewSalesService creates a new sales service. store may be nil.
func NewSalesService(store SalesStore, logger *logrus.Logger) *SalesService {
	return &SalesService{store: store, logger: logger}
}

// Enabled reports whether sales are persisted
func (s *SalesService) Enabled() bool {
	return s.store != nil
}

// RecordConfirmed logs a confirmed cash booking. Failures are logged, not returned.
func (s *SalesService) RecordConfirmed(ctx context.Context, sc SaleContext, booking models.CompletedBooking) {
	ref := booking.ReferenceCode
	s.record(ctx, &models.SaleRecord{
		SessionID:     sc.SessionID,
		TicketerID:    sc.TicketerID,
		ScheduleID:    booking.Schedule.ID,
		SeatNumber:    booking.SeatNumber,
		Amount:        booking.TotalAmount,
		PaymentMethod: booking.PaymentMethod,
		PaymentStatus: booking.PaymentStatus,
		EventType:     models.SaleEventConfirmed,
		ReferenceCode: &ref,
	}, sc)
}

// RecordPaymentInitiated logs a digital checkout handed to the passenger
func (s *SalesService) RecordPaymentInitiated(ctx context.Context, sc SaleContext, draft models.BookingDraft, checkoutURL string) {
	seat := 0
	if draft.HasSeat() {
		seat = draft.SeatNumbers[0]
	}
	s.record(ctx, &models.SaleRecord{
		SessionID:     sc.SessionID,
		TicketerID:    sc.TicketerID,
		ScheduleID:    draft.ScheduleID,
		SeatNumber:    seat,
		Amount:        draft.TotalAmount,
		PaymentMethod: draft.PaymentMethod,
		PaymentStatus: draft.PaymentStatus,
		EventType:     models.SaleEventPaymentInitiated,
		CheckoutURL:   &checkoutURL,
	}, sc)
}

// Summary returns a ticketer's totals for the day containing day
func (s *SalesService) Summary(ctx context.Context, ticketerID uuid.UUID, day time.Time) (*models.SalesSummary, error) {
	if s.store == nil {
		return nil, ErrLedgerDisabled
	}
	return s.store.Summarize(ctx, ticketerID, day)
}

func (s *SalesService) record(ctx context.Context, record *models.SaleRecord, sc SaleContext) {
	if s.store == nil {
		return
	}

	record.IPAddress = sc.IPAddress
	if deviceInfo, err := json.Marshal(utils.ParseUserAgent(sc.UserAgent)); err == nil {
		record.DeviceInfo = deviceInfo
	}

	if err := s.store.Insert(ctx, record); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"session_id":  sc.SessionID,
			"ticketer_id": sc.TicketerID,
			"event_type":  record.EventType,
			"schedule_id": record.ScheduleID,
		}).Error("Failed to record walk-in sale")
	}
}

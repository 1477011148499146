package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/walkin-pos/internal/models"
	"github.com/smarttransit/walkin-pos/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySalesStore struct {
	records   []*models.SaleRecord
	insertErr error
	summary   *models.SalesSummary
}

func (m *memorySalesStore) Insert(ctx context.Context, record *models.SaleRecord) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *memorySalesStore) Summarize(ctx context.Context, ticketerID uuid.UUID, day time.Time) (*models.SalesSummary, error) {
	return m.summary, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var testSaleContext = SaleContext{
	SessionID:  uuid.New(),
	TicketerID: uuid.New(),
	IPAddress:  "203.0.113.7",
	UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/118.0",
}

func TestSalesService_RecordConfirmed(t *testing.T) {
	store := &memorySalesStore{}
	svc := NewSalesService(store, quietLogger())

	svc.RecordConfirmed(context.Background(), testSaleContext, models.CompletedBooking{
		ReferenceCode: "PNR123",
		Schedule:      models.Schedule{ID: "sch-1"},
		SeatNumber:    4,
		TotalAmount:   850,
		PaymentMethod: models.PaymentMethodCash,
		PaymentStatus: models.PaymentStatusPaid,
	})

	require.Len(t, store.records, 1)
	record := store.records[0]
	assert.Equal(t, models.SaleEventConfirmed, record.EventType)
	assert.Equal(t, "sch-1", record.ScheduleID)
	assert.Equal(t, 4, record.SeatNumber)
	require.NotNil(t, record.ReferenceCode)
	assert.Equal(t, "PNR123", *record.ReferenceCode)
	assert.Nil(t, record.CheckoutURL)
	assert.Equal(t, testSaleContext.TicketerID, record.TicketerID)
	assert.Equal(t, "203.0.113.7", record.IPAddress)

	var device utils.DeviceInfo
	require.NoError(t, json.Unmarshal(record.DeviceInfo, &device))
	assert.Equal(t, "desktop", device.DeviceType)
}

func TestSalesService_RecordPaymentInitiated(t *testing.T) {
	store := &memorySalesStore{}
	svc := NewSalesService(store, quietLogger())

	draft := models.NewBookingDraft()
	draft.ScheduleID = "sch-1"
	draft.SeatNumbers = []int{7}
	draft.TotalAmount = 850
	draft.PaymentMethod = models.PaymentMethodDigital

	svc.RecordPaymentInitiated(context.Background(), testSaleContext, draft, "https://pay.example.com/abc")

	require.Len(t, store.records, 1)
	record := store.records[0]
	assert.Equal(t, models.SaleEventPaymentInitiated, record.EventType)
	assert.Equal(t, 7, record.SeatNumber)
	assert.Equal(t, models.PaymentStatusPending, record.PaymentStatus)
	require.NotNil(t, record.CheckoutURL)
	assert.Equal(t, "https://pay.example.com/abc", *record.CheckoutURL)
	assert.Nil(t, record.ReferenceCode)
}

func TestSalesService_InsertFailureIsSwallowed(t *testing.T) {
	store := &memorySalesStore{insertErr: errors.New("db down")}
	svc := NewSalesService(store, quietLogger())

	assert.NotPanics(t, func() {
		svc.RecordConfirmed(context.Background(), testSaleContext, models.CompletedBooking{ReferenceCode: "PNR1"})
	})
	assert.Empty(t, store.records)
}

func TestSalesService_Disabled(t *testing.T) {
	svc := NewSalesService(nil, quietLogger())
	assert.False(t, svc.Enabled())

	svc.RecordConfirmed(context.Background(), testSaleContext, models.CompletedBooking{ReferenceCode: "PNR1"})
	svc.RecordPaymentInitiated(context.Background(), testSaleContext, models.NewBookingDraft(), "https://pay.example.com")

	_, err := svc.Summary(context.Background(), uuid.New(), time.Now())
	assert.ErrorIs(t, err, ErrLedgerDisabled)
}

func TestSalesService_Summary(t *testing.T) {
	want := &models.SalesSummary{Date: "2026-10-14", CashTotal: 1700, TicketCount: 2}
	svc := NewSalesService(&memorySalesStore{summary: want}, quietLogger())
	assert.True(t, svc.Enabled())

	got, err := svc.Summary(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

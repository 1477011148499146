package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smarttransit/walkin-pos/internal/models"
)

// SalesRepository handles walk_in_sales database operations
type SalesRepository struct {
	db DB
}

// NewSalesRepository creates a new SalesRepository
func NewSalesRepository(db DB) *SalesRepository {
	return &SalesRepository{db: db}
}

// Insert appends a record to the ledger. ID and CreatedAt are filled in when zero.
func (r *SalesRepository) Insert(ctx context.Context, record *models.SaleRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO walk_in_sales (
			id, session_id, ticketer_id, schedule_id, seat_number, amount,
			payment_method, payment_status, event_type, reference_code,
			checkout_url, ip_address, device_info, created_at
		) VALUES (
			:id, :session_id, :ticketer_id, :schedule_id, :seat_number, :amount,
			:payment_method, :payment_status, :event_type, :reference_code,
			:checkout_url, :ip_address, :device_info, :created_at
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to insert walk-in sale: %w", err)
	}
	return nil
}

// Summarize totals a ticketer's ledger rows for the calendar day containing day
func (r *SalesRepository) Summarize(ctx context.Context, ticketerID uuid.UUID, day time.Time) (*models.SalesSummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	query := `
		SELECT payment_method, event_type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount
		FROM walk_in_sales
		WHERE ticketer_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY payment_method, event_type
		ORDER BY payment_method, event_type
	`

	lines := []models.SalesSummaryLine{}
	if err := r.db.SelectContext(ctx, &lines, query, ticketerID, start, end); err != nil {
		return nil, fmt.Errorf("failed to summarize walk-in sales: %w", err)
	}

	summary := &models.SalesSummary{
		TicketerID: ticketerID,
		Date:       start.Format("2006-01-02"),
		Lines:      lines,
	}
	for _, line := range lines {
		if line.EventType != models.SaleEventConfirmed {
			continue
		}
		summary.TicketCount += line.Count
		if line.PaymentMethod == models.PaymentMethodCash {
			summary.CashTotal += line.TotalAmount
		}
	}
	return summary, nil
}

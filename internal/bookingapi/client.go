// Package bookingapi is the REST client for the remote booking service that
// owns schedules, seat occupancy, bookings and digital payments.
package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/walkin-pos/internal/models"
)

// DefaultTimeout bounds every call to the booking service
const DefaultTimeout = 30 * time.Second

// Config holds connection settings for the booking service
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the booking service. Use ForUser to obtain a client that
// acts on behalf of an authenticated ticketer.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

// New creates a booking service client
func New(cfg Config, logger *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// ForUser returns a client that forwards the ticketer's bearer token
func (c *Client) ForUser(auth models.AuthContext) *UserClient {
	return &UserClient{client: c, auth: auth}
}

// UserClient is a booking service client scoped to one authenticated user
type UserClient struct {
	client *Client

	mu   sync.RWMutex
	auth models.AuthContext
}

// SetAuth replaces the forwarded credentials, e.g. after the ticketer's token
// was renewed. Calls for a different user are ignored.
func (u *UserClient) SetAuth(auth models.AuthContext) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if auth.UserID == u.auth.UserID {
		u.auth = auth
	}
}

func (u *UserClient) currentAuth() models.AuthContext {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.auth
}

// BookingResult is the server answer to a created booking
type BookingResult struct {
	ReferenceCode string `json:"reference_code"`
	Status        string `json:"status"`
}

// PaymentRequest asks the booking service to start a digital checkout
type PaymentRequest struct {
	Amount    float64             `json:"amount"`
	ReturnURL string              `json:"return_url"`
	Draft     models.BookingDraft `json:"booking"`
	// IdempotencyKey is sent as a header, not in the body
	IdempotencyKey string `json:"-"`
}

// PaymentSession is the checkout the passenger must be redirected to
type PaymentSession struct {
	CheckoutURL string `json:"checkout_url"`
}

type occupiedSeatsBody struct {
	OccupiedSeats []int `json:"occupied_seats"`
}

// ListSchedules returns the schedules matching filter
func (u *UserClient) ListSchedules(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error) {
	query := url.Values{}
	if filter.Date != "" {
		query.Set("date", filter.Date)
	}

	var schedules []models.Schedule
	if err := u.do(ctx, "list_schedules", http.MethodGet, "/api/v1/schedules", query, nil, nil, &schedules); err != nil {
		return nil, err
	}
	if schedules == nil {
		schedules = []models.Schedule{}
	}
	return schedules, nil
}

// GetOccupiedSeats returns the seat numbers already booked on a schedule
func (u *UserClient) GetOccupiedSeats(ctx context.Context, scheduleID string) ([]int, error) {
	path := fmt.Sprintf("/api/v1/schedules/%s/occupied-seats", url.PathEscape(scheduleID))

	var body occupiedSeatsBody
	if err := u.do(ctx, "get_occupied_seats", http.MethodGet, path, nil, nil, nil, &body); err != nil {
		return nil, err
	}
	if body.OccupiedSeats == nil {
		return []int{}, nil
	}
	return body.OccupiedSeats, nil
}

// CreateBooking submits a draft. Retries of the same submission must pass
// the same idempotencyKey; an empty key is replaced with a fresh one.
func (u *UserClient) CreateBooking(ctx context.Context, draft models.BookingDraft, idempotencyKey string) (*BookingResult, error) {
	headers := idempotencyHeaders(idempotencyKey)

	var result BookingResult
	if err := u.do(ctx, "create_booking", http.MethodPost, "/api/v1/bookings", nil, draft, headers, &result); err != nil {
		return nil, err
	}
	if result.ReferenceCode == "" {
		return nil, fmt.Errorf("create booking: response has no reference code")
	}
	return &result, nil
}

// InitializePayment starts a digital checkout for the draft
func (u *UserClient) InitializePayment(ctx context.Context, req PaymentRequest) (*PaymentSession, error) {
	var session PaymentSession
	if err := u.do(ctx, "initialize_payment", http.MethodPost, "/api/v1/payments/initialize", nil, req, idempotencyHeaders(req.IdempotencyKey), &session); err != nil {
		return nil, err
	}
	if session.CheckoutURL == "" {
		return nil, fmt.Errorf("initialize payment: response has no checkout url")
	}
	return &session, nil
}

func (u *UserClient) do(ctx context.Context, op, method, path string, query url.Values, payload interface{}, headers map[string]string, out interface{}) error {
	auth := u.currentAuth()
	endpoint := u.client.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth.Token != "" {
		req.Header.Set("Authorization", "Bearer "+auth.Token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := u.client.client.Do(req)
	fields := logrus.Fields{
		"op":         op,
		"method":     method,
		"path":       path,
		"user_id":    auth.UserID,
		"latency_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		u.client.logger.WithFields(fields).WithError(err).Error("Booking service request failed")
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w: failed to read response: %v", op, ErrUnavailable, err)
	}

	fields["status_code"] = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody errorBody
		if len(respBody) > 0 {
			// A non-JSON error body still yields an APIError with the status text
			_ = json.Unmarshal(respBody, &errBody)
		}
		apiErr := newAPIError(resp.StatusCode, errBody)
		u.client.logger.WithFields(fields).WithField("message", apiErr.Message).Warn("Booking service rejected request")
		return fmt.Errorf("%s: %w", op, apiErr)
	}

	u.client.logger.WithFields(fields).Debug("Booking service request completed")

	envelope := struct {
		Data interface{} `json:"data"`
	}{Data: out}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("%s: failed to parse response: %w", op, err)
	}
	return nil
}

func idempotencyHeaders(key string) map[string]string {
	if key == "" {
		key = uuid.NewString()
	}
	return map[string]string{"Idempotency-Key": key}
}

// IsUnavailable reports whether err is a transport failure or timeout
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// AsAPIError extracts an APIError from err
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

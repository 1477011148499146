// Package wizard drives the walk-in booking flow: schedule selection, seat
// selection, passenger and payment entry, confirmation.
package wizard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/walkin-pos/internal/bookingapi"
	"github.com/smarttransit/walkin-pos/internal/models"
	"github.com/smarttransit/walkin-pos/internal/seats"
)

// BookingService is the remote booking backend as seen by the wizard
type BookingService interface {
	ListSchedules(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error)
	GetOccupiedSeats(ctx context.Context, scheduleID string) ([]int, error)
	CreateBooking(ctx context.Context, draft models.BookingDraft, idempotencyKey string) (*bookingapi.BookingResult, error)
	InitializePayment(ctx context.Context, req bookingapi.PaymentRequest) (*bookingapi.PaymentSession, error)
}

// TicketRenderer turns a confirmed booking into a printable document
type TicketRenderer interface {
	Render(booking models.CompletedBooking) ([]byte, error)
}

// PhoneValidator normalises passenger phone numbers
type PhoneValidator interface {
	Sanitize(phone string) string
	Validate(phone string) (string, error)
}

// Options configures a Wizard
type Options struct {
	// ReturnURL is where the payment provider sends the passenger after checkout
	ReturnURL string
	// PhoneValidator is optional; without it phones are only trimmed
	PhoneValidator PhoneValidator
	// StrictPhone rejects phones the validator does not accept
	StrictPhone bool
	Logger      *logrus.Entry
	Now         func() time.Time
}

// PassengerInfo is the data entered on the passenger/payment step
type PassengerInfo struct {
	Name          string
	Phone         string
	Email         string
	PaymentMethod string
}

// Outcome is the result of a successful submission. Exactly one of Booking
// (cash) or CheckoutURL (digital) is set.
type Outcome struct {
	Booking     *models.CompletedBooking
	CheckoutURL string
	// Draft is the submitted draft
	Draft models.BookingDraft
}

// Wizard is one ticketer's in-progress walk-in booking. It is safe for
// concurrent use; at most one network call is outstanding at a time.
type Wizard struct {
	svc      BookingService
	renderer TicketRenderer
	opts     Options
	logger   *logrus.Entry

	mu        sync.Mutex
	step      Step
	draft     models.BookingDraft
	schedules []models.Schedule
	filter    models.ScheduleFilter
	busy      bool
	// submitKey identifies the current submission attempt across retries.
	// It is reset when the schedule or seat changes and after success.
	submitKey string
}

// New creates a wizard in the SelectingSchedule step
func New(svc BookingService, renderer TicketRenderer, opts Options) *Wizard {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Wizard{
		svc:       svc,
		renderer:  renderer,
		opts:      opts,
		logger:    logger,
		step:      SelectingSchedule{Schedules: []models.Schedule{}},
		draft:     models.NewBookingDraft(),
		schedules: []models.Schedule{},
	}
}

// Step returns the current step
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Draft returns a copy of the booking draft
func (w *Wizard) Draft() models.BookingDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Clone()
}

// Busy reports whether a network call is outstanding
func (w *Wizard) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// LoadSchedules fetches the schedule list. Allowed only while selecting a schedule.
func (w *Wizard) LoadSchedules(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error) {
	w.mu.Lock()
	if err := w.checkLocked(StepSelectingSchedule); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.busy = true
	w.mu.Unlock()

	schedules, err := w.svc.ListSchedules(ctx, filter)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if err != nil {
		w.logger.WithError(err).WithField("date", filter.Date).Warn("Failed to load schedules")
		return nil, newFetchError("list_schedules", err)
	}

	w.schedules = schedules
	w.filter = filter
	w.step = SelectingSchedule{Schedules: schedules}
	return schedules, nil
}

// ChooseSchedule selects a departure and loads its seat map
func (w *Wizard) ChooseSchedule(ctx context.Context, scheduleID string) (Step, error) {
	w.mu.Lock()
	if err := w.checkLocked(StepSelectingSchedule); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	schedule, ok := w.findScheduleLocked(scheduleID)
	if !ok {
		w.mu.Unlock()
		return nil, &ValidationError{
			Fields: map[string]string{"schedule_id": fmt.Sprintf("Schedule %q is not in the current list", scheduleID)},
			Err:    ErrUnknownSchedule,
		}
	}
	w.busy = true
	w.mu.Unlock()

	occupied, err := w.svc.GetOccupiedSeats(ctx, schedule.ID)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if err != nil {
		w.logger.WithError(err).WithField("schedule_id", schedule.ID).Warn("Failed to load occupied seats")
		return nil, newFetchError("get_occupied_seats", err)
	}

	occupied = seats.NormalizeOccupied(schedule.TotalSeats, occupied)
	draft := models.NewBookingDraft()
	draft.ScheduleID = schedule.ID
	draft.TotalAmount = schedule.Fare

	w.draft = draft
	w.submitKey = ""
	w.step = SelectingSeat{
		Schedule:  schedule,
		Occupied:  occupied,
		Available: seats.Available(schedule.TotalSeats, occupied),
	}
	return w.step, nil
}

// ChooseSeat records the single seat for this booking. It is also accepted
// on the passenger step so a seat can be corrected after a conflict.
func (w *Wizard) ChooseSeat(seat int) (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		return nil, ErrBusy
	}

	var schedule models.Schedule
	var occupied, available []int
	switch s := w.step.(type) {
	case SelectingSeat:
		schedule, occupied, available = s.Schedule, s.Occupied, s.Available
	case EnteringPassengerInfo:
		schedule, occupied, available = s.Schedule, s.Occupied, s.Available
	default:
		return nil, ErrInvalidTransition
	}

	if !seats.IsAvailable(available, seat) {
		return nil, &ValidationError{
			Fields: map[string]string{"seat_number": fmt.Sprintf("Seat %d is not available", seat)},
			Err:    ErrSeatUnavailable,
		}
	}

	if !w.draft.HasSeat() || w.draft.SeatNumbers[0] != seat {
		w.submitKey = ""
	}
	w.draft.SeatNumbers = []int{seat}
	w.step = EnteringPassengerInfo{
		Schedule:  schedule,
		Occupied:  occupied,
		Available: available,
		Seat:      seat,
	}
	return w.step, nil
}

// Submit validates the passenger details and either creates the booking
// (cash) or starts a digital checkout. On any error the wizard stays on the
// passenger step.
func (w *Wizard) Submit(ctx context.Context, info PassengerInfo) (*Outcome, error) {
	w.mu.Lock()
	if err := w.checkLocked(StepEnteringPassengerInfo); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	current := w.step.(EnteringPassengerInfo)

	draft, err := w.validateLocked(current, info)
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}

	switch draft.PaymentMethod {
	case models.PaymentMethodCash:
		draft.PaymentStatus = models.PaymentStatusPaid
	case models.PaymentMethodDigital:
		draft.PaymentStatus = models.PaymentStatusPending
	}
	w.draft = draft
	if w.submitKey == "" {
		w.submitKey = uuid.NewString()
	}
	key := w.submitKey
	w.busy = true
	w.mu.Unlock()

	if draft.PaymentMethod == models.PaymentMethodDigital {
		return w.submitDigital(ctx, current, draft, key)
	}
	return w.submitCash(ctx, current, draft, key)
}

func (w *Wizard) submitCash(ctx context.Context, current EnteringPassengerInfo, draft models.BookingDraft, key string) (*Outcome, error) {
	result, err := w.svc.CreateBooking(ctx, draft.Clone(), key)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if err != nil {
		return nil, w.rejectSubmissionLocked("create_booking", current, err)
	}
	w.submitKey = ""

	booking := models.CompletedBooking{
		ReferenceCode:  result.ReferenceCode,
		Status:         result.Status,
		Schedule:       current.Schedule,
		SeatNumber:     current.Seat,
		PassengerName:  draft.PassengerName,
		PassengerPhone: draft.PassengerPhone,
		PassengerEmail: draft.PassengerEmail,
		TotalAmount:    draft.TotalAmount,
		PaymentMethod:  draft.PaymentMethod,
		PaymentStatus:  draft.PaymentStatus,
		IssuedAt:       w.opts.Now(),
	}

	var ticket []byte
	if w.renderer != nil {
		ticket, err = w.renderer.Render(booking)
		if err != nil {
			w.logger.WithError(err).WithField("reference_code", booking.ReferenceCode).Error("Failed to render ticket")
			ticket = nil
		}
	}

	w.step = Confirmed{Booking: booking, Ticket: ticket}
	w.logger.WithFields(logrus.Fields{
		"reference_code": booking.ReferenceCode,
		"schedule_id":    draft.ScheduleID,
		"seat":           booking.SeatNumber,
		"amount":         booking.TotalAmount,
	}).Info("Walk-in booking confirmed")

	return &Outcome{Booking: &booking, Draft: draft.Clone()}, nil
}

func (w *Wizard) submitDigital(ctx context.Context, current EnteringPassengerInfo, draft models.BookingDraft, key string) (*Outcome, error) {
	session, err := w.svc.InitializePayment(ctx, bookingapi.PaymentRequest{
		Amount:         draft.TotalAmount,
		ReturnURL:      w.opts.ReturnURL,
		Draft:          draft.Clone(),
		IdempotencyKey: key,
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if err != nil {
		return nil, w.rejectSubmissionLocked("initialize_payment", current, err)
	}
	w.submitKey = ""

	// Completion happens out-of-band when the provider redirects back, so the
	// local draft is abandoned here.
	w.draft = models.NewBookingDraft()
	w.step = SelectingSchedule{Schedules: w.schedules}

	w.logger.WithFields(logrus.Fields{
		"schedule_id": draft.ScheduleID,
		"amount":      draft.TotalAmount,
	}).Info("Digital payment initialized, redirecting to checkout")

	return &Outcome{CheckoutURL: session.CheckoutURL, Draft: draft}, nil
}

// NewBooking clears a confirmed booking and returns to schedule selection
func (w *Wizard) NewBooking() (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkLocked(StepConfirmed); err != nil {
		return nil, err
	}

	w.draft = models.NewBookingDraft()
	w.submitKey = ""
	w.step = SelectingSchedule{Schedules: w.schedules}
	return w.step, nil
}

// rejectSubmissionLocked keeps the wizard on the passenger step after a
// failed create or payment call. A seat conflict marks the seat occupied so
// it is rejected locally on resubmission.
func (w *Wizard) rejectSubmissionLocked(op string, current EnteringPassengerInfo, err error) *SubmissionError {
	subErr := newSubmissionError(op, err)
	w.draft.PaymentStatus = models.PaymentStatusPending

	if subErr.SeatTaken {
		w.step = EnteringPassengerInfo{
			Schedule:  current.Schedule,
			Occupied:  seats.NormalizeOccupied(current.Schedule.TotalSeats, append(append([]int{}, current.Occupied...), current.Seat)),
			Available: seats.MarkOccupied(current.Available, current.Seat),
			Seat:      current.Seat,
		}
		w.submitKey = ""
	}

	w.logger.WithError(err).WithFields(logrus.Fields{
		"op":          op,
		"schedule_id": current.Schedule.ID,
		"seat":        current.Seat,
		"seat_taken":  subErr.SeatTaken,
	}).Warn("Submission rejected")
	return subErr
}

// Filter returns the filter used for the last schedule listing
func (w *Wizard) Filter() models.ScheduleFilter {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filter
}

func (w *Wizard) checkLocked(expected StepName) error {
	if w.busy {
		return ErrBusy
	}
	if w.step.Name() != expected {
		return ErrInvalidTransition
	}
	return nil
}

func (w *Wizard) findScheduleLocked(id string) (models.Schedule, bool) {
	for _, s := range w.schedules {
		if s.ID == id {
			return s, true
		}
	}
	return models.Schedule{}, false
}

func (w *Wizard) validateLocked(current EnteringPassengerInfo, info PassengerInfo) (models.BookingDraft, error) {
	fields := make(map[string]string)

	name := strings.TrimSpace(info.Name)
	if name == "" {
		fields["passenger_name"] = "Passenger name is required"
	}

	phone := strings.TrimSpace(info.Phone)
	if phone == "" {
		fields["passenger_phone"] = "Passenger phone is required"
	} else if w.opts.PhoneValidator != nil {
		if w.opts.StrictPhone {
			sanitized, err := w.opts.PhoneValidator.Validate(phone)
			if err != nil {
				fields["passenger_phone"] = err.Error()
			} else {
				phone = sanitized
			}
		} else {
			phone = w.opts.PhoneValidator.Sanitize(phone)
		}
	}

	if !w.draft.HasSeat() {
		fields["seat_number"] = "Select a seat"
	} else if !seats.IsAvailable(current.Available, current.Seat) {
		fields["seat_number"] = fmt.Sprintf("Seat %d is already booked, choose another seat", current.Seat)
	}

	method, err := models.ParsePaymentMethod(info.PaymentMethod)
	if err != nil {
		fields["payment_method"] = "Payment method must be cash or digital"
	}

	if len(fields) > 0 {
		validationErr := &ValidationError{Fields: fields}
		if _, ok := fields["seat_number"]; ok {
			validationErr.Err = ErrSeatUnavailable
		}
		return models.BookingDraft{}, validationErr
	}

	draft := w.draft.Clone()
	draft.PassengerName = name
	draft.PassengerPhone = phone
	draft.PassengerEmail = strings.TrimSpace(info.Email)
	draft.PaymentMethod = method
	return draft, nil
}

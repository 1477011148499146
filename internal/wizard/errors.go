package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/smarttransit/walkin-pos/internal/bookingapi"
)

var (
	// ErrBusy is returned while another call for this wizard is outstanding
	ErrBusy = errors.New("a request for this booking is already in progress")

	// ErrInvalidTransition is returned when an action does not apply to the current step
	ErrInvalidTransition = errors.New("action not allowed in the current step")

	// ErrSeatUnavailable indicates the chosen seat is occupied or out of range
	ErrSeatUnavailable = errors.New("seat is not available")

	// ErrUnknownSchedule indicates the schedule is not in the loaded list
	ErrUnknownSchedule = errors.New("schedule not found")
)

const (
	msgUnreachable        = "Booking service is unreachable, please try again"
	msgUnexpectedResponse = "Unexpected response from booking service, please try again"
)

// ValidationError is a local validation failure. No network call was made and
// the wizard state is unchanged.
type ValidationError struct {
	Fields map[string]string
	Err    error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FetchError is a failure loading supporting data (schedules, seat map)
type FetchError struct {
	Op      string
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SubmissionError is a rejected or failed booking/payment submission.
// Message is the server's text when the server answered.
type SubmissionError struct {
	Op        string
	Message   string
	SeatTaken bool
	Err       error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func newFetchError(op string, err error) *FetchError {
	return &FetchError{Op: op, Message: userMessage(err), Err: err}
}

func newSubmissionError(op string, err error) *SubmissionError {
	subErr := &SubmissionError{Op: op, Message: userMessage(err), Err: err}
	if apiErr, ok := bookingapi.AsAPIError(err); ok {
		subErr.SeatTaken = apiErr.SeatConflict()
	}
	return subErr
}

// userMessage returns the server message verbatim, or a generic retry notice
func userMessage(err error) string {
	if apiErr, ok := bookingapi.AsAPIError(err); ok {
		return apiErr.Message
	}
	if bookingapi.IsUnavailable(err) {
		return msgUnreachable
	}
	return msgUnexpectedResponse
}

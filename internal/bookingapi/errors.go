package bookingapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable wraps transport failures and timeouts
var ErrUnavailable = errors.New("booking service unavailable")

// CodeSeatAlreadyBooked is the error code the booking service uses for seat conflicts
const CodeSeatAlreadyBooked = "SEAT_ALREADY_BOOKED"

// APIError is a non-2xx answer from the booking service
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("booking service returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("booking service returned %d: %s", e.StatusCode, e.Message)
}

// SeatConflict reports whether the server rejected the seat as already taken
func (e *APIError) SeatConflict() bool {
	return e.StatusCode == http.StatusConflict || e.Code == CodeSeatAlreadyBooked
}

// errorBody is the error envelope returned by the booking service
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func newAPIError(statusCode int, body errorBody) *APIError {
	message := body.Message
	if message == "" {
		message = body.Error
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &APIError{
		StatusCode: statusCode,
		Code:       body.Code,
		Message:    message,
	}
}

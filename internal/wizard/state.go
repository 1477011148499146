package wizard

import "github.com/smarttransit/walkin-pos/internal/models"

// StepName identifies a wizard step in API responses
type StepName string

const (
	StepSelectingSchedule     StepName = "selecting_schedule"
	StepSelectingSeat         StepName = "selecting_seat"
	StepEnteringPassengerInfo StepName = "entering_passenger_info"
	StepConfirmed             StepName = "confirmed"
)

// Step is the closed set of wizard states. Only the types in this file
// implement it.
type Step interface {
	Name() StepName
	step()
}

// SelectingSchedule waits for the ticketer to pick a departure
type SelectingSchedule struct {
	Schedules []models.Schedule
}

// SelectingSeat holds the chosen schedule and its seat map
type SelectingSeat struct {
	Schedule  models.Schedule
	Occupied  []int
	Available []int
}

// EnteringPassengerInfo holds the chosen schedule and seat
type EnteringPassengerInfo struct {
	Schedule  models.Schedule
	Occupied  []int
	Available []int
	Seat      int
}

// Confirmed holds the server-confirmed booking and its rendered ticket
type Confirmed struct {
	Booking models.CompletedBooking
	Ticket  []byte
}

func (SelectingSchedule) Name() StepName     { return StepSelectingSchedule }
func (SelectingSeat) Name() StepName         { return StepSelectingSeat }
func (EnteringPassengerInfo) Name() StepName { return StepEnteringPassengerInfo }
func (Confirmed) Name() StepName             { return StepConfirmed }

func (SelectingSchedule) step()     {}
func (SelectingSeat) step()         {}
func (EnteringPassengerInfo) step() {}
func (Confirmed) step()             {}

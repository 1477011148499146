package wizard

import "github.com/smarttransit/walkin-pos/internal/models"

// Snapshot is a read-only view of the wizard for API responses
type Snapshot struct {
	Step           StepName                 `json:"step"`
	Busy           bool                     `json:"busy"`
	Filter         models.ScheduleFilter    `json:"filter"`
	Schedules      []models.Schedule        `json:"schedules,omitempty"`
	Schedule       *models.Schedule         `json:"schedule,omitempty"`
	OccupiedSeats  []int                    `json:"occupied_seats,omitempty"`
	AvailableSeats []int                    `json:"available_seats,omitempty"`
	SelectedSeat   int                      `json:"selected_seat,omitempty"`
	Draft          models.BookingDraft      `json:"draft"`
	Booking        *models.CompletedBooking `json:"booking,omitempty"`
	HasTicket      bool                     `json:"has_ticket"`
}

// Snapshot returns the current state
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		Step:   w.step.Name(),
		Busy:   w.busy,
		Filter: w.filter,
		Draft:  w.draft.Clone(),
	}

	switch s := w.step.(type) {
	case SelectingSchedule:
		snap.Schedules = s.Schedules
	case SelectingSeat:
		schedule := s.Schedule
		snap.Schedule = &schedule
		snap.OccupiedSeats = s.Occupied
		snap.AvailableSeats = s.Available
	case EnteringPassengerInfo:
		schedule := s.Schedule
		snap.Schedule = &schedule
		snap.OccupiedSeats = s.Occupied
		snap.AvailableSeats = s.Available
		snap.SelectedSeat = s.Seat
	case Confirmed:
		booking := s.Booking
		snap.Booking = &booking
		snap.HasTicket = len(s.Ticket) > 0
	}
	return snap
}

// Ticket returns the rendered ticket of a confirmed booking
func (w *Wizard) Ticket() (models.CompletedBooking, []byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	confirmed, ok := w.step.(Confirmed)
	if !ok {
		return models.CompletedBooking{}, nil, ErrInvalidTransition
	}
	return confirmed.Booking, confirmed.Ticket, nil
}

package models

// Schedule is a single bus departure as published by the booking service.
// The wizard treats it as a read-only snapshot.
type Schedule struct {
	ID            string  `json:"id"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartureDate string  `json:"departure_date"` // YYYY-MM-DD
	DepartureTime string  `json:"departure_time"` // HH:MM
	BusID         string  `json:"bus_id"`
	BusNumber     string  `json:"bus_number"`
	TotalSeats    int     `json:"total_seats"`
	Fare          float64 `json:"fare"`
	BookedSeats   int     `json:"booked_seats"`
}

// RouteLabel returns "Origin -> Destination"
func (s Schedule) RouteLabel() string {
	return s.Origin + " -> " + s.Destination
}

// ScheduleFilter narrows a schedule listing
type ScheduleFilter struct {
	Date string `json:"date,omitempty"` // YYYY-MM-DD, empty means all upcoming
}

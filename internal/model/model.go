package model

import "time"

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Wire formats for the date and time-of-day fields. The DB layer renders its
// DATE/TIME columns into the same strings, so one representation flows from
// request to storage to response.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Reservation struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name" validate:"required,max=100"`
	Email           string    `db:"email" json:"email" validate:"required,email"`
	Phone           string    `db:"phone" json:"phone" validate:"required,max=20,phone"`
	Date            string    `db:"date" json:"date" validate:"required,resdate"`
	StartTime       string    `db:"start_time" json:"start_time" validate:"required,clock"`
	EndTime         string    `db:"end_time" json:"end_time" validate:"required,clock"`
	NumberOfGuests  int       `db:"number_of_guests" json:"number_of_guests" validate:"min=1,max=100"`
	SpecialRequests string    `db:"special_requests,omitempty" json:"special_requests,omitempty"`
	Status          string    `db:"status" json:"status" validate:"required,oneof=pending accepted declined"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// DurationHours returns the slot length in decimal hours (18:00-20:30 -> 2.5).
// Returns 0 if either time does not parse.
func (r *Reservation) DurationHours() float64 {
	start, err := time.Parse(TimeLayout, r.StartTime)
	if err != nil {
		return 0
	}
	end, err := time.Parse(TimeLayout, r.EndTime)
	if err != nil {
		return 0
	}
	return end.Sub(start).Hours()
}

// StatusColor is the badge color shown on the moderation surface.
func (r *Reservation) StatusColor() string {
	switch r.Status {
	case StatusAccepted:
		return "green"
	case StatusDeclined:
		return "red"
	default:
		return "orange"
	}
}

// EndsAt combines date and end time in the given location. Used to schedule
// the expiry message for a pending reservation.
func (r *Reservation) EndsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, r.Date+" "+r.EndTime, loc)
}

package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"

	"github.com/avora-app/reservations/internal/model"
	"github.com/avora-app/reservations/pkg/validator"
)

const (
	FieldIncorrect      = "FIELD_INCORRECT"
	ServiceUnavailable  = "SERVICE_UNAVAILABLE"
	InternalError       = "Service is currently unavailable. Please try again later."
	ReservationNotFound = "RESERVATION_NOT_FOUND"
	Unauthorized        = "UNAUTHORIZED"
)

// CreateReservationRequest deliberately has no status field: a new reservation
// is always pending, whatever the client sends.
type CreateReservationRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	NumberOfGuests  int    `json:"number_of_guests"`
	SpecialRequests string `json:"special_requests"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type BulkStatusRequest struct {
	IDs    []int64 `json:"ids"`
	Status string  `json:"status"`
}

type BulkStatusResult struct {
	Updated  int     `json:"updated"`
	Missing  []int64 `json:"missing,omitempty"`
	Status   string  `json:"status"`
	Notified int     `json:"notified"`
}

// ModerationItem is a reservation as shown on the staff listing, with the
// derived duration and badge color alongside the raw record.
type ModerationItem struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	NumberOfGuests  int       `json:"number_of_guests"`
	SpecialRequests string    `json:"special_requests,omitempty"`
	Status          string    `json:"status"`
	StatusColor     string    `json:"status_color"`
	DurationHours   float64   `json:"duration_hours"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewModerationItem(r *model.Reservation) ModerationItem {
	return ModerationItem{
		ID:              r.ID,
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		Date:            r.Date,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		NumberOfGuests:  r.NumberOfGuests,
		SpecialRequests: r.SpecialRequests,
		Status:          r.Status,
		StatusColor:     r.StatusColor(),
		DurationHours:   r.DurationHours(),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// ExpireMessage is the delayed-queue payload scheduled at creation time.
type ExpireMessage struct {
	ReservationID int64     `json:"reservation_id"`
	ExpireAt      time.Time `json:"expire_at"`
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

// ValidationFailedError renders the public contract for bad input: a bare
// field-to-messages map with status 400.
func ValidationFailedError(c *ginext.Context, errs validator.Errors) {
	c.JSON(400, errs)
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

func ReservationNotFoundError(c *ginext.Context) {
	c.JSON(404, Response{
		Status: "error",
		Error: &Error{
			Code: ReservationNotFound,
			Desc: "Reservation not found",
		},
	})
}

func UnauthorizedError(c *ginext.Context) {
	c.JSON(401, Response{
		Status: "error",
		Error: &Error{
			Code: Unauthorized,
			Desc: "Staff credentials required",
		},
	})
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

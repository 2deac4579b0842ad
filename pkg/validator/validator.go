package validator

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/avora-app/reservations/internal/model"
)

var global *validator.Validate

const (
	ErrFieldRequired      = "This field is required."
	ErrFieldExceedsMaxLen = "Field exceeds maximum length."
	ErrInvalidEmail       = "Enter a valid email address."
	ErrInvalidChoice      = "Value is not a valid choice."
	ErrInvalidDate        = "Date must be in YYYY-MM-DD format."
	ErrInvalidTime        = "Time must be in HH:MM format."
	ErrInvalidPhone       = "Phone number must contain only digits and valid separators."
	ErrDateInPast         = "Date cannot be in the past."
	ErrEndBeforeStart     = "End time must be after start time."
	ErrGuestsTooFew       = "Number of guests must be at least 1."
	ErrGuestsTooMany      = "Number of guests cannot exceed 100."
)

var phoneStripper = strings.NewReplacer(" ", "", "-", "", "+", "")

func init() {
	SetValidator(New())
}

func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("resdate", validateDate)
	_ = v.RegisterValidation("clock", validateClock)
	_ = v.RegisterValidation("phone", validatePhone)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.DateLayout, fl.Field().String())
	return err == nil
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.TimeLayout, fl.Field().String())
	return err == nil
}

func validatePhone(fl validator.FieldLevel) bool {
	stripped := phoneStripper.Replace(fl.Field().String())
	if stripped == "" {
		return false
	}
	for _, c := range stripped {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Errors is a field-keyed collection of validation messages. It is the body of
// a 400 response, so keys are the JSON field names.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Error() string {
	var sb strings.Builder
	for field, msgs := range e {
		for _, msg := range msgs {
			if sb.Len() > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(field + ": " + msg)
		}
	}
	return sb.String()
}

// Reservation runs the full rule set against a candidate record. Every write
// path goes through here, so the field rules and the cross-field rules cannot
// drift apart. An empty result means the record is valid.
func Reservation(ctx context.Context, r *model.Reservation) Errors {
	errs := Errors{}

	if err := Validator().StructCtx(ctx, r); err != nil {
		vErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			errs.Add("non_field_errors", err.Error())
			return errs
		}
		for _, ve := range vErrors {
			errs.Add(ve.Field(), messageFor(ve))
		}
	}

	// Cross-field rules only make sense once the pieces parse.
	if d, err := time.Parse(model.DateLayout, r.Date); err == nil {
		if len(errs["date"]) == 0 && d.Before(today()) {
			errs.Add("date", ErrDateInPast)
		}
	}
	start, serr := time.Parse(model.TimeLayout, r.StartTime)
	end, eerr := time.Parse(model.TimeLayout, r.EndTime)
	if serr == nil && eerr == nil && !end.After(start) {
		errs.Add("end_time", ErrEndBeforeStart)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Status reports whether a value is one of the known moderation statuses.
func Status(status string) bool {
	switch status {
	case model.StatusPending, model.StatusAccepted, model.StatusDeclined:
		return true
	}
	return false
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func messageFor(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return ErrFieldRequired
	case "email":
		return ErrInvalidEmail
	case "oneof":
		return ErrInvalidChoice
	case "resdate":
		return ErrInvalidDate
	case "clock":
		return ErrInvalidTime
	case "phone":
		return ErrInvalidPhone
	case "min":
		if ve.Field() == "number_of_guests" {
			return ErrGuestsTooFew
		}
		return "Field is below minimum value."
	case "max":
		if ve.Field() == "number_of_guests" {
			return ErrGuestsTooMany
		}
		return ErrFieldExceedsMaxLen
	default:
		return "Invalid value."
	}
}

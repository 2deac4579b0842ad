package service

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"github.com/avora-app/reservations/internal/dto"
	"github.com/avora-app/reservations/internal/model"
	"github.com/avora-app/reservations/internal/notify"
	"github.com/avora-app/reservations/internal/repo"
	"github.com/avora-app/reservations/pkg/validator"
)

// Publisher schedules a delayed message; the rabbit client implements it.
type Publisher interface {
	Publish(message []byte, delaySeconds int) error
}

type Service interface {
	CreateReservation(ctx *ginext.Context)
	ListReservations(ctx *ginext.Context)
	ModerationList(ctx *ginext.Context)
	UpdateStatus(ctx *ginext.Context)
	BulkUpdateStatus(ctx *ginext.Context)
}

type service struct {
	repo     repo.Repository
	log      *zerolog.Logger
	notifier *notify.Notifier
	pub      Publisher
	loc      *time.Location
}

func NewService(repo repo.Repository, logger *zerolog.Logger, notifier *notify.Notifier, pub Publisher) Service {
	return &service{
		repo:     repo,
		log:      logger,
		notifier: notifier,
		pub:      pub,
		loc:      time.Local,
	}
}

func (s *service) CreateReservation(ctx *ginext.Context) {
	var req dto.CreateReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse create reservation request")
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	// Status is not part of the request; a new reservation is always pending.
	res := &model.Reservation{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		NumberOfGuests:  req.NumberOfGuests,
		SpecialRequests: req.SpecialRequests,
		Status:          model.StatusPending,
	}

	if verr := validator.Reservation(ctx, res); verr != nil {
		s.log.Info().Msgf("reservation rejected: %v", verr)
		dto.ValidationFailedError(ctx, verr)
		return
	}

	id, err := s.repo.Create(ctx.Request.Context(), res)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create reservation in DB")
		dto.InternalServerError(ctx)
		return
	}
	s.log.Info().Int64("reservation_id", id).Str("date", res.Date).Msg("reservation created")

	s.scheduleExpiry(res)
	s.notifier.ReservationReceived(res)

	ctx.JSON(201, res)
}

// scheduleExpiry queues the delayed message that auto-declines the
// reservation if it is still pending once its time slot has passed. A publish
// failure only loses the sweep, never the reservation.
func (s *service) scheduleExpiry(res *model.Reservation) {
	ends, err := res.EndsAt(s.loc)
	if err != nil {
		s.log.Error().Err(err).Int64("reservation_id", res.ID).Msg("failed to compute expiry time")
		return
	}

	payload, err := json.Marshal(dto.ExpireMessage{ReservationID: res.ID, ExpireAt: ends})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal expiry message")
		return
	}

	delaySeconds := int(time.Until(ends).Seconds())
	if delaySeconds < 0 {
		delaySeconds = 0
	}
	if err := s.pub.Publish(payload, delaySeconds); err != nil {
		s.log.Error().Err(err).Int64("reservation_id", res.ID).Msg("failed to publish expiry message")
	}
}

func (s *service) ListReservations(ctx *ginext.Context) {
	reservations, err := s.repo.List(ctx.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list reservations")
		dto.InternalServerError(ctx)
		return
	}
	if reservations == nil {
		reservations = []model.Reservation{}
	}
	ctx.JSON(200, reservations)
}

func (s *service) ModerationList(ctx *ginext.Context) {
	f := repo.Filter{
		Status:      ctx.Query("status"),
		Date:        ctx.Query("date"),
		CreatedFrom: ctx.Query("created_from"),
		CreatedTo:   ctx.Query("created_to"),
		Search:      ctx.Query("q"),
	}
	if f.Status != "" && !validator.Status(f.Status) {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Unknown status filter")
		return
	}

	reservations, err := s.repo.ModerationList(ctx.Request.Context(), f)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list reservations for moderation")
		dto.InternalServerError(ctx)
		return
	}

	items := make([]dto.ModerationItem, 0, len(reservations))
	for i := range reservations {
		items = append(items, dto.NewModerationItem(&reservations[i]))
	}
	dto.SuccessResponse(ctx, items)
}

func (s *service) UpdateStatus(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid reservation ID")
		return
	}

	var req dto.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if !validator.Status(req.Status) {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Unknown status")
		return
	}

	oldStatus, res, err := s.applyStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, repo.ErrReservationNotFound) {
			dto.ReservationNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int64("reservation_id", id).Msg("failed to update reservation status")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().
		Int64("reservation_id", id).
		Str("old_status", oldStatus).
		Str("new_status", res.Status).
		Msg("reservation status updated")

	dto.SuccessResponse(ctx, dto.NewModerationItem(res))
}

func (s *service) BulkUpdateStatus(ctx *ginext.Context) {
	var req dto.BulkStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if req.Status != model.StatusAccepted && req.Status != model.StatusDeclined {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Bulk status must be accepted or declined")
		return
	}
	if len(req.IDs) == 0 {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "No reservation IDs supplied")
		return
	}

	result := dto.BulkStatusResult{Status: req.Status}
	for _, id := range req.IDs {
		oldStatus, res, err := s.applyStatus(ctx, id, req.Status)
		if err != nil {
			if errors.Is(err, repo.ErrReservationNotFound) {
				result.Missing = append(result.Missing, id)
				continue
			}
			s.log.Error().Err(err).Int64("reservation_id", id).Msg("failed bulk status update")
			dto.InternalServerError(ctx)
			return
		}
		result.Updated++
		if oldStatus != res.Status {
			result.Notified++
		}
	}

	s.log.Info().
		Int("updated", result.Updated).
		Int("missing", len(result.Missing)).
		Str("status", req.Status).
		Msg("bulk status update applied")

	dto.SuccessResponse(ctx, result)
}

// applyStatus commits the transition and fires the notification hook with the
// status the update actually replaced.
func (s *service) applyStatus(ctx *ginext.Context, id int64, newStatus string) (string, *model.Reservation, error) {
	oldStatus, res, err := s.repo.UpdateStatusTx(ctx.Request.Context(), id, newStatus)
	if err != nil {
		return "", nil, err
	}

	s.notifier.StatusChanged(oldStatus, res)
	return oldStatus, res, nil
}

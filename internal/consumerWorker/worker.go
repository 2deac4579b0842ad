package consumerWorker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/wb-go/wbf/zlog"

	"github.com/avora-app/reservations/internal/dto"
	"github.com/avora-app/reservations/internal/notify"
	"github.com/avora-app/reservations/internal/rabbit"
	"github.com/avora-app/reservations/internal/repo"
)

// Reader drains the expiry queue. Each message names a reservation whose
// reserved slot has ended; if staff never moderated it, the reservation is
// declined and the requester is told once.
type Reader struct {
	RMQ      *rabbit.Client
	repo     repo.Repository
	notifier *notify.Notifier
	done     chan struct{}
	cancel   context.CancelFunc
}

func NewReader(rmq *rabbit.Client, repo repo.Repository, notifier *notify.Notifier) *Reader {
	return &Reader{
		RMQ:      rmq,
		repo:     repo,
		notifier: notifier,
		done:     make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("Reservation expiry worker started")

	go func() {
		defer close(r.done)

		if err := r.RMQ.Consume(r.handleMessage(cctx)); err != nil {
			zlog.Logger.Error().Err(err).Msg("Failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("Reservation expiry worker stopped by context")
	}()
}

func (r *Reader) handleMessage(ctx context.Context) func([]byte) error {
	return func(body []byte) error {
		var msg dto.ExpireMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			zlog.Logger.Error().
				Err(err).
				Msgf("Failed to unmarshal expiry message: %s", string(body))
			return err
		}

		zlog.Logger.Info().
			Int64("reservation_id", msg.ReservationID).
			Time("expire_at", msg.ExpireAt).
			Msg("Received expiry message")

		declined, err := r.repo.DeclineIfStillPendingTx(ctx, msg.ReservationID)
		if err != nil {
			if errors.Is(err, repo.ErrReservationNotFound) {
				zlog.Logger.Warn().
					Int64("reservation_id", msg.ReservationID).
					Msg("Reservation from expiry message no longer exists")
				return nil
			}
			zlog.Logger.Error().
				Err(err).
				Int64("reservation_id", msg.ReservationID).
				Msg("Failed to decline expired reservation")
			return err
		}

		if !declined {
			zlog.Logger.Info().
				Int64("reservation_id", msg.ReservationID).
				Msg("Reservation already moderated, skipping")
			return nil
		}

		res, err := r.repo.GetByID(ctx, msg.ReservationID)
		if err != nil {
			zlog.Logger.Error().
				Err(err).
				Int64("reservation_id", msg.ReservationID).
				Msg("Failed to load declined reservation for notification")
			return nil
		}

		r.notifier.StatusChanged("pending", res)
		return nil
	}
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

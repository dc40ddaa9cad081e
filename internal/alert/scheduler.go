// Package alert arms and cancels time-offset alerts for simulation sessions.
package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/clinsim-backend/internal/clock"
	"github.com/stemsi/clinsim-backend/internal/model"
	"github.com/stemsi/clinsim-backend/internal/notification"
)

const sinkTimeout = 5 * time.Second

// Mutator is the per-session serialization point alert callbacks enter
// before touching session state.
type Mutator interface {
	Mutate(studentID string, fn func(*model.Session) error) error
}

// Scheduler turns alert specs into clock callbacks that append notifications.
type Scheduler struct {
	clock clock.Clock
	store Mutator
	sink  notification.Sink
	log   zerolog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(c clock.Clock, store Mutator, sink notification.Sink, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		clock: c,
		store: store,
		sink:  sink,
		log:   log.With().Str("component", "alert_scheduler").Logger(),
	}
}

// ArmAlerts schedules every spec whose fire time (reference + offset) is
// still in the future and records the handles on the session. Specs that
// are already due are skipped. The caller must hold the session's lock.
// Returns the number of alerts armed.
func (s *Scheduler) ArmAlerts(sess *model.Session, specs []model.AlertSpec, reference time.Time) int {
	now := s.clock.Now()
	armed := 0

	for _, spec := range specs {
		fireAt := reference.Add(spec.Offset)
		if !fireAt.After(now) {
			continue
		}

		category := spec.Category
		if category == "" {
			category = model.NotificationCategoryAlert
		}

		a := &model.Alert{
			ID:        uuid.New().String(),
			SessionID: sess.ID,
			Offset:    spec.Offset,
			FireAt:    fireAt,
			Message:   spec.Message,
			Category:  category,
		}
		a.Handle = s.clock.AfterFunc(fireAt.Sub(now), s.fire(sess.StudentID, sess.ID, a))
		sess.Alerts = append(sess.Alerts, a)
		armed++
	}

	s.log.Debug().
		Str("session_id", sess.ID).
		Int("armed", armed).
		Int("requested", len(specs)).
		Msg("Alerts armed")

	return armed
}

// CancelAll stops every pending alert of the session. Already fired or
// cancelled alerts are left alone. The caller must hold the session's lock;
// a callback racing with this call re-checks the alert under that lock and
// does nothing. Returns the number of alerts cancelled.
func (s *Scheduler) CancelAll(sess *model.Session) int {
	cancelled := 0
	for _, a := range sess.Alerts {
		if !a.Pending() {
			continue
		}
		a.Cancelled = true
		if a.Handle != nil {
			a.Handle.Stop()
		}
		cancelled++
	}
	return cancelled
}

func (s *Scheduler) fire(studentID, sessionID string, a *model.Alert) func() {
	return func() {
		err := s.store.Mutate(studentID, func(sess *model.Session) error {
			if sess.ID != sessionID || !a.Pending() {
				return nil
			}
			now := s.clock.Now()
			sess.RefreshTimeRemaining(now)
			a.Fired = true

			ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
			defer cancel()

			_, err := s.sink.Append(ctx, model.Notification{
				StudentID: studentID,
				SessionID: sessionID,
				Message:   Render(a.Message, sess),
				Category:  a.Category,
				CreatedAt: now,
			})
			if err != nil {
				s.log.Error().Err(err).
					Str("session_id", sessionID).
					Str("alert_id", a.ID).
					Msg("Failed to store alert notification")
			}
			return nil
		})
		if err != nil {
			// The session already ended; its alerts were cancelled with it.
			s.log.Debug().Err(err).Str("session_id", sessionID).Msg("Alert fired for inactive session")
		}
	}
}

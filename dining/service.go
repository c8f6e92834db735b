package dining

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// =============================================================================
// SERVICE - Entry point for every engine operation
// =============================================================================

// Service runs engine operations against a transactional store. Each
// operation acquires its own transaction and releases it before returning.
// No restaurant or table state is cached between calls.
type Service struct {
	Store    TxStore
	Notifier Notifier
	Logger   *slog.Logger

	// Now is the wall clock. Tests pin it.
	Now func() time.Time
	// Location is the restaurants' local time zone.
	Location *time.Location
	// MaxAttempts bounds the allocator's retry loop on lock contention.
	MaxAttempts int

	pending sync.WaitGroup
}

func NewService(store TxStore, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Store:       store,
		Notifier:    notifier,
		Logger:      logger,
		Now:         time.Now,
		Location:    time.Local,
		MaxAttempts: 3,
	}
}

func (s *Service) now() time.Time { return s.Now().In(s.loc()) }

func (s *Service) loc() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// inTx runs fn in one transaction and classifies unexpected failures as
// storage errors naming op.
func (s *Service) inTx(ctx context.Context, op string, fn func(Store) error) error {
	return storageErr(op, s.Store.WithTx(ctx, fn))
}

// Wait blocks until every notification dispatched so far has been attempted.
func (s *Service) Wait() { s.pending.Wait() }

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// Notifier delivers a message to a user. Failures are logged by the engine
// and never fail the operation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}

type Notification struct {
	Recipient string
	Subject   string
	Body      string
}

// dispatch sends notifications in the background after the triggering
// transaction has committed.
func (s *Service) dispatch(ctx context.Context, notes ...Notification) {
	if s.Notifier == nil || len(notes) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		for _, n := range notes {
			if err := s.Notifier.Notify(ctx, n.Recipient, n.Subject, n.Body); err != nil {
				s.Logger.Warn("notification failed",
					slog.String("recipient", n.Recipient),
					slog.String("subject", n.Subject),
					slog.Any("error", err))
			}
		}
	}()
}

func confirmationNotice(b BookedReservation, loc *time.Location) Notification {
	at := b.StartsAt.In(loc)
	return Notification{
		Recipient: b.UserEmail,
		Subject:   "Booking Confirmation",
		Body: fmt.Sprintf("Hi %s,\nThis is an email to confirm that you have placed a reservation at %s "+
			"on %s at %s for %d person(s).\nThank you for using tableNest.",
			b.UserName, b.RestaurantName, FormatDate(at), ClockOf(at, loc), b.Persons),
	}
}

func cancellationNotice(b BookedReservation, loc *time.Location, reason string) Notification {
	at := b.StartsAt.In(loc)
	return Notification{
		Recipient: b.UserEmail,
		Subject:   "Reservation Cancelled",
		Body: fmt.Sprintf("Unfortunately, your reservation at %s on %s at %s has been cancelled, "+
			"as %s. We apologise for any inconvenience caused.",
			b.RestaurantName, FormatDate(at), ClockOf(at, loc), reason),
	}
}

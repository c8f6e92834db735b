/*
allocator.go - Best-fit table allocation

BEST FIT:
  Among the tables that seat the party and have no reservation inside the
  collision window, the one with the smallest capacity wins. Larger tables
  stay free for larger parties.

ATOMICITY:
  The free-table query and the insert run in one transaction. The store
  serializes writers, so of N concurrent requests for the last compatible
  table exactly one commits; the rest see the table taken and report
  ErrNoTablesAvailable. Lock contention surfaces as
  ErrConcurrentModification and is retried up to MaxAttempts times.
*/
package dining

import (
	"context"
	"log/slog"
)

// MakeReservation books the best-fit table for persons at date ("YYYY-MM-DD")
// and clock ("HH:MM", on the hour or half hour). The confirmation is sent
// after commit.
func (s *Service) MakeReservation(ctx context.Context, userID UserID, restaurantID RestaurantID, date, clock string, persons int) (*BookedReservation, error) {
	if persons < 1 {
		return nil, &ValidationError{Field: "persons", Message: "must be at least 1"}
	}
	day, err := ParseDate(date, s.loc())
	if err != nil {
		return nil, err
	}
	c, err := ParseClockTime(clock)
	if err != nil {
		return nil, err
	}
	if !c.OnSlot() {
		return nil, &ValidationError{Field: "time", Message: "the provided time must be at a 30-minute interval"}
	}
	at := c.On(day, s.loc())
	if !at.After(s.now()) {
		return nil, &ValidationError{Field: "time", Message: "the reservation must start in the future"}
	}

	var booked *BookedReservation
	attempts := max(s.MaxAttempts, 1)
	for attempt := 1; ; attempt++ {
		err = s.inTx(ctx, "placing the reservation", func(st Store) error {
			if err := requireUser(ctx, st, userID); err != nil {
				return err
			}
			if err := requireRestaurant(ctx, st, restaurantID); err != nil {
				return err
			}

			free, err := st.FreeTables(ctx, restaurantID, at, persons)
			if err != nil {
				return err
			}
			if len(free) == 0 {
				return ErrNoTablesAvailable
			}

			id, err := st.InsertReservation(ctx, Reservation{
				RestaurantID: restaurantID,
				TableID:      free[0].ID,
				UserID:       userID,
				Persons:      persons,
				StartsAt:     at,
			})
			if err != nil {
				return err
			}
			booked, err = st.GetReservation(ctx, id)
			return err
		})
		if err == nil || !IsRetryable(err) || attempt >= attempts {
			break
		}
		s.Logger.Warn("reservation attempt contended, retrying",
			slog.Int64("restaurant_id", int64(restaurantID)),
			slog.Int("attempt", attempt))
	}
	if err != nil {
		return nil, err
	}

	s.Logger.Info("reservation placed",
		slog.Int64("restaurant_id", int64(restaurantID)),
		slog.Int64("reservation_id", int64(booked.ID)),
		slog.Int64("table_id", int64(booked.TableID)))
	s.dispatch(ctx, confirmationNotice(*booked, s.loc()))
	return booked, nil
}

// CancelReservation deletes a reservation owned by the user.
func (s *Service) CancelReservation(ctx context.Context, userID UserID, id ReservationID) error {
	return s.inTx(ctx, "cancelling the reservation", func(st Store) error {
		r, err := st.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		if r == nil || r.UserID != userID {
			return ErrReservationNotFound
		}
		return st.DeleteReservation(ctx, id)
	})
}

// RestaurantReservations lists every reservation of the restaurant.
func (s *Service) RestaurantReservations(ctx context.Context, restaurantID RestaurantID) ([]BookedReservation, error) {
	var rs []BookedReservation
	err := s.inTx(ctx, "retrieving reservations", func(st Store) error {
		var err error
		rs, err = st.ListReservations(ctx, restaurantID)
		return err
	})
	return rs, err
}

// UserReservations lists the user's reservations.
func (s *Service) UserReservations(ctx context.Context, userID UserID) ([]BookedReservation, error) {
	var rs []BookedReservation
	err := s.inTx(ctx, "retrieving reservations", func(st Store) error {
		var err error
		rs, err = st.UserReservations(ctx, userID)
		return err
	})
	return rs, err
}

func requireUser(ctx context.Context, st Store, id UserID) error {
	u, err := st.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	return nil
}

/*
availability.go - Reservation start times for a restaurant, date and party

ALGORITHM:
  1. Reject dates before today (day granularity).
  2. Load the opening periods of the date's weekday; none means closed.
  3. For each period, walk half-hour aligned start times from opening up to
     ClosingCutoff before closing.
  4. A start time is available when some table seats the party and holds no
     reservation inside the collision window. Collisions are per table and
     ignore the size of the party that booked it.
  5. For today, drop start times that are not strictly in the future.

The result is advisory: a time shown here can be taken by a concurrent
booking before MakeReservation runs. The allocator re-checks atomically.
*/
package dining

import (
	"context"
	"time"
)

// AvailableStartTimes lists the "HH:MM" start times at which a party of
// persons can book a table on date ("YYYY-MM-DD").
func (s *Service) AvailableStartTimes(ctx context.Context, restaurantID RestaurantID, date string, persons int) ([]string, error) {
	if persons < 1 {
		return nil, &ValidationError{Field: "persons", Message: "must be at least 1"}
	}
	day, err := ParseDate(date, s.loc())
	if err != nil {
		return nil, err
	}
	now := s.now()
	if day.Before(StartOfDay(now, s.loc())) {
		return nil, ErrDateInPast
	}

	var (
		periods  []OpeningPeriod
		tables   []Table
		existing []Reservation
	)
	err = s.inTx(ctx, "checking availability", func(st Store) error {
		if err := requireRestaurant(ctx, st, restaurantID); err != nil {
			return err
		}
		var err error
		if periods, err = st.OpeningPeriods(ctx, restaurantID, WeekdayOf(day)); err != nil || len(periods) == 0 {
			return err
		}
		if tables, err = st.ListTables(ctx, restaurantID); err != nil {
			return err
		}
		next := day.AddDate(0, 0, 1)
		existing, err = st.ReservationsBetween(ctx, restaurantID, day.Add(-CollisionWindow), next.Add(CollisionWindow))
		return err
	})
	if err != nil {
		return nil, err
	}

	return startTimes(day, now, periods, seating(tables, persons), existing, s.loc()), nil
}

// seating keeps the tables that fit the party.
func seating(tables []Table, persons int) []Table {
	var fit []Table
	for _, t := range tables {
		if t.Capacity >= persons {
			fit = append(fit, t)
		}
	}
	return fit
}

func startTimes(day, now time.Time, periods []OpeningPeriod, tables []Table, existing []Reservation, loc *time.Location) []string {
	times := []string{}
	if len(tables) == 0 {
		return times
	}

	booked := make(map[TableID][]time.Time)
	for _, r := range existing {
		booked[r.TableID] = append(booked[r.TableID], r.StartsAt)
	}
	free := func(at time.Time) bool {
		for _, t := range tables {
			clash := false
			for _, b := range booked[t.ID] {
				if Collides(at, b) {
					clash = true
					break
				}
			}
			if !clash {
				return true
			}
		}
		return false
	}

	step := ClockTime(SlotGranularity / time.Minute)
	for _, p := range periods {
		cutoff := p.Closes.Add(-ClosingCutoff)
		first := p.Opens
		if !first.OnSlot() {
			first += step - first%step
		}
		for c := first; c <= cutoff; c += step {
			at := c.On(day, loc)
			if !at.After(now) {
				continue
			}
			if free(at) {
				times = append(times, c.String())
			}
		}
	}
	return times
}

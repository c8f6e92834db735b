/*
tables.go - Table capacity model: tables and weekly opening hours

INVARIANTS:
  - Table numbers are unique within a restaurant; capacity is positive.
  - At most one opening period per weekday, opening strictly before closing.

INVALIDATION:
  Shrinking a table or changing opening hours can strand future bookings.
  The stranded reservations are deleted inside the same transaction as the
  mutation, and their owners are notified once it commits:
    - EditTable: reservations on the table with more persons than the new
      capacity
    - SetOpeningPeriods: reservations that no longer start inside an opening
      period at least HoursSafetyMargin before it closes
*/
package dining

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// =============================================================================
// OPENING HOURS
// =============================================================================

// HoursInput is one weekday's hours as submitted by a manager.
type HoursInput struct {
	OpeningTime string
	ClosingTime string
}

// ParseOpeningPeriods validates a weekly schedule keyed by day number "1".."7"
// and returns it ordered by day.
func ParseOpeningPeriods(restaurantID RestaurantID, in map[string]HoursInput) ([]OpeningPeriod, error) {
	if len(in) == 0 || len(in) > 7 {
		return nil, &ValidationError{Field: "opening periods", Message: "between 1 and 7 days must be provided"}
	}

	periods := make([]OpeningPeriod, 0, len(in))
	for key, hours := range in {
		day, err := strconv.Atoi(key)
		if err != nil || !Weekday(day).Valid() {
			return nil, &ValidationError{Field: "opening periods", Message: fmt.Sprintf("day %q must be an integer from 1 to 7", key)}
		}
		opens, err := ParseClockTime(hours.OpeningTime)
		if err != nil {
			return nil, err
		}
		closes, err := ParseClockTime(hours.ClosingTime)
		if err != nil {
			return nil, err
		}
		if opens >= closes {
			return nil, &ValidationError{Field: "opening periods", Message: fmt.Sprintf("%s opens at %s but closes at %s", Weekday(day), opens, closes)}
		}
		periods = append(periods, OpeningPeriod{RestaurantID: restaurantID, Day: Weekday(day), Opens: opens, Closes: closes})
	}

	sort.Slice(periods, func(i, j int) bool { return periods[i].Day < periods[j].Day })
	return periods, nil
}

// OpeningPeriods returns the restaurant's periods on the weekday of date.
func (s *Service) OpeningPeriods(ctx context.Context, restaurantID RestaurantID, date time.Time) ([]OpeningPeriod, error) {
	var periods []OpeningPeriod
	err := s.inTx(ctx, "retrieving opening periods", func(st Store) error {
		var err error
		periods, err = st.OpeningPeriods(ctx, restaurantID, WeekdayOf(date.In(s.loc())))
		return err
	})
	return periods, err
}

// WeeklyHours returns every stored period of the restaurant, Monday first.
func (s *Service) WeeklyHours(ctx context.Context, restaurantID RestaurantID) ([]OpeningPeriod, error) {
	var periods []OpeningPeriod
	err := s.inTx(ctx, "retrieving opening periods", func(st Store) error {
		if err := requireRestaurant(ctx, st, restaurantID); err != nil {
			return err
		}
		var err error
		periods, err = st.ListOpeningPeriods(ctx, restaurantID)
		return err
	})
	return periods, err
}

// SetOpeningPeriods replaces the restaurant's weekly schedule and cancels the
// future reservations the new hours strand. It returns the cancelled
// reservations.
func (s *Service) SetOpeningPeriods(ctx context.Context, restaurantID RestaurantID, in map[string]HoursInput) ([]BookedReservation, error) {
	periods, err := ParseOpeningPeriods(restaurantID, in)
	if err != nil {
		return nil, err
	}

	byDay := make(map[Weekday]OpeningPeriod, len(periods))
	for _, p := range periods {
		byDay[p.Day] = p
	}

	var cancelled []BookedReservation
	err = s.inTx(ctx, "replacing opening periods", func(st Store) error {
		if err := requireRestaurant(ctx, st, restaurantID); err != nil {
			return err
		}
		if err := st.ReplaceOpeningPeriods(ctx, restaurantID, periods); err != nil {
			return err
		}

		future, err := st.FutureReservations(ctx, restaurantID, s.now())
		if err != nil {
			return err
		}
		for _, r := range future {
			local := r.StartsAt.In(s.loc())
			p, open := byDay[WeekdayOf(local)]
			if open && p.Contains(ClockOf(local, s.loc()), HoursSafetyMargin) {
				continue
			}
			if err := st.DeleteReservation(ctx, r.ID); err != nil {
				return err
			}
			cancelled = append(cancelled, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cancelled(ctx, cancelled, "the restaurant has changed its opening hours")
	return cancelled, nil
}

// =============================================================================
// TABLES
// =============================================================================

func validateTable(number, capacity int) error {
	if number <= 0 {
		return &ValidationError{Field: "table number", Message: "must be a positive integer"}
	}
	if capacity <= 0 {
		return &ValidationError{Field: "capacity", Message: "must be a positive integer"}
	}
	return nil
}

// CreateTable adds a table with a number not yet used in the restaurant.
func (s *Service) CreateTable(ctx context.Context, restaurantID RestaurantID, number, capacity int) (*Table, error) {
	if err := validateTable(number, capacity); err != nil {
		return nil, err
	}

	table := Table{RestaurantID: restaurantID, Number: number, Capacity: capacity}
	err := s.inTx(ctx, "inserting the table", func(st Store) error {
		if err := requireRestaurant(ctx, st, restaurantID); err != nil {
			return err
		}
		existing, err := st.TableByNumber(ctx, restaurantID, number)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateTableNumber
		}
		table.ID, err = st.CreateTable(ctx, table)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// ListTables returns the restaurant's tables by number.
func (s *Service) ListTables(ctx context.Context, restaurantID RestaurantID) ([]Table, error) {
	var tables []Table
	err := s.inTx(ctx, "retrieving the tables", func(st Store) error {
		var err error
		tables, err = st.ListTables(ctx, restaurantID)
		return err
	})
	return tables, err
}

// EditTable renumbers and resizes a table of the restaurant. Keeping the
// current number is allowed; taking another table's number is not. Future
// reservations larger than the new capacity are cancelled.
func (s *Service) EditTable(ctx context.Context, restaurantID RestaurantID, tableID TableID, number, capacity int) (*Table, []BookedReservation, error) {
	if err := validateTable(number, capacity); err != nil {
		return nil, nil, err
	}

	var (
		table     *Table
		cancelled []BookedReservation
	)
	err := s.inTx(ctx, "updating the table", func(st Store) error {
		var err error
		table, err = st.GetTable(ctx, tableID)
		if err != nil {
			return err
		}
		if table == nil || table.RestaurantID != restaurantID {
			return ErrTableNotFound
		}

		if number != table.Number {
			taken, err := st.TableByNumber(ctx, restaurantID, number)
			if err != nil {
				return err
			}
			if taken != nil && taken.ID != tableID {
				return ErrDuplicateTableNumber
			}
		}

		table.Number, table.Capacity = number, capacity
		if err := st.UpdateTable(ctx, *table); err != nil {
			return err
		}

		cancelled, err = st.OversizedReservations(ctx, tableID, capacity, s.now())
		if err != nil {
			return err
		}
		for _, r := range cancelled {
			if err := st.DeleteReservation(ctx, r.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.cancelled(ctx, cancelled, "the table you reserved is no longer available")
	return table, cancelled, nil
}

func (s *Service) cancelled(ctx context.Context, rs []BookedReservation, reason string) {
	notes := make([]Notification, 0, len(rs))
	for _, r := range rs {
		s.Logger.Info("reservation cancelled",
			"restaurant_id", r.RestaurantID,
			"reservation_id", r.ID,
			"reason", reason)
		notes = append(notes, cancellationNotice(r, s.loc(), reason))
	}
	s.dispatch(ctx, notes...)
}

func requireRestaurant(ctx context.Context, st Store, id RestaurantID) error {
	r, err := st.GetRestaurant(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return ErrRestaurantNotFound
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tablenest/dining-engine/dining"
)

// =============================================================================
// RESERVATION STORE (dining.ReservationStore interface)
// =============================================================================

// collisionSeconds is dining.CollisionWindow in the unit starts_at is stored in.
var collisionSeconds = int64(dining.CollisionWindow / time.Second)

const bookedSelect = `
	SELECT r.id, r.restaurant_id, r.table_id, r.user_id, r.persons, r.starts_at,
	       t.table_number, u.name, u.email, rs.name
	FROM reservations r
	JOIN restaurant_tables t ON t.id = r.table_id
	JOIN users u ON u.id = r.user_id
	JOIN restaurants rs ON rs.id = r.restaurant_id`

// FreeTables selects candidate tables and excludes colliding ones in one
// statement, so the allocator's read happens under the write lock taken by
// BEGIN IMMEDIATE.
func (s *Store) FreeTables(ctx context.Context, restaurantID dining.RestaurantID, at time.Time, persons int) ([]dining.Table, error) {
	return s.queryTables(ctx, `
		SELECT `+tableColumns+` FROM restaurant_tables
		WHERE restaurant_id = ? AND capacity >= ?
		AND id NOT IN (
			SELECT table_id FROM reservations
			WHERE restaurant_id = ? AND ABS(starts_at - ?) < ?
		)
		ORDER BY capacity ASC, table_number ASC`,
		restaurantID, persons, restaurantID, unix(at), collisionSeconds,
	)
}

func (s *Store) ReservationsBetween(ctx context.Context, restaurantID dining.RestaurantID, from, to time.Time) ([]dining.Reservation, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, restaurant_id, table_id, user_id, persons, starts_at
		FROM reservations
		WHERE restaurant_id = ? AND starts_at BETWEEN ? AND ?
		ORDER BY starts_at, id`,
		restaurantID, unix(from), unix(to),
	)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query reservations: %w", err))
	}
	defer rows.Close()

	var rs []dining.Reservation
	for rows.Next() {
		var (
			r        dining.Reservation
			startsAt int64
		)
		if err := rows.Scan(&r.ID, &r.RestaurantID, &r.TableID, &r.UserID, &r.Persons, &startsAt); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		r.StartsAt = fromUnix(startsAt)
		rs = append(rs, r)
	}
	return rs, classify(rows.Err())
}

func (s *Store) InsertReservation(ctx context.Context, r dining.Reservation) (dining.ReservationID, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO reservations (restaurant_id, table_id, user_id, persons, starts_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.RestaurantID, r.TableID, r.UserID, r.Persons, unix(r.StartsAt),
	)
	id, err := insertedID(res, err, "insert reservation")
	return dining.ReservationID(id), err
}

func (s *Store) GetReservation(ctx context.Context, id dining.ReservationID) (*dining.BookedReservation, error) {
	rs, err := s.queryBooked(ctx, bookedSelect+" WHERE r.id = ?", id)
	if err != nil || len(rs) == 0 {
		return nil, err
	}
	return &rs[0], nil
}

func (s *Store) DeleteReservation(ctx context.Context, id dining.ReservationID) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	return affectedOne(res, err, "delete reservation", dining.ErrReservationNotFound)
}

func (s *Store) ListReservations(ctx context.Context, restaurantID dining.RestaurantID) ([]dining.BookedReservation, error) {
	return s.queryBooked(ctx, bookedSelect+" WHERE r.restaurant_id = ? ORDER BY r.starts_at, r.id", restaurantID)
}

func (s *Store) UserReservations(ctx context.Context, userID dining.UserID) ([]dining.BookedReservation, error) {
	return s.queryBooked(ctx, bookedSelect+" WHERE r.user_id = ? ORDER BY r.starts_at, r.id", userID)
}

func (s *Store) FutureReservations(ctx context.Context, restaurantID dining.RestaurantID, after time.Time) ([]dining.BookedReservation, error) {
	return s.queryBooked(ctx,
		bookedSelect+" WHERE r.restaurant_id = ? AND r.starts_at > ? ORDER BY r.starts_at, r.id",
		restaurantID, unix(after))
}

func (s *Store) OversizedReservations(ctx context.Context, tableID dining.TableID, capacity int, after time.Time) ([]dining.BookedReservation, error) {
	return s.queryBooked(ctx,
		bookedSelect+" WHERE r.table_id = ? AND r.persons > ? AND r.starts_at > ? ORDER BY r.starts_at, r.id",
		tableID, capacity, unix(after))
}

func (s *Store) queryBooked(ctx context.Context, query string, args ...any) ([]dining.BookedReservation, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query reservations: %w", err))
	}
	return scanBooked(rows)
}

func scanBooked(rows *sql.Rows) ([]dining.BookedReservation, error) {
	defer rows.Close()

	var rs []dining.BookedReservation
	for rows.Next() {
		var (
			b        dining.BookedReservation
			startsAt int64
		)
		if err := rows.Scan(&b.ID, &b.RestaurantID, &b.TableID, &b.UserID, &b.Persons, &startsAt,
			&b.TableNumber, &b.UserName, &b.UserEmail, &b.RestaurantName); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		b.StartsAt = fromUnix(startsAt)
		rs = append(rs, b)
	}
	return rs, classify(rows.Err())
}

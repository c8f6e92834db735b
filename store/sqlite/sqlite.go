/*
Package sqlite provides the SQLite-backed storage accessor for the dining engine.

PURPOSE:
  Implements dining.TxStore with database/sql and go-sqlite3. Every query is
  parameterized. The same schema runs on any SQL database with minor
  dialect changes.

KEY TABLES:
  users, restaurants            diners and the restaurant each manager runs
  restaurant_tables             (restaurant_id, table_number) unique, capacity > 0
  opening_periods               one row per (restaurant_id, day_of_week)
  reservations                  starts_at as unix seconds
  menu_items, food_orders,      prices as decimal text, one order_items row per
  order_items                   ordered unit
  reviews

REFERENTIAL INTEGRITY:
  Foreign keys are enforced but never cascade. The engine deletes dependent
  rows (order lines of a menu item, lines of a rejected order) explicitly in
  the same transaction as the parent.

CONCURRENCY:
  WithTx serializes transactions through a mutex and opens them with
  BEGIN IMMEDIATE (_txlock=immediate), so a select-then-insert inside one
  transaction cannot interleave with another writer. Busy or locked
  databases surface as dining.ErrConcurrentModification.

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/tablenest.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := dining.NewService(store, notifier, logger)

SEE ALSO:
  - dining/store.go: Interface definitions
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/tablenest/dining-engine/dining"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements dining.TxStore using SQLite. A Store returned to a
// WithTx callback is bound to that transaction.
type Store struct {
	db   *sql.DB
	q    querier
	mu   *sync.Mutex
	inTx bool
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, q: db, mu: &sync.Mutex{}}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		professional BOOLEAN NOT NULL DEFAULT FALSE,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS restaurants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		manager_user_id INTEGER NOT NULL UNIQUE REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS restaurant_tables (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		restaurant_id INTEGER NOT NULL REFERENCES restaurants(id),
		table_number INTEGER NOT NULL,
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		UNIQUE(restaurant_id, table_number)
	);

	-- Opening and closing times are minutes since midnight
	CREATE TABLE IF NOT EXISTS opening_periods (
		restaurant_id INTEGER NOT NULL REFERENCES restaurants(id),
		day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 1 AND 7),
		opening_time INTEGER NOT NULL,
		closing_time INTEGER NOT NULL,
		CHECK (opening_time < closing_time),
		PRIMARY KEY (restaurant_id, day_of_week)
	);

	CREATE TABLE IF NOT EXISTS reservations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		restaurant_id INTEGER NOT NULL REFERENCES restaurants(id),
		table_id INTEGER NOT NULL REFERENCES restaurant_tables(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		persons INTEGER NOT NULL CHECK (persons > 0),
		starts_at INTEGER NOT NULL
	);

	-- Collision checks scan one table's bookings around a start time
	CREATE INDEX IF NOT EXISTS idx_reservations_table_start
		ON reservations(table_id, starts_at);
	CREATE INDEX IF NOT EXISTS idx_reservations_restaurant_start
		ON reservations(restaurant_id, starts_at);
	CREATE INDEX IF NOT EXISTS idx_reservations_user
		ON reservations(user_id);

	CREATE TABLE IF NOT EXISTS menu_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		restaurant_id INTEGER NOT NULL REFERENCES restaurants(id),
		section TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		calories INTEGER NOT NULL DEFAULT 0,
		price TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_menu_items_restaurant
		ON menu_items(restaurant_id);

	CREATE TABLE IF NOT EXISTS food_orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		restaurant_id INTEGER NOT NULL REFERENCES restaurants(id),
		table_id INTEGER NOT NULL REFERENCES restaurant_tables(id),
		price TEXT NOT NULL DEFAULT '0',
		ordered_at INTEGER NOT NULL,
		fulfilled_at INTEGER,
		confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		paid BOOLEAN NOT NULL DEFAULT FALSE
	);

	-- Order queue: unfulfilled orders per restaurant
	CREATE INDEX IF NOT EXISTS idx_food_orders_queue
		ON food_orders(restaurant_id, fulfilled_at, id);
	-- Bills: unpaid orders per table
	CREATE INDEX IF NOT EXISTS idx_food_orders_table
		ON food_orders(table_id, paid);

	CREATE TABLE IF NOT EXISTS order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		food_order_id INTEGER NOT NULL REFERENCES food_orders(id),
		menu_item_id INTEGER NOT NULL REFERENCES menu_items(id)
	);

	CREATE INDEX IF NOT EXISTS idx_order_items_order
		ON order_items(food_order_id);
	CREATE INDEX IF NOT EXISTS idx_order_items_menu_item
		ON order_items(menu_item_id);

	CREATE TABLE IF NOT EXISTS reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		restaurant_id INTEGER NOT NULL REFERENCES restaurants(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		title TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_restaurant
		ON reviews(restaurant_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL STORE (dining.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction. Calls made on a
// store already bound to a transaction join it.
func (s *Store) WithTx(ctx context.Context, fn func(store dining.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer sqlTx.Rollback()

	if err := fn(&Store{db: s.db, q: sqlTx, mu: s.mu, inTx: true}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return classify(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// =============================================================================
// USER STORE
// =============================================================================

func (s *Store) CreateUser(ctx context.Context, u dining.User) (dining.UserID, error) {
	res, err := s.q.ExecContext(ctx,
		"INSERT INTO users (name, email, professional, created_at) VALUES (?, ?, ?, ?)",
		u.Name, u.Email, u.Professional, unix(u.CreatedAt),
	)
	if isUniqueConstraintError(err) {
		return 0, dining.ErrDuplicateEmail
	}
	id, err := insertedID(res, err, "insert user")
	return dining.UserID(id), err
}

func (s *Store) GetUser(ctx context.Context, id dining.UserID) (*dining.User, error) {
	var (
		u         dining.User
		createdAt int64
	)
	err := s.q.QueryRowContext(ctx,
		"SELECT id, name, email, professional, created_at FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Professional, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get user: %w", err))
	}
	u.CreatedAt = fromUnix(createdAt)
	return &u, nil
}

func (s *Store) SetProfessional(ctx context.Context, id dining.UserID) error {
	res, err := s.q.ExecContext(ctx, "UPDATE users SET professional = TRUE WHERE id = ?", id)
	return affectedOne(res, err, "update user", dining.ErrUserNotFound)
}

// =============================================================================
// RESTAURANT STORE
// =============================================================================

const restaurantColumns = "id, name, description, category, latitude, longitude, manager_user_id"

func (s *Store) CreateRestaurant(ctx context.Context, r dining.Restaurant) (dining.RestaurantID, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO restaurants (name, description, category, latitude, longitude, manager_user_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Name, r.Description, r.Category, r.Location.Latitude, r.Location.Longitude, r.ManagerID,
	)
	if isUniqueConstraintError(err) {
		return 0, dining.ErrAlreadyManager
	}
	id, err := insertedID(res, err, "insert restaurant")
	return dining.RestaurantID(id), err
}

func (s *Store) GetRestaurant(ctx context.Context, id dining.RestaurantID) (*dining.Restaurant, error) {
	return s.getRestaurant(ctx, "SELECT "+restaurantColumns+" FROM restaurants WHERE id = ?", id)
}

func (s *Store) RestaurantByManager(ctx context.Context, manager dining.UserID) (*dining.Restaurant, error) {
	return s.getRestaurant(ctx, "SELECT "+restaurantColumns+" FROM restaurants WHERE manager_user_id = ?", manager)
}

func (s *Store) getRestaurant(ctx context.Context, query string, arg any) (*dining.Restaurant, error) {
	rows, err := s.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get restaurant: %w", err))
	}
	rs, err := scanRestaurants(rows)
	if err != nil || len(rs) == 0 {
		return nil, err
	}
	return &rs[0], nil
}

func (s *Store) ListRestaurants(ctx context.Context) ([]dining.Restaurant, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+restaurantColumns+" FROM restaurants ORDER BY name")
	if err != nil {
		return nil, classify(fmt.Errorf("failed to list restaurants: %w", err))
	}
	return scanRestaurants(rows)
}

func scanRestaurants(rows *sql.Rows) ([]dining.Restaurant, error) {
	defer rows.Close()

	var rs []dining.Restaurant
	for rows.Next() {
		var r dining.Restaurant
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Category,
			&r.Location.Latitude, &r.Location.Longitude, &r.ManagerID); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		rs = append(rs, r)
	}
	return rs, classify(rows.Err())
}

func (s *Store) UpdateRestaurant(ctx context.Context, r dining.Restaurant) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE restaurants
		SET name = ?, description = ?, category = ?, latitude = ?, longitude = ?
		WHERE id = ?`,
		r.Name, r.Description, r.Category, r.Location.Latitude, r.Location.Longitude, r.ID,
	)
	return affectedOne(res, err, "update restaurant", dining.ErrRestaurantNotFound)
}

// =============================================================================
// TABLE STORE
// =============================================================================

const tableColumns = "id, restaurant_id, table_number, capacity"

func (s *Store) CreateTable(ctx context.Context, t dining.Table) (dining.TableID, error) {
	res, err := s.q.ExecContext(ctx,
		"INSERT INTO restaurant_tables (restaurant_id, table_number, capacity) VALUES (?, ?, ?)",
		t.RestaurantID, t.Number, t.Capacity,
	)
	if isUniqueConstraintError(err) {
		return 0, dining.ErrDuplicateTableNumber
	}
	id, err := insertedID(res, err, "insert table")
	return dining.TableID(id), err
}

func (s *Store) GetTable(ctx context.Context, id dining.TableID) (*dining.Table, error) {
	return s.getTable(ctx, "SELECT "+tableColumns+" FROM restaurant_tables WHERE id = ?", id)
}

func (s *Store) TableByNumber(ctx context.Context, restaurantID dining.RestaurantID, number int) (*dining.Table, error) {
	return s.getTable(ctx,
		"SELECT "+tableColumns+" FROM restaurant_tables WHERE restaurant_id = ? AND table_number = ?",
		restaurantID, number)
}

func (s *Store) getTable(ctx context.Context, query string, args ...any) (*dining.Table, error) {
	tables, err := s.queryTables(ctx, query, args...)
	if err != nil || len(tables) == 0 {
		return nil, err
	}
	return &tables[0], nil
}

func (s *Store) UpdateTable(ctx context.Context, t dining.Table) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE restaurant_tables SET table_number = ?, capacity = ? WHERE id = ? AND restaurant_id = ?",
		t.Number, t.Capacity, t.ID, t.RestaurantID,
	)
	if isUniqueConstraintError(err) {
		return dining.ErrDuplicateTableNumber
	}
	return affectedOne(res, err, "update table", dining.ErrTableNotFound)
}

func (s *Store) ListTables(ctx context.Context, restaurantID dining.RestaurantID) ([]dining.Table, error) {
	return s.queryTables(ctx,
		"SELECT "+tableColumns+" FROM restaurant_tables WHERE restaurant_id = ? ORDER BY table_number",
		restaurantID)
}

func (s *Store) queryTables(ctx context.Context, query string, args ...any) ([]dining.Table, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query tables: %w", err))
	}
	defer rows.Close()

	var tables []dining.Table
	for rows.Next() {
		var t dining.Table
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.Number, &t.Capacity); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, classify(rows.Err())
}

// =============================================================================
// OPENING PERIODS
// =============================================================================

func (s *Store) OpeningPeriods(ctx context.Context, restaurantID dining.RestaurantID, day dining.Weekday) ([]dining.OpeningPeriod, error) {
	return s.queryPeriods(ctx, `
		SELECT restaurant_id, day_of_week, opening_time, closing_time FROM opening_periods
		WHERE restaurant_id = ? AND day_of_week = ?
		ORDER BY opening_time`, restaurantID, day)
}

func (s *Store) ListOpeningPeriods(ctx context.Context, restaurantID dining.RestaurantID) ([]dining.OpeningPeriod, error) {
	return s.queryPeriods(ctx, `
		SELECT restaurant_id, day_of_week, opening_time, closing_time FROM opening_periods
		WHERE restaurant_id = ?
		ORDER BY day_of_week, opening_time`, restaurantID)
}

func (s *Store) queryPeriods(ctx context.Context, query string, args ...any) ([]dining.OpeningPeriod, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query opening periods: %w", err))
	}
	defer rows.Close()

	var periods []dining.OpeningPeriod
	for rows.Next() {
		var p dining.OpeningPeriod
		if err := rows.Scan(&p.RestaurantID, &p.Day, &p.Opens, &p.Closes); err != nil {
			return nil, fmt.Errorf("failed to scan opening period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, classify(rows.Err())
}

func (s *Store) ReplaceOpeningPeriods(ctx context.Context, restaurantID dining.RestaurantID, periods []dining.OpeningPeriod) error {
	if _, err := s.q.ExecContext(ctx, "DELETE FROM opening_periods WHERE restaurant_id = ?", restaurantID); err != nil {
		return classify(fmt.Errorf("failed to delete opening periods: %w", err))
	}
	for _, p := range periods {
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO opening_periods (restaurant_id, day_of_week, opening_time, closing_time)
			VALUES (?, ?, ?, ?)`,
			restaurantID, p.Day, p.Opens, p.Closes,
		)
		if err != nil {
			return classify(fmt.Errorf("failed to insert opening period: %w", err))
		}
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

func unix(t time.Time) int64 { return t.Unix() }

func fromUnix(v int64) time.Time { return time.Unix(v, 0).UTC() }

func nullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func insertedID(res sql.Result, err error, op string) (int64, error) {
	if err != nil {
		return 0, classify(fmt.Errorf("failed to %s: %w", op, err))
	}
	return res.LastInsertId()
}

// affectedOne maps a single-row mutation that touched nothing to notFound.
func affectedOne(res sql.Result, err error, op string, notFound error) error {
	if err != nil {
		return classify(fmt.Errorf("failed to %s: %w", op, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

// classify marks lock contention as a concurrent modification.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
		return fmt.Errorf("%w: %v", dining.ErrConcurrentModification, err)
	}
	return err
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tablenest/dining-engine/dining"
)

// =============================================================================
// MENU STORE (dining.MenuStore interface)
// =============================================================================

const menuColumns = "id, restaurant_id, section, name, description, calories, price"

func (s *Store) CreateMenuItem(ctx context.Context, m dining.MenuItem) (dining.MenuItemID, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO menu_items (restaurant_id, section, name, description, calories, price)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.RestaurantID, m.Section, m.Name, m.Description, m.Calories, m.Price.String(),
	)
	id, err := insertedID(res, err, "insert menu item")
	return dining.MenuItemID(id), err
}

func (s *Store) GetMenuItem(ctx context.Context, restaurantID dining.RestaurantID, id dining.MenuItemID) (*dining.MenuItem, error) {
	items, err := s.queryMenu(ctx,
		"SELECT "+menuColumns+" FROM menu_items WHERE restaurant_id = ? AND id = ?", restaurantID, id)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return &items[0], nil
}

func (s *Store) UpdateMenuItem(ctx context.Context, m dining.MenuItem) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE menu_items
		SET section = ?, name = ?, description = ?, calories = ?, price = ?
		WHERE id = ? AND restaurant_id = ?`,
		m.Section, m.Name, m.Description, m.Calories, m.Price.String(), m.ID, m.RestaurantID,
	)
	return affectedOne(res, err, "update menu item", dining.ErrMenuItemNotFound)
}

func (s *Store) DeleteMenuItem(ctx context.Context, restaurantID dining.RestaurantID, id dining.MenuItemID) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM menu_items WHERE id = ? AND restaurant_id = ?", id, restaurantID)
	return affectedOne(res, err, "delete menu item", dining.ErrMenuItemNotFound)
}

func (s *Store) ListMenuItems(ctx context.Context, restaurantID dining.RestaurantID) ([]dining.MenuItem, error) {
	return s.queryMenu(ctx,
		"SELECT "+menuColumns+" FROM menu_items WHERE restaurant_id = ? ORDER BY section, name, id", restaurantID)
}

func (s *Store) DeleteOrderLinesForItem(ctx context.Context, id dining.MenuItemID) (int64, error) {
	res, err := s.q.ExecContext(ctx, "DELETE FROM order_items WHERE menu_item_id = ?", id)
	if err != nil {
		return 0, classify(fmt.Errorf("failed to delete order lines: %w", err))
	}
	return res.RowsAffected()
}

func (s *Store) queryMenu(ctx context.Context, query string, args ...any) ([]dining.MenuItem, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query menu items: %w", err))
	}
	defer rows.Close()

	var items []dining.MenuItem
	for rows.Next() {
		var m dining.MenuItem
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.Section, &m.Name, &m.Description, &m.Calories, &m.Price); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, m)
	}
	return items, classify(rows.Err())
}

// =============================================================================
// ORDER STORE (dining.OrderStore interface)
// =============================================================================

const orderColumns = "id, user_id, restaurant_id, table_id, price, ordered_at, fulfilled_at, confirmed, paid"

func (s *Store) InsertOrder(ctx context.Context, o dining.FoodOrder) (dining.OrderID, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO food_orders (user_id, restaurant_id, table_id, price, ordered_at, fulfilled_at, confirmed, paid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.UserID, o.RestaurantID, o.TableID, o.Price.String(), unix(o.OrderedAt),
		nullUnix(o.FulfilledAt), o.Confirmed, o.Paid,
	)
	id, err := insertedID(res, err, "insert order")
	return dining.OrderID(id), err
}

func (s *Store) GetOrder(ctx context.Context, id dining.OrderID) (*dining.FoodOrder, error) {
	orders, err := s.queryOrders(ctx, "SELECT "+orderColumns+" FROM food_orders WHERE id = ?", id)
	if err != nil || len(orders) == 0 {
		return nil, err
	}
	return &orders[0], nil
}

func (s *Store) InsertOrderLine(ctx context.Context, orderID dining.OrderID, itemID dining.MenuItemID) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO order_items (food_order_id, menu_item_id) VALUES (?, ?)", orderID, itemID)
	if err != nil {
		return classify(fmt.Errorf("failed to insert order line: %w", err))
	}
	return nil
}

func (s *Store) SetOrderPrice(ctx context.Context, id dining.OrderID, price decimal.Decimal) error {
	res, err := s.q.ExecContext(ctx, "UPDATE food_orders SET price = ? WHERE id = ?", price.String(), id)
	return affectedOne(res, err, "update order price", dining.ErrOrderNotFound)
}

func (s *Store) ConfirmOrder(ctx context.Context, id dining.OrderID) error {
	res, err := s.q.ExecContext(ctx, "UPDATE food_orders SET confirmed = TRUE WHERE id = ?", id)
	return affectedOne(res, err, "confirm order", dining.ErrOrderNotFound)
}

func (s *Store) FulfillOrder(ctx context.Context, id dining.OrderID, at time.Time) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE food_orders
		SET fulfilled_at = COALESCE(fulfilled_at, ?), confirmed = TRUE
		WHERE id = ?`,
		unix(at), id,
	)
	return affectedOne(res, err, "fulfill order", dining.ErrOrderNotFound)
}

func (s *Store) PayOrder(ctx context.Context, id dining.OrderID) error {
	res, err := s.q.ExecContext(ctx, "UPDATE food_orders SET paid = TRUE, confirmed = TRUE WHERE id = ?", id)
	return affectedOne(res, err, "pay order", dining.ErrOrderNotFound)
}

func (s *Store) DeleteOrder(ctx context.Context, id dining.OrderID) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM food_orders WHERE id = ?", id)
	return affectedOne(res, err, "delete order", dining.ErrOrderNotFound)
}

func (s *Store) DeleteOrderLines(ctx context.Context, id dining.OrderID) error {
	if _, err := s.q.ExecContext(ctx, "DELETE FROM order_items WHERE food_order_id = ?", id); err != nil {
		return classify(fmt.Errorf("failed to delete order lines: %w", err))
	}
	return nil
}

func (s *Store) OrderLines(ctx context.Context, id dining.OrderID) ([]dining.OrderLine, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT oi.id, oi.food_order_id, oi.menu_item_id, m.name, m.section, m.price
		FROM order_items oi
		JOIN menu_items m ON m.id = oi.menu_item_id
		WHERE oi.food_order_id = ?
		ORDER BY oi.id`, id)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query order lines: %w", err))
	}
	defer rows.Close()

	var lines []dining.OrderLine
	for rows.Next() {
		var l dining.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &l.Name, &l.Section, &l.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, classify(rows.Err())
}

func (s *Store) UnfulfilledOrders(ctx context.Context, restaurantID dining.RestaurantID, after dining.OrderID) ([]dining.FoodOrder, error) {
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM food_orders
		WHERE restaurant_id = ? AND id > ? AND fulfilled_at IS NULL
		ORDER BY id`, restaurantID, after)
}

func (s *Store) UnpaidOrders(ctx context.Context, tableID dining.TableID) ([]dining.FoodOrder, error) {
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM food_orders
		WHERE table_id = ? AND paid = FALSE
		ORDER BY ordered_at DESC, id DESC`, tableID)
}

func (s *Store) FulfilledOrdersBetween(ctx context.Context, restaurantID dining.RestaurantID, from, to time.Time) ([]dining.FoodOrder, error) {
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM food_orders
		WHERE restaurant_id = ? AND fulfilled_at IS NOT NULL AND ordered_at BETWEEN ? AND ?
		ORDER BY ordered_at, id`, restaurantID, unix(from), unix(to))
}

func (s *Store) queryOrders(ctx context.Context, query string, args ...any) ([]dining.FoodOrder, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query orders: %w", err))
	}
	defer rows.Close()

	var orders []dining.FoodOrder
	for rows.Next() {
		var (
			o           dining.FoodOrder
			orderedAt   int64
			fulfilledAt sql.NullInt64
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.RestaurantID, &o.TableID, &o.Price,
			&orderedAt, &fulfilledAt, &o.Confirmed, &o.Paid); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.OrderedAt = fromUnix(orderedAt)
		if fulfilledAt.Valid {
			t := fromUnix(fulfilledAt.Int64)
			o.FulfilledAt = &t
		}
		orders = append(orders, o)
	}
	return orders, classify(rows.Err())
}

// =============================================================================
// REVIEW STORE (dining.ReviewStore interface)
// =============================================================================

func (s *Store) InsertReview(ctx context.Context, r dining.Review) (dining.ReviewID, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO reviews (restaurant_id, user_id, rating, title, body)
		VALUES (?, ?, ?, ?, ?)`,
		r.RestaurantID, r.UserID, r.Rating, r.Title, r.Body,
	)
	id, err := insertedID(res, err, "insert review")
	return dining.ReviewID(id), err
}

func (s *Store) ListReviews(ctx context.Context, restaurantID dining.RestaurantID) ([]dining.Review, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT rv.id, rv.restaurant_id, rv.user_id, u.name, rv.rating, rv.title, rv.body
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.restaurant_id = ?
		ORDER BY rv.id DESC`, restaurantID)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query reviews: %w", err))
	}
	defer rows.Close()

	var reviews []dining.Review
	for rows.Next() {
		var r dining.Review
		if err := rows.Scan(&r.ID, &r.RestaurantID, &r.UserID, &r.UserName, &r.Rating, &r.Title, &r.Body); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, classify(rows.Err())
}

// Compile-time interface check.
var _ dining.TxStore = (*Store)(nil)

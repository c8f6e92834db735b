/*
orders.go - Food order lifecycle

STATES:
  open ──AddItem*──▶ confirmed ──▶ fulfilled (timeFulfilled set)
                              └──▶ paid
  open/confirmed ──reject──▶ (row deleted)

SetStatus applies exactly one transition, chosen by priority:
  fulfilled > paid > confirmed > reject (none set)
Fulfilling or paying also confirms the order. timeFulfilled is set once.
Only open orders accept items.

PRICING:
  Each ordered unit is one order line. The order's price is a running total:
  every unit reads the menu item's current price and adds it, so menu price
  changes only affect units added afterwards.

PARTIAL ADDS:
  Each unit (line insert + price update) commits on its own. If unit k of n
  fails, units 1..k-1 stay committed and AddItem returns a *PartialAddError
  reporting how many were added.
*/
package dining

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ORDER HANDLE
// =============================================================================

// Order is a handle on a stored food order, obtained from CreateOrder or
// LoadOrder.
type Order struct {
	svc     *Service
	row     FoodOrder
	deleted bool
}

// CreateOrder opens an empty order for a table of the restaurant.
func (s *Service) CreateOrder(ctx context.Context, userID UserID, restaurantID RestaurantID, tableID TableID) (*Order, error) {
	row := FoodOrder{
		UserID:       userID,
		RestaurantID: restaurantID,
		TableID:      tableID,
		Price:        decimal.Zero,
		OrderedAt:    s.now(),
	}
	err := s.inTx(ctx, "creating the order", func(st Store) error {
		if err := requireUser(ctx, st, userID); err != nil {
			return err
		}
		if err := requireRestaurant(ctx, st, restaurantID); err != nil {
			return err
		}
		table, err := st.GetTable(ctx, tableID)
		if err != nil {
			return err
		}
		if table == nil || table.RestaurantID != restaurantID {
			return ErrTableNotFound
		}
		row.ID, err = st.InsertOrder(ctx, row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Order{svc: s, row: row}, nil
}

// LoadOrder fetches an existing order.
func (s *Service) LoadOrder(ctx context.Context, id OrderID) (*Order, error) {
	var row *FoodOrder
	err := s.inTx(ctx, "retrieving the order", func(st Store) error {
		var err error
		row, err = st.GetOrder(ctx, id)
		if err == nil && row == nil {
			return ErrOrderNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Order{svc: s, row: *row}, nil
}

func (o *Order) FoodOrderID() OrderID       { return o.row.ID }
func (o *Order) RestaurantID() RestaurantID { return o.row.RestaurantID }

// Snapshot returns the order as last read or written through this handle.
func (o *Order) Snapshot() FoodOrder { return o.row }

// PartialAddError reports an AddItem call that stopped after committing some
// of the requested units.
type PartialAddError struct {
	Added     int
	Requested int
	Err       error
}

func (e *PartialAddError) Error() string {
	return fmt.Sprintf("added %d of %d items: %v", e.Added, e.Requested, e.Err)
}

func (e *PartialAddError) Unwrap() error { return e.Err }

// AddItem adds quantity units of a menu item of the order's restaurant.
func (o *Order) AddItem(ctx context.Context, itemID MenuItemID, quantity int) error {
	if quantity < 1 {
		return &ValidationError{Field: "quantity", Message: "must be at least 1"}
	}
	if o.deleted {
		return ErrOrderNotFound
	}

	s := o.svc
	err := s.inTx(ctx, "checking the menu item", func(st Store) error {
		item, err := st.GetMenuItem(ctx, o.row.RestaurantID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrMenuItemNotFound
		}
		_, err = o.openRow(ctx, st)
		return err
	})
	if err != nil {
		return err
	}

	for added := 0; added < quantity; added++ {
		err := s.inTx(ctx, "adding the item to the order", func(st Store) error {
			item, err := st.GetMenuItem(ctx, o.row.RestaurantID, itemID)
			if err != nil {
				return err
			}
			if item == nil {
				return ErrMenuItemNotFound
			}
			row, err := o.openRow(ctx, st)
			if err != nil {
				return err
			}
			if err := st.InsertOrderLine(ctx, row.ID, itemID); err != nil {
				return err
			}
			row.Price = row.Price.Add(item.Price)
			if err := st.SetOrderPrice(ctx, row.ID, row.Price); err != nil {
				return err
			}
			o.row = *row
			return nil
		})
		if err != nil {
			if added == 0 {
				return err
			}
			s.Logger.Warn("order item add stopped partway",
				slog.Int64("order_id", int64(o.row.ID)),
				slog.Int("added", added),
				slog.Int("requested", quantity))
			return &PartialAddError{Added: added, Requested: quantity, Err: err}
		}
	}
	return nil
}

// openRow re-reads the order and refuses orders past the open state.
func (o *Order) openRow(ctx context.Context, st Store) (*FoodOrder, error) {
	row, err := st.GetOrder(ctx, o.row.ID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrOrderNotFound
	}
	if row.Status() != OrderOpen {
		return nil, ErrOrderClosed
	}
	return row, nil
}

// SetStatus applies one transition: fulfilled, else paid, else confirmed.
// With no flag set the order is rejected and deleted with its lines.
func (o *Order) SetStatus(ctx context.Context, confirmed, fulfilled, paid bool) error {
	if o.deleted {
		return ErrOrderNotFound
	}

	s := o.svc
	rejected := !confirmed && !fulfilled && !paid
	var row *FoodOrder
	err := s.inTx(ctx, "updating the order status", func(st Store) error {
		var err error
		switch {
		case fulfilled:
			err = st.FulfillOrder(ctx, o.row.ID, s.now())
		case paid:
			err = st.PayOrder(ctx, o.row.ID)
		case confirmed:
			err = st.ConfirmOrder(ctx, o.row.ID)
		default:
			if err := st.DeleteOrderLines(ctx, o.row.ID); err != nil {
				return err
			}
			return st.DeleteOrder(ctx, o.row.ID)
		}
		if err != nil {
			return err
		}
		// The stored row keeps the first fulfilment time.
		row, err = st.GetOrder(ctx, o.row.ID)
		return err
	})
	if err != nil {
		return err
	}

	if rejected {
		o.deleted = true
		s.Logger.Info("order rejected", slog.Int64("order_id", int64(o.row.ID)))
		return nil
	}
	if row != nil {
		o.row = *row
	}
	return nil
}

// Lines returns the ordered units.
func (o *Order) Lines(ctx context.Context) ([]OrderLine, error) {
	var lines []OrderLine
	err := o.svc.inTx(ctx, "retrieving order items", func(st Store) error {
		var err error
		lines, err = st.OrderLines(ctx, o.row.ID)
		return err
	})
	return lines, err
}

// =============================================================================
// QUEUE & BILL
// =============================================================================

// OrderQueue returns the restaurant's unfulfilled orders with an ID above
// after, oldest first, each with its lines. Managers poll it with the last
// ID they have seen.
func (s *Service) OrderQueue(ctx context.Context, restaurantID RestaurantID, after OrderID) ([]QueuedOrder, error) {
	var queue []QueuedOrder
	err := s.inTx(ctx, "retrieving the order queue", func(st Store) error {
		orders, err := st.UnfulfilledOrders(ctx, restaurantID, after)
		if err != nil {
			return err
		}
		queue, err = withLines(ctx, st, orders)
		return err
	})
	return queue, err
}

// Bill is what a table still owes.
type Bill struct {
	TableID TableID
	Orders  []QueuedOrder
	Total   decimal.Decimal
}

// TableBill returns the table's unpaid orders, newest first, with the total.
func (s *Service) TableBill(ctx context.Context, restaurantID RestaurantID, tableID TableID) (*Bill, error) {
	bill := &Bill{TableID: tableID, Total: decimal.Zero}
	err := s.inTx(ctx, "retrieving the bill", func(st Store) error {
		table, err := st.GetTable(ctx, tableID)
		if err != nil {
			return err
		}
		if table == nil || table.RestaurantID != restaurantID {
			return ErrTableNotFound
		}
		orders, err := st.UnpaidOrders(ctx, tableID)
		if err != nil {
			return err
		}
		bill.Orders, err = withLines(ctx, st, orders)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, o := range bill.Orders {
		bill.Total = bill.Total.Add(o.Price)
	}
	return bill, nil
}

func withLines(ctx context.Context, st Store, orders []FoodOrder) ([]QueuedOrder, error) {
	out := make([]QueuedOrder, 0, len(orders))
	for _, o := range orders {
		lines, err := st.OrderLines(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, QueuedOrder{FoodOrder: o, Lines: lines})
	}
	return out, nil
}

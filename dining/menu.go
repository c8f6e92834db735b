package dining

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

const maxLabelLength = 50

// MenuItemInput is a menu item as submitted by a manager.
type MenuItemInput struct {
	Section     string
	Name        string
	Description string
	Calories    int
	Price       decimal.Decimal
}

func (in MenuItemInput) validate() error {
	switch {
	case strings.TrimSpace(in.Section) == "":
		return &ValidationError{Field: "section", Message: "must not be empty"}
	case len(in.Section) > maxLabelLength:
		return &ValidationError{Field: "section", Message: "must not exceed 50 characters"}
	case strings.TrimSpace(in.Name) == "":
		return &ValidationError{Field: "name", Message: "must not be empty"}
	case len(in.Name) > maxLabelLength:
		return &ValidationError{Field: "name", Message: "must not exceed 50 characters"}
	case in.Calories < 0:
		return &ValidationError{Field: "calories", Message: "must not be negative"}
	case in.Price.IsNegative():
		return &ValidationError{Field: "price", Message: "must not be negative"}
	case !in.Price.Equal(in.Price.Round(2)):
		return &ValidationError{Field: "price", Message: "must have no more than 2 decimal places"}
	}
	return nil
}

func (in MenuItemInput) item(restaurantID RestaurantID, id MenuItemID) MenuItem {
	return MenuItem{
		ID:           id,
		RestaurantID: restaurantID,
		Section:      in.Section,
		Name:         in.Name,
		Description:  in.Description,
		Calories:     in.Calories,
		Price:        in.Price,
	}
}

// AddMenuItem adds an item to the restaurant's menu.
func (s *Service) AddMenuItem(ctx context.Context, restaurantID RestaurantID, in MenuItemInput) (*MenuItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	item := in.item(restaurantID, 0)
	err := s.inTx(ctx, "inserting the menu item", func(st Store) error {
		if err := requireRestaurant(ctx, st, restaurantID); err != nil {
			return err
		}
		var err error
		item.ID, err = st.CreateMenuItem(ctx, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ChangeMenuItem overwrites a menu item. Units already ordered keep the
// price they were added at.
func (s *Service) ChangeMenuItem(ctx context.Context, restaurantID RestaurantID, id MenuItemID, in MenuItemInput) (*MenuItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	item := in.item(restaurantID, id)
	err := s.inTx(ctx, "updating the menu item", func(st Store) error {
		return st.UpdateMenuItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteMenuItem removes a menu item and every order line referencing it
// in one transaction.
func (s *Service) DeleteMenuItem(ctx context.Context, restaurantID RestaurantID, id MenuItemID) error {
	var removed int64
	err := s.inTx(ctx, "deleting the menu item", func(st Store) error {
		item, err := st.GetMenuItem(ctx, restaurantID, id)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrMenuItemNotFound
		}
		if removed, err = st.DeleteOrderLinesForItem(ctx, id); err != nil {
			return err
		}
		return st.DeleteMenuItem(ctx, restaurantID, id)
	})
	if err != nil {
		return err
	}
	s.Logger.Info("menu item deleted",
		slog.Int64("menu_item_id", int64(id)),
		slog.Int64("order_lines_removed", removed))
	return nil
}

// Menu returns the restaurant's items grouped by section, then by name.
func (s *Service) Menu(ctx context.Context, restaurantID RestaurantID) ([]MenuItem, error) {
	var items []MenuItem
	err := s.inTx(ctx, "retrieving the menu", func(st Store) error {
		if err := requireRestaurant(ctx, st, restaurantID); err != nil {
			return err
		}
		var err error
		items, err = st.ListMenuItems(ctx, restaurantID)
		return err
	})
	return items, err
}

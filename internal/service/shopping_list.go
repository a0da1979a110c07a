package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
)

// ShoppingListItem is one line of a shopping list
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type shoppingListKey struct {
	name string
	unit string
}

// AggregateShoppingList sums amounts per (name, unit). Items keep the order
// in which their key first appeared.
func AggregateShoppingList(rows []ShoppingListItem) []ShoppingListItem {
	index := make(map[shoppingListKey]int)
	items := make([]ShoppingListItem, 0, len(rows))
	for _, row := range rows {
		key := shoppingListKey{name: row.Name, unit: row.MeasurementUnit}
		if i, ok := index[key]; ok {
			items[i].Amount += row.Amount
			continue
		}
		index[key] = len(items)
		items = append(items, row)
	}
	return items
}

// WriteShoppingList renders one "name, amount, unit" line per item
func WriteShoppingList(w io.Writer, items []ShoppingListItem) error {
	bw := bufio.NewWriter(w)
	for _, item := range items {
		line := item.Name + ", " + strconv.Itoa(item.Amount) + ", " + item.MeasurementUnit + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ShoppingList collects the ingredients of every recipe in the user's cart.
// Rows are read in cart insertion order, then ingredient position.
func (s *RecipeService) ShoppingList(ctx context.Context, userID uuid.UUID) ([]ShoppingListItem, error) {
	var rows []ShoppingListItem
	err := s.db.WithContext(ctx).
		Table("shopping_cart_items AS sc").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, ri.amount AS amount").
		Joins("JOIN recipe_ingredients AS ri ON ri.recipe_id = sc.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = ri.ingredient_id").
		Where("sc.user_id = ?", userID).
		Order("sc.id, ri.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load shopping cart: %w", err)
	}
	return AggregateShoppingList(rows), nil
}

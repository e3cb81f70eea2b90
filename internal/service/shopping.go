package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
)

// ShoppingListItem is one aggregated ingredient line
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// ShoppingList sums the ingredient amounts of every recipe in the cart of
// userID, grouped by ingredient name and unit, ordered by name.
func (s *RecipeService) ShoppingList(ctx context.Context, userID uint) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := s.db.WithContext(ctx).
		Model(&models.ShoppingCartEntry{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_cart_entries.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").Order("ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	if len(items) == 0 {
		return nil, newValidationError("shopping_cart", "%s", ErrEmptyShoppingCart.Error())
	}
	return items, nil
}

// RenderShoppingList formats items as the downloadable plain-text list
func RenderShoppingList(items []ShoppingListItem) string {
	var b strings.Builder
	b.WriteString("Shopping list:\n\n")
	for _, it := range items {
		fmt.Fprintf(&b, "%s — %d%s\n", it.Name, it.Amount, it.MeasurementUnit)
	}
	return b.String()
}

// ShoppingListFilename is the attachment name offered to username
func ShoppingListFilename(username string) string {
	return username + "_shopping_list.txt"
}

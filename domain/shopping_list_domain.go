package domain

import (
	"fmt"
	"strings"
)

var (
	MessageSuccessAddToCart      = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart = "recipe removed from shopping cart"
	MessageFailedAddToCart       = "failed to add recipe to shopping cart"
	MessageFailedRemoveFromCart  = "failed to remove recipe from shopping cart"
	MessageFailedDownloadCart    = "failed to download shopping list"

	ErrAlreadyInCart = fmt.Errorf("recipe in shopping cart %w", ErrAlreadyExists)
	ErrNotInCart     = fmt.Errorf("recipe in shopping cart %w", ErrNotFound)
)

type ShoppingListItem struct {
	IngredientID    string `json:"ingredient_id"`
	Name            string `json:"name"`
	TotalAmount     int64  `json:"total_amount"`
	MeasurementUnit string `json:"measurement_unit"`
}

func (i ShoppingListItem) String() string {
	return fmt.Sprintf("%s, %d %s", i.Name, i.TotalAmount, i.MeasurementUnit)
}

// FormatShoppingList renders one "{name}, {total} {unit}" line per item.
func FormatShoppingList(items []ShoppingListItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.String())
	}
	return strings.Join(lines, "\n")
}

func ShoppingListFilename(username string) string {
	return fmt.Sprintf("%s_shopping_list.txt", username)
}

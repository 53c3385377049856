package shoppinglist

import (
	"context"

	"Foodgram/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ShoppingListRepository interface {
		SumIngredients(ctx context.Context, recipeIDs []string) ([]IngredientTotal, error)
	}

	shoppingListRepository struct {
		db *gorm.DB
	}

	// IngredientTotal is one grouped row of the shopping list query.
	IngredientTotal struct {
		IngredientID    uuid.UUID
		Name            string
		MeasurementUnit string
		TotalAmount     int64
	}
)

func NewShoppingListRepository(db *gorm.DB) ShoppingListRepository {
	return &shoppingListRepository{db: db}
}

// SumIngredients adds up the amounts of every ingredient used by recipeIDs,
// one row per ingredient id.
func (r *shoppingListRepository) SumIngredients(ctx context.Context, recipeIDs []string) ([]IngredientTotal, error) {
	var rows []IngredientTotal
	if len(recipeIDs) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).
		Model(&entities.RecipeIngredient{}).
		Select("recipe_ingredients.ingredient_id, ingredients.name, ingredients.measurement_unit, " +
			"CAST(SUM(recipe_ingredients.amount) AS BIGINT) AS total_amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id IN ?", recipeIDs).
		Group("recipe_ingredients.ingredient_id, ingredients.name, ingredients.measurement_unit").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

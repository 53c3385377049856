package domain

import (
	"fmt"
	"time"
)

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessAddFavorite     = "recipe added to favorites"
	MessageSuccessRemoveFavorite  = "recipe removed from favorites"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedCreateRecipe    = "failed to create recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedAddFavorite     = "failed to add recipe to favorites"
	MessageFailedRemoveFavorite  = "failed to remove recipe from favorites"

	ErrRecipeNotFound           = fmt.Errorf("recipe %w", ErrNotFound)
	ErrUnauthorizedRecipeAccess = fmt.Errorf("only the author or an administrator can change this recipe: %w", ErrPermissionDenied)
	ErrAuthenticationRequired   = fmt.Errorf("authentication required: %w", ErrPermissionDenied)
	ErrInvalidCookingTime       = fmt.Errorf("cooking time must be at least 1: %w", ErrValidation)
	ErrInvalidAmount            = fmt.Errorf("ingredient amount must be at least 1: %w", ErrValidation)
	ErrDuplicateIngredient      = fmt.Errorf("ingredient listed more than once: %w", ErrValidation)
	ErrEmptyComposition         = fmt.Errorf("recipe needs at least one ingredient: %w", ErrValidation)
	ErrInvalidImageFormat       = fmt.Errorf("invalid image format: %w", ErrValidation)
	ErrAlreadyFavorited         = fmt.Errorf("favorite %w", ErrAlreadyExists)
	ErrNotFavorited             = fmt.Errorf("favorite %w", ErrNotFound)
)

type (
	IngredientAmountRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required,min=1"`
	}

	// RecipeRequest carries the full desired state of a recipe. On update the
	// composition and tags replace the stored ones; an empty Image keeps the current image.
	RecipeRequest struct {
		Name        string                    `json:"name" validate:"required,max=200"`
		Image       string                    `json:"image"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime int                       `json:"cooking_time" validate:"required,min=1"`
		Tags        []string                  `json:"tags" validate:"dive,uuid"`
		Ingredients []IngredientAmountRequest `json:"ingredients" validate:"required,min=1,dive"`
	}

	RecipeIngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               string                     `json:"id"`
		Tags             []TagResponse              `json:"tags"`
		Author           UserResponse               `json:"author"`
		Ingredients      []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited      bool                       `json:"is_favorited"`
		IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
		Name             string                     `json:"name"`
		Image            string                     `json:"image"`
		Text             string                     `json:"text"`
		CookingTime      int                        `json:"cooking_time"`
		CreatedAt        time.Time                  `json:"created_at"`
	}

	// RecipeShort is the compact card returned by favorite, cart and subscription endpoints.
	RecipeShort struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	// RecipeFilter selects recipes for listing. Zero-valued fields do not filter.
	RecipeFilter struct {
		Tags        []string
		AuthorID    string
		IsFavorited bool
		IsInCart    bool
		Page        int
		Limit       int
	}
)

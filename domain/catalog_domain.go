package domain

import "fmt"

var (
	MessageSuccessGetTags        = "success get tags"
	MessageSuccessGetTag         = "success get tag"
	MessageSuccessGetIngredients = "success get ingredients"
	MessageSuccessGetIngredient  = "success get ingredient"

	MessageFailedGetTags        = "failed to get tags"
	MessageFailedGetTag         = "failed to get tag"
	MessageFailedGetIngredients = "failed to get ingredients"
	MessageFailedGetIngredient  = "failed to get ingredient"

	ErrTagNotFound        = fmt.Errorf("tag %w", ErrNotFound)
	ErrIngredientNotFound = fmt.Errorf("ingredient %w", ErrNotFound)
	ErrInvalidTag         = fmt.Errorf("invalid tag: %w", ErrValidation)
	ErrInvalidIngredient  = fmt.Errorf("invalid ingredient: %w", ErrValidation)
)

type (
	TagResponse struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Slug  string `json:"slug"`
	}

	TagRequest struct {
		Name  string `yaml:"name" json:"name" validate:"required,max=200"`
		Color string `yaml:"color" json:"color" validate:"required,hexcolor6"`
		Slug  string `yaml:"slug" json:"slug" validate:"required,max=200"`
	}

	IngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	IngredientRequest struct {
		Name            string `json:"name" validate:"required,max=200"`
		MeasurementUnit string `json:"measurement_unit" validate:"required,max=200"`
	}

	// LoadReport summarises a bulk catalog load.
	LoadReport struct {
		Read    int `json:"read"`
		Created int `json:"created"`
		Skipped int `json:"skipped"`
	}
)

package domain

import "fmt"

var (
	MessageSuccessRegister    = "user registered successfully"
	MessageSuccessLogin       = "login successfully"
	MessageSuccessGetUser     = "success get user"
	MessageSuccessGetUsers    = "success get users"
	MessageSuccessSubscribe   = "subscribed successfully"
	MessageSuccessUnsubscribe = "unsubscribed successfully"
	MessageSuccessGetFollows  = "success get subscriptions"
	MessageSuccessSetPassword = "password changed successfully"

	MessageFailedRegister    = "failed to register user"
	MessageFailedLogin       = "failed to login"
	MessageFailedGetUser     = "failed to get user"
	MessageFailedGetUsers    = "failed to get users"
	MessageFailedSubscribe   = "failed to subscribe"
	MessageFailedUnsubscribe = "failed to unsubscribe"
	MessageFailedGetFollows  = "failed to get subscriptions"
	MessageFailedSetPassword = "failed to change password"

	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrEmailTaken         = fmt.Errorf("email %w", ErrAlreadyExists)
	ErrUsernameTaken      = fmt.Errorf("username %w", ErrAlreadyExists)
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrValidation)
	ErrAlreadySubscribed  = fmt.Errorf("subscription %w", ErrAlreadyExists)
	ErrNotSubscribed      = fmt.Errorf("subscription %w", ErrNotFound)
)

type (
	RegisterRequest struct {
		Email     string `json:"email" validate:"required,email,max=254"`
		Username  string `json:"username" validate:"required,max=150"`
		FirstName string `json:"first_name" validate:"max=150"`
		LastName  string `json:"last_name" validate:"max=150"`
		Password  string `json:"password" validate:"required,min=8,max=150"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	SetPasswordRequest struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8,max=150"`
	}

	LoginResponse struct {
		AuthToken string `json:"auth_token"`
	}

	UserResponse struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Username     string `json:"username"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		IsSubscribed bool   `json:"is_subscribed"`
	}

	// SubscriptionResponse is a followed author with a preview of their recipes.
	SubscriptionResponse struct {
		UserResponse
		Recipes      []RecipeShort `json:"recipes"`
		RecipesCount int64         `json:"recipes_count"`
	}
)

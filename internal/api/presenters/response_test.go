package presenters

import (
	"errors"
	"fmt"
	"testing"

	"Foodgram/domain"

	"github.com/gofiber/fiber/v2"
)

func TestStatusFromError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, fiber.StatusOK},
		{domain.ErrInvalidAmount, fiber.StatusBadRequest},
		{domain.ErrParseUUID, fiber.StatusBadRequest},
		{domain.ErrTokenExpired, fiber.StatusUnauthorized},
		{domain.ErrAuthenticationRequired, fiber.StatusUnauthorized},
		{domain.ErrUnauthorizedRecipeAccess, fiber.StatusForbidden},
		{domain.ErrRecipeNotFound, fiber.StatusNotFound},
		{fmt.Errorf("%w: %q", domain.ErrTagNotFound, "x"), fiber.StatusNotFound},
		{domain.ErrAlreadyFavorited, fiber.StatusConflict},
		{domain.ErrSelfFollow, fiber.StatusUnprocessableEntity},
		{errors.New("connection reset"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFromError(tc.err); got != tc.want {
			t.Errorf("StatusFromError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

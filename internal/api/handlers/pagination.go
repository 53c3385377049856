package handlers

import (
	"strconv"

	"Foodgram/pkg/recipe"

	"github.com/gofiber/fiber/v2"
)

// pageParams reads page and limit the same way the services clamp them.
func pageParams(c *fiber.Ctx) (int, int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(recipe.DefaultPageLimit)))
	if err != nil || limit < 1 {
		limit = recipe.DefaultPageLimit
	}
	if limit > recipe.MaxPageLimit {
		limit = recipe.MaxPageLimit
	}
	return page, limit
}

package shoppinglist

import (
	"context"
	"errors"
	"sort"

	"Foodgram/domain"
	"Foodgram/internal/logging"
	"Foodgram/internal/metrics"
	"Foodgram/pkg/social"
	"Foodgram/pkg/user"

	"gorm.io/gorm"
)

type (
	ShoppingListService interface {
		BuildShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error)
		ExportShoppingList(ctx context.Context, userID string) (string, string, error)
	}

	shoppingListService struct {
		shoppingListRepository ShoppingListRepository
		socialService          social.SocialService
		userRepository         user.UserRepository
	}
)

func NewShoppingListService(shoppingListRepository ShoppingListRepository, socialService social.SocialService, userRepository user.UserRepository) ShoppingListService {
	return &shoppingListService{
		shoppingListRepository: shoppingListRepository,
		socialService:          socialService,
		userRepository:         userRepository,
	}
}

// BuildShoppingList sums every ingredient across the recipes in the user's
// cart. Rows are ordered by name, then unit, then ingredient id.
func (s *shoppingListService) BuildShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error) {
	if userID == "" {
		return nil, domain.ErrAuthenticationRequired
	}

	recipeIDs, err := s.socialService.CartRecipeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]domain.ShoppingListItem, 0)
	if len(recipeIDs) == 0 {
		return items, nil
	}

	rows, err := s.shoppingListRepository.SumIngredients(ctx, recipeIDs)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		items = append(items, domain.ShoppingListItem{
			IngredientID:    row.IngredientID.String(),
			Name:            row.Name,
			TotalAmount:     row.TotalAmount,
			MeasurementUnit: row.MeasurementUnit,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.MeasurementUnit != b.MeasurementUnit {
			return a.MeasurementUnit < b.MeasurementUnit
		}
		return a.IngredientID < b.IngredientID
	})

	metrics.ShoppingListBuilds.Inc()
	logging.Debug().Str("user_id", userID).Int("recipes", len(recipeIDs)).Int("items", len(items)).Msg("shopping list built")
	return items, nil
}

// ExportShoppingList returns the download filename and the plain text body.
func (s *shoppingListService) ExportShoppingList(ctx context.Context, userID string) (string, string, error) {
	if userID == "" {
		return "", "", domain.ErrAuthenticationRequired
	}
	uid, ok := domain.CanonicalID(userID)
	if !ok {
		return "", "", domain.ErrUserNotFound
	}
	owner, err := s.userRepository.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", domain.ErrUserNotFound
		}
		return "", "", err
	}

	items, err := s.BuildShoppingList(ctx, uid)
	if err != nil {
		return "", "", err
	}
	return domain.ShoppingListFilename(owner.Username), domain.FormatShoppingList(items), nil
}

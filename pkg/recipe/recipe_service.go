package recipe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"Foodgram/domain"
	"Foodgram/entities"
	"Foodgram/internal/database"
	"Foodgram/internal/logging"
	"Foodgram/internal/metrics"
	"Foodgram/internal/utils/storage"
	"Foodgram/pkg/catalog"
	"Foodgram/pkg/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const imageFolder = "recipes"

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, actor domain.Actor, req domain.RecipeRequest) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, actor domain.Actor, id string, req domain.RecipeRequest) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, actor domain.Actor, id string) error
		GetRecipe(ctx context.Context, viewer domain.Actor, id string) (domain.RecipeResponse, error)
		ListRecipes(ctx context.Context, viewer domain.Actor, filter domain.RecipeFilter) ([]domain.RecipeResponse, int64, error)
	}

	recipeService struct {
		recipeRepository  RecipeRepository
		catalogRepository catalog.CatalogRepository
		s3                storage.AwsS3
	}

	// composition is a validated request resolved against the catalog.
	composition struct {
		tagIDs []uuid.UUID
		lines  []*entities.RecipeIngredient
	}
)

// NewRecipeService builds the recipe composer. A nil s3 keeps images as the
// references the caller submitted.
func NewRecipeService(recipeRepository RecipeRepository, catalogRepository catalog.CatalogRepository, s3 storage.AwsS3) RecipeService {
	return &recipeService{
		recipeRepository:  recipeRepository,
		catalogRepository: catalogRepository,
		s3:                s3,
	}
}

func (s *recipeService) CreateRecipe(ctx context.Context, actor domain.Actor, req domain.RecipeRequest) (domain.RecipeResponse, error) {
	if actor.IsAnonymous() {
		return domain.RecipeResponse{}, domain.ErrAuthenticationRequired
	}
	authorID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	comp, err := s.resolveComposition(ctx, req)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	image, uploadedKey, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Name:        req.Name,
		Image:       image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	if err := s.recipeRepository.CreateRecipe(ctx, recipe, comp.tagIDs, comp.lines); err != nil {
		s.discardImage(ctx, uploadedKey)
		return domain.RecipeResponse{}, translateWriteError(err)
	}

	metrics.RecordRecipeMutation("create")
	logging.Info().Str("recipe_id", recipe.ID.String()).Str("author_id", actor.UserID).Msg("recipe created")
	return s.GetRecipe(ctx, actor, recipe.ID.String())
}

func (s *recipeService) UpdateRecipe(ctx context.Context, actor domain.Actor, id string, req domain.RecipeRequest) (domain.RecipeResponse, error) {
	recipe, err := s.findRecipe(ctx, id)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if !actor.CanModify(recipe.AuthorID.String()) {
		return domain.RecipeResponse{}, domain.ErrUnauthorizedRecipeAccess
	}

	comp, err := s.resolveComposition(ctx, req)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	previousImage := recipe.Image
	uploadedKey := ""
	if req.Image != "" {
		recipe.Image, uploadedKey, err = s.storeImage(ctx, req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
	}
	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.CookingTime = req.CookingTime

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, comp.tagIDs, comp.lines); err != nil {
		s.discardImage(ctx, uploadedKey)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, translateWriteError(err)
	}
	if uploadedKey != "" && previousImage != recipe.Image {
		s.discardImage(ctx, s.objectKey(previousImage))
	}

	metrics.RecordRecipeMutation("update")
	logging.Info().Str("recipe_id", id).Str("actor_id", actor.UserID).Msg("recipe updated")
	return s.GetRecipe(ctx, actor, recipe.ID.String())
}

func (s *recipeService) DeleteRecipe(ctx context.Context, actor domain.Actor, id string) error {
	recipe, err := s.findRecipe(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(recipe.AuthorID.String()) {
		return domain.ErrUnauthorizedRecipeAccess
	}

	if err := s.recipeRepository.DeleteRecipe(ctx, recipe.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	s.discardImage(ctx, s.objectKey(recipe.Image))

	metrics.RecordRecipeMutation("delete")
	logging.Info().Str("recipe_id", id).Str("actor_id", actor.UserID).Msg("recipe deleted")
	return nil
}

func (s *recipeService) GetRecipe(ctx context.Context, viewer domain.Actor, id string) (domain.RecipeResponse, error) {
	rid, ok := domain.CanonicalID(id)
	if !ok {
		return domain.RecipeResponse{}, domain.ErrRecipeNotFound
	}
	recipe, err := s.recipeRepository.GetRecipeDetail(ctx, rid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	res, err := s.toResponses(ctx, viewer, []*entities.Recipe{recipe})
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return res[0], nil
}

func (s *recipeService) ListRecipes(ctx context.Context, viewer domain.Actor, filter domain.RecipeFilter) ([]domain.RecipeResponse, int64, error) {
	q := NewQuery(viewer, filter)
	if q.Empty() {
		return []domain.RecipeResponse{}, 0, nil
	}

	recipes, count, err := s.recipeRepository.GetRecipes(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	res, err := s.toResponses(ctx, viewer, recipes)
	if err != nil {
		return nil, 0, err
	}
	return res, count, nil
}

func (s *recipeService) findRecipe(ctx context.Context, id string) (*entities.Recipe, error) {
	rid, ok := domain.CanonicalID(id)
	if !ok {
		return nil, domain.ErrRecipeNotFound
	}
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, rid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

// resolveComposition checks the request against the composition rules and
// resolves tags and ingredients through the catalog.
func (s *recipeService) resolveComposition(ctx context.Context, req domain.RecipeRequest) (composition, error) {
	if req.CookingTime < 1 {
		return composition{}, domain.ErrInvalidCookingTime
	}
	if len(req.Ingredients) == 0 {
		return composition{}, domain.ErrEmptyComposition
	}

	seen := make(map[uuid.UUID]struct{}, len(req.Ingredients))
	ingredientIDs := make([]string, 0, len(req.Ingredients))
	lines := make([]*entities.RecipeIngredient, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		if item.Amount < 1 {
			return composition{}, domain.ErrInvalidAmount
		}
		ingredientID, err := uuid.Parse(item.ID)
		if err != nil {
			return composition{}, fmt.Errorf("%w: %q", domain.ErrIngredientNotFound, item.ID)
		}
		if _, dup := seen[ingredientID]; dup {
			return composition{}, domain.ErrDuplicateIngredient
		}
		seen[ingredientID] = struct{}{}
		ingredientIDs = append(ingredientIDs, ingredientID.String())
		lines = append(lines, &entities.RecipeIngredient{IngredientID: ingredientID, Amount: item.Amount})
	}

	tagSet := make(map[uuid.UUID]struct{}, len(req.Tags))
	tagIDs := make([]uuid.UUID, 0, len(req.Tags))
	tagKeys := make([]string, 0, len(req.Tags))
	for _, raw := range req.Tags {
		tagID, err := uuid.Parse(raw)
		if err != nil {
			return composition{}, fmt.Errorf("%w: %q", domain.ErrTagNotFound, raw)
		}
		if _, dup := tagSet[tagID]; dup {
			continue
		}
		tagSet[tagID] = struct{}{}
		tagIDs = append(tagIDs, tagID)
		tagKeys = append(tagKeys, tagID.String())
	}

	tags, err := s.catalogRepository.GetTagsByIDs(ctx, tagKeys)
	if err != nil {
		return composition{}, err
	}
	if len(tags) != len(tagKeys) {
		return composition{}, domain.ErrTagNotFound
	}

	ingredients, err := s.catalogRepository.GetIngredientsByIDs(ctx, ingredientIDs)
	if err != nil {
		return composition{}, err
	}
	if len(ingredients) != len(ingredientIDs) {
		return composition{}, domain.ErrIngredientNotFound
	}

	return composition{tagIDs: tagIDs, lines: lines}, nil
}

// storeImage uploads data URI payloads and returns the public link and the
// new object key. Other values are kept as opaque references.
func (s *recipeService) storeImage(ctx context.Context, image string) (string, string, error) {
	if s.s3 == nil || !strings.HasPrefix(image, "data:") {
		return image, "", nil
	}
	key, err := s.s3.UploadDataURI(ctx, imageFolder, image, storage.AllowImage...)
	if err != nil {
		if errors.Is(err, storage.ErrNotDataURI) || errors.Is(err, storage.ErrContentNotAllow) {
			return "", "", fmt.Errorf("%w: %v", domain.ErrInvalidImageFormat, err)
		}
		return "", "", err
	}
	return s.s3.GetPublicLinkKey(key), key, nil
}

func (s *recipeService) objectKey(link string) string {
	if s.s3 == nil || link == "" {
		return ""
	}
	return s.s3.GetObjectKeyFromLink(link)
}

func (s *recipeService) discardImage(ctx context.Context, key string) {
	if s.s3 == nil || key == "" {
		return
	}
	if err := s.s3.DeleteFile(ctx, key); err != nil {
		logging.Warn().Err(err).Str("object_key", key).Msg("failed to delete recipe image")
	}
}

func (s *recipeService) toResponses(ctx context.Context, viewer domain.Actor, recipes []*entities.Recipe) ([]domain.RecipeResponse, error) {
	recipeIDs := make([]string, 0, len(recipes))
	authorIDs := make([]string, 0, len(recipes))
	for _, recipe := range recipes {
		recipeIDs = append(recipeIDs, recipe.ID.String())
		authorIDs = append(authorIDs, recipe.AuthorID.String())
	}

	viewerID, _ := domain.CanonicalID(viewer.UserID)
	flags, err := s.recipeRepository.GetViewerFlags(ctx, viewerID, recipeIDs, authorIDs)
	if err != nil {
		return nil, err
	}

	res := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		res = append(res, ToRecipeResponse(recipe, flags))
	}
	return res, nil
}

func ToRecipeResponse(recipe *entities.Recipe, flags ViewerFlags) domain.RecipeResponse {
	id := recipe.ID.String()
	res := domain.RecipeResponse{
		ID:               id,
		Tags:             catalog.ToTagResponses(recipe.Tags),
		Ingredients:      make([]domain.RecipeIngredientResponse, 0, len(recipe.Ingredients)),
		IsFavorited:      flags.Favorited[id],
		IsInShoppingCart: flags.InCart[id],
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		CreatedAt:        recipe.CreatedAt,
	}
	if recipe.Author != nil {
		res.Author = user.ToUserResponse(recipe.Author, flags.Following[recipe.AuthorID.String()])
	}

	for _, line := range recipe.Ingredients {
		if line.Ingredient == nil {
			continue
		}
		res.Ingredients = append(res.Ingredients, domain.RecipeIngredientResponse{
			ID:              line.IngredientID.String(),
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}
	sort.Slice(res.Ingredients, func(i, j int) bool {
		if res.Ingredients[i].Name != res.Ingredients[j].Name {
			return res.Ingredients[i].Name < res.Ingredients[j].Name
		}
		return res.Ingredients[i].ID < res.Ingredients[j].ID
	})
	return res
}

func ToRecipeShort(recipe *entities.Recipe) domain.RecipeShort {
	return domain.RecipeShort{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

// translateWriteError maps constraint failures that slipped past validation,
// such as a tag removed concurrently or a deleted author, onto domain errors.
func translateWriteError(err error) error {
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("referenced record %w", domain.ErrNotFound)
	}
	return err
}

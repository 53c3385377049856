package catalog

import (
	"context"
	"errors"
	"fmt"

	"Foodgram/domain"
	"Foodgram/entities"
	"Foodgram/internal/logging"
	"Foodgram/internal/metrics"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type (
	CatalogService interface {
		GetIngredient(ctx context.Context, id string) (domain.IngredientResponse, error)
		SearchIngredients(ctx context.Context, prefix string) ([]domain.IngredientResponse, error)
		UpsertIngredients(ctx context.Context, req []domain.IngredientRequest) (int, error)

		ListTags(ctx context.Context) ([]domain.TagResponse, error)
		GetTag(ctx context.Context, id string) (domain.TagResponse, error)
		UpsertTags(ctx context.Context, req []domain.TagRequest) (int, error)
	}

	catalogService struct {
		catalogRepository CatalogRepository
		validator         *validator.Validate
	}
)

func NewCatalogService(catalogRepository CatalogRepository, validator *validator.Validate) CatalogService {
	return &catalogService{
		catalogRepository: catalogRepository,
		validator:         validator,
	}
}

func (s *catalogService) GetIngredient(ctx context.Context, id string) (domain.IngredientResponse, error) {
	cid, ok := domain.CanonicalID(id)
	if !ok {
		return domain.IngredientResponse{}, domain.ErrIngredientNotFound
	}
	ingredient, err := s.catalogRepository.GetIngredientByID(ctx, cid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.IngredientResponse{}, domain.ErrIngredientNotFound
		}
		return domain.IngredientResponse{}, err
	}
	return ToIngredientResponse(ingredient), nil
}

func (s *catalogService) SearchIngredients(ctx context.Context, prefix string) ([]domain.IngredientResponse, error) {
	ingredients, err := s.catalogRepository.SearchIngredients(ctx, prefix)
	if err != nil {
		return nil, err
	}
	res := make([]domain.IngredientResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		res = append(res, ToIngredientResponse(ingredient))
	}
	return res, nil
}

func (s *catalogService) UpsertIngredients(ctx context.Context, req []domain.IngredientRequest) (int, error) {
	ingredients := make([]*entities.Ingredient, 0, len(req))
	seen := make(map[domain.IngredientRequest]struct{}, len(req))
	for _, item := range req {
		if err := s.validator.Struct(item); err != nil {
			return 0, fmt.Errorf("%w: %q: %v", domain.ErrInvalidIngredient, item.Name, err)
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		ingredients = append(ingredients, &entities.Ingredient{
			Name:            item.Name,
			MeasurementUnit: item.MeasurementUnit,
		})
	}

	created, err := s.catalogRepository.UpsertIngredients(ctx, ingredients)
	if err != nil {
		return 0, err
	}
	metrics.RecordCatalogLoad("ingredient", int(created))
	logging.Info().Int("submitted", len(req)).Int64("created", created).Msg("ingredients upserted")
	return int(created), nil
}

func (s *catalogService) ListTags(ctx context.Context) ([]domain.TagResponse, error) {
	tags, err := s.catalogRepository.GetTags(ctx)
	if err != nil {
		return nil, err
	}
	return ToTagResponses(tags), nil
}

func (s *catalogService) GetTag(ctx context.Context, id string) (domain.TagResponse, error) {
	cid, ok := domain.CanonicalID(id)
	if !ok {
		return domain.TagResponse{}, domain.ErrTagNotFound
	}
	tag, err := s.catalogRepository.GetTagByID(ctx, cid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TagResponse{}, domain.ErrTagNotFound
		}
		return domain.TagResponse{}, err
	}
	return ToTagResponse(tag), nil
}

func (s *catalogService) UpsertTags(ctx context.Context, req []domain.TagRequest) (int, error) {
	tags := make([]*entities.Tag, 0, len(req))
	seen := make(map[string]struct{}, len(req))
	for _, item := range req {
		if err := s.validator.Struct(item); err != nil {
			return 0, fmt.Errorf("%w: %q: %v", domain.ErrInvalidTag, item.Slug, err)
		}
		if _, ok := seen[item.Slug]; ok {
			continue
		}
		seen[item.Slug] = struct{}{}
		tags = append(tags, &entities.Tag{
			Name:  item.Name,
			Color: item.Color,
			Slug:  item.Slug,
		})
	}

	created, err := s.catalogRepository.UpsertTags(ctx, tags)
	if err != nil {
		return 0, err
	}
	metrics.RecordCatalogLoad("tag", int(created))
	logging.Info().Int("submitted", len(req)).Int64("created", created).Msg("tags upserted")
	return int(created), nil
}

func ToIngredientResponse(ingredient *entities.Ingredient) domain.IngredientResponse {
	return domain.IngredientResponse{
		ID:              ingredient.ID.String(),
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}

func ToTagResponse(tag *entities.Tag) domain.TagResponse {
	return domain.TagResponse{
		ID:    tag.ID.String(),
		Name:  tag.Name,
		Color: tag.Color,
		Slug:  tag.Slug,
	}
}

func ToTagResponses(tags []*entities.Tag) []domain.TagResponse {
	res := make([]domain.TagResponse, 0, len(tags))
	for _, tag := range tags {
		res = append(res, ToTagResponse(tag))
	}
	return res
}

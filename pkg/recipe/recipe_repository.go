package recipe

import (
	"context"

	"Foodgram/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uuid.UUID, lines []*entities.RecipeIngredient) error
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uuid.UUID, lines []*entities.RecipeIngredient) error
		DeleteRecipe(ctx context.Context, id uuid.UUID) error
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		GetRecipeDetail(ctx context.Context, id string) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, q Query) ([]*entities.Recipe, int64, error)
		GetRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error)
		CountRecipesByAuthors(ctx context.Context, authorIDs []string) (map[string]int64, error)
		GetViewerFlags(ctx context.Context, viewerID string, recipeIDs, authorIDs []string) (ViewerFlags, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}

	// ViewerFlags holds, for one viewer, which recipes are favorited or in the
	// cart and which authors are followed. Keys are string ids.
	ViewerFlags struct {
		Favorited map[string]bool
		InCart    map[string]bool
		Following map[string]bool
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uuid.UUID, lines []*entities.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		return replaceComposition(tx, recipe.ID, tagIDs, lines)
	})
}

// UpdateRecipe saves the scalar fields and swaps the whole tag set and
// ingredient composition in one transaction.
func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uuid.UUID, lines []*entities.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entities.Recipe{}).
			Where("id = ?", recipe.ID).
			Updates(map[string]interface{}{
				"name":         recipe.Name,
				"image":        recipe.Image,
				"text":         recipe.Text,
				"cooking_time": recipe.CookingTime,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return replaceComposition(tx, recipe.ID, tagIDs, lines)
	})
}

func replaceComposition(tx *gorm.DB, recipeID uuid.UUID, tagIDs []uuid.UUID, lines []*entities.RecipeIngredient) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&entities.RecipeTag{}).Error; err != nil {
		return err
	}
	if len(tagIDs) > 0 {
		links := make([]entities.RecipeTag, 0, len(tagIDs))
		for _, tagID := range tagIDs {
			links = append(links, entities.RecipeTag{RecipeID: recipeID, TagID: tagID})
		}
		if err := tx.Create(&links).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("recipe_id = ?", recipeID).Delete(&entities.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(lines) > 0 {
		for _, line := range lines {
			line.ID = uuid.Nil
			line.RecipeID = recipeID
		}
		if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteRecipe removes the recipe with its composition and every favorite and
// cart entry pointing at it.
func (r *recipeRepository) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dependents := []interface{}{
			&entities.Favorite{},
			&entities.ShoppingCartEntry{},
			&entities.RecipeTag{},
			&entities.RecipeIngredient{},
		}
		for _, model := range dependents {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id = ?", id).Delete(&entities.Recipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipeDetail(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Scopes(preloadDetail).
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipes(ctx context.Context, q Query) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (q.Page - 1) * q.Limit

	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Scopes(r.filter(q)).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Scopes(r.filter(q), preloadDetail).
		Order("recipes.created_at DESC").
		Order("recipes.id DESC").
		Offset(offset).
		Limit(q.Limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

// GetRecipesByAuthor returns the author's newest recipes; limit <= 0 means all.
func (r *recipeRepository) GetRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	q := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountRecipesByAuthors(ctx context.Context, authorIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uuid.UUID
		Total    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AuthorID.String()] = row.Total
	}
	return counts, nil
}

func (r *recipeRepository) GetViewerFlags(ctx context.Context, viewerID string, recipeIDs, authorIDs []string) (ViewerFlags, error) {
	flags := ViewerFlags{
		Favorited: map[string]bool{},
		InCart:    map[string]bool{},
		Following: map[string]bool{},
	}
	if viewerID == "" {
		return flags, nil
	}

	if len(recipeIDs) > 0 {
		var favorited []uuid.UUID
		if err := r.db.WithContext(ctx).
			Model(&entities.Favorite{}).
			Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
			Pluck("recipe_id", &favorited).Error; err != nil {
			return flags, err
		}
		for _, id := range favorited {
			flags.Favorited[id.String()] = true
		}

		var inCart []uuid.UUID
		if err := r.db.WithContext(ctx).
			Model(&entities.ShoppingCartEntry{}).
			Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
			Pluck("recipe_id", &inCart).Error; err != nil {
			return flags, err
		}
		for _, id := range inCart {
			flags.InCart[id.String()] = true
		}
	}

	if len(authorIDs) > 0 {
		var following []uuid.UUID
		if err := r.db.WithContext(ctx).
			Model(&entities.Follow{}).
			Where("user_id = ? AND author_id IN ?", viewerID, authorIDs).
			Pluck("author_id", &following).Error; err != nil {
			return flags, err
		}
		for _, id := range following {
			flags.Following[id.String()] = true
		}
	}

	return flags, nil
}

func preloadDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name ASC")
		}).
		Preload("Ingredients.Ingredient")
}

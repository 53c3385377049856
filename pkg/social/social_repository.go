package social

import (
	"context"

	"Foodgram/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	SocialRepository interface {
		CreateFavorite(ctx context.Context, favorite *entities.Favorite) error
		DeleteFavorite(ctx context.Context, userID, recipeID string) (int64, error)
		IsFavorited(ctx context.Context, userID, recipeID string) (bool, error)

		CreateCartEntry(ctx context.Context, entry *entities.ShoppingCartEntry) error
		DeleteCartEntry(ctx context.Context, userID, recipeID string) (int64, error)
		IsInCart(ctx context.Context, userID, recipeID string) (bool, error)
		GetCartRecipeIDs(ctx context.Context, userID string) ([]uuid.UUID, error)

		CreateFollow(ctx context.Context, follow *entities.Follow) error
		DeleteFollow(ctx context.Context, userID, authorID string) (int64, error)
		GetFollowedAuthorIDs(ctx context.Context, userID string, authorIDs []string) ([]uuid.UUID, error)
		GetFollowedAuthors(ctx context.Context, userID string, page, limit int) ([]*entities.User, int64, error)
	}

	socialRepository struct {
		db *gorm.DB
	}
)

func NewSocialRepository(db *gorm.DB) SocialRepository {
	return &socialRepository{db: db}
}

func (r *socialRepository) CreateFavorite(ctx context.Context, favorite *entities.Favorite) error {
	return r.db.WithContext(ctx).Omit("User", "Recipe").Create(favorite).Error
}

func (r *socialRepository) DeleteFavorite(ctx context.Context, userID, recipeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.Favorite{})
	return res.RowsAffected, res.Error
}

func (r *socialRepository) IsFavorited(ctx context.Context, userID, recipeID string) (bool, error) {
	return r.exists(ctx, &entities.Favorite{}, "user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (r *socialRepository) CreateCartEntry(ctx context.Context, entry *entities.ShoppingCartEntry) error {
	return r.db.WithContext(ctx).Omit("User", "Recipe").Create(entry).Error
}

func (r *socialRepository) DeleteCartEntry(ctx context.Context, userID, recipeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.ShoppingCartEntry{})
	return res.RowsAffected, res.Error
}

func (r *socialRepository) IsInCart(ctx context.Context, userID, recipeID string) (bool, error) {
	return r.exists(ctx, &entities.ShoppingCartEntry{}, "user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (r *socialRepository) GetCartRecipeIDs(ctx context.Context, userID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entities.ShoppingCartEntry{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *socialRepository) CreateFollow(ctx context.Context, follow *entities.Follow) error {
	return r.db.WithContext(ctx).Omit("User", "Author").Create(follow).Error
}

func (r *socialRepository) DeleteFollow(ctx context.Context, userID, authorID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&entities.Follow{})
	return res.RowsAffected, res.Error
}

// GetFollowedAuthorIDs returns the subset of authorIDs that userID follows.
func (r *socialRepository) GetFollowedAuthorIDs(ctx context.Context, userID string, authorIDs []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(authorIDs) == 0 {
		return ids, nil
	}
	if err := r.db.WithContext(ctx).
		Model(&entities.Follow{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// GetFollowedAuthors pages through the authors userID follows, most recent follow first.
func (r *socialRepository) GetFollowedAuthors(ctx context.Context, userID string, page, limit int) ([]*entities.User, int64, error) {
	var users []*entities.User
	var count int64
	offset := (page - 1) * limit

	followed := func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN follows ON follows.author_id = users.id").
			Where("follows.user_id = ?", userID)
	}

	if err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Scopes(followed).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Scopes(followed).
		Order("follows.created_at DESC").
		Order("users.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, count, nil
}

func (r *socialRepository) exists(ctx context.Context, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where(query, args...).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

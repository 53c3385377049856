package recipe

import (
	"Foodgram/domain"
	"Foodgram/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPageLimit = 6
	MaxPageLimit     = 100
)

// Query is a resolved recipe listing request. Empty fields do not filter.
// Tags match any of the given slugs; all other fields are combined with AND.
type Query struct {
	TagSlugs    []string
	AuthorID    string
	FavoritedBy string
	InCartOf    string
	Page        int
	Limit       int
}

// NewQuery resolves a caller filter against the viewer. Favorite and cart
// filters only apply to an authenticated viewer.
func NewQuery(viewer domain.Actor, filter domain.RecipeFilter) Query {
	q := Query{
		AuthorID: filter.AuthorID,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}
	if authorID, ok := domain.CanonicalID(filter.AuthorID); ok {
		q.AuthorID = authorID
	}
	for _, slug := range filter.Tags {
		if slug != "" {
			q.TagSlugs = append(q.TagSlugs, slug)
		}
	}
	if viewerID, ok := domain.CanonicalID(viewer.UserID); ok {
		if filter.IsFavorited {
			q.FavoritedBy = viewerID
		}
		if filter.IsInCart {
			q.InCartOf = viewerID
		}
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	return q
}

// Empty reports whether the query can be answered without touching the store.
func (q Query) Empty() bool {
	if q.AuthorID == "" {
		return false
	}
	_, err := uuid.Parse(q.AuthorID)
	return err != nil
}

func (r *recipeRepository) filter(q Query) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(q.TagSlugs) > 0 {
			tagged := r.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", q.TagSlugs)
			db = db.Where("recipes.id IN (?)", tagged)
		}
		if q.AuthorID != "" {
			db = db.Where("recipes.author_id = ?", q.AuthorID)
		}
		if q.FavoritedBy != "" {
			favorited := r.db.Model(&entities.Favorite{}).
				Select("recipe_id").
				Where("user_id = ?", q.FavoritedBy)
			db = db.Where("recipes.id IN (?)", favorited)
		}
		if q.InCartOf != "" {
			inCart := r.db.Model(&entities.ShoppingCartEntry{}).
				Select("recipe_id").
				Where("user_id = ?", q.InCartOf)
			db = db.Where("recipes.id IN (?)", inCart)
		}
		return db
	}
}

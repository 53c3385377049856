package social

import (
	"context"
	"errors"
	"fmt"

	"Foodgram/domain"
	"Foodgram/entities"
	"Foodgram/internal/database"
	"Foodgram/internal/logging"
	"Foodgram/internal/metrics"
	"Foodgram/pkg/recipe"
	"Foodgram/pkg/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	SocialService interface {
		AddFavorite(ctx context.Context, userID, recipeID string) (domain.RecipeShort, error)
		RemoveFavorite(ctx context.Context, userID, recipeID string) error
		IsFavorited(ctx context.Context, userID, recipeID string) (bool, error)

		AddToCart(ctx context.Context, userID, recipeID string) (domain.RecipeShort, error)
		RemoveFromCart(ctx context.Context, userID, recipeID string) error
		IsInCart(ctx context.Context, userID, recipeID string) (bool, error)
		CartRecipeIDs(ctx context.Context, userID string) ([]string, error)

		Follow(ctx context.Context, userID, authorID string, recipesLimit int) (domain.SubscriptionResponse, error)
		Unfollow(ctx context.Context, userID, authorID string) error
		IsFollowing(ctx context.Context, userID, authorID string) (bool, error)
		FollowingSet(ctx context.Context, userID string, authorIDs []string) (map[string]bool, error)
		ListFollowedAuthors(ctx context.Context, userID string, recipesLimit, page, limit int) ([]domain.SubscriptionResponse, int64, error)
	}

	socialService struct {
		socialRepository SocialRepository
		recipeRepository recipe.RecipeRepository
		userRepository   user.UserRepository
	}
)

func NewSocialService(socialRepository SocialRepository, recipeRepository recipe.RecipeRepository, userRepository user.UserRepository) SocialService {
	return &socialService{
		socialRepository: socialRepository,
		recipeRepository: recipeRepository,
		userRepository:   userRepository,
	}
}

func (s *socialService) AddFavorite(ctx context.Context, userID, recipeID string) (domain.RecipeShort, error) {
	uid, target, err := s.resolvePair(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeShort{}, err
	}

	favorite := &entities.Favorite{UserID: uid, RecipeID: target.ID}
	if err := s.socialRepository.CreateFavorite(ctx, favorite); err != nil {
		return domain.RecipeShort{}, translateLinkError(err, domain.ErrAlreadyFavorited)
	}

	metrics.RecordSocialRelation("favorite", "add")
	logging.Debug().Str("user_id", userID).Str("recipe_id", recipeID).Msg("favorite added")
	return recipe.ToRecipeShort(target), nil
}

func (s *socialService) RemoveFavorite(ctx context.Context, userID, recipeID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	uid, rid, ok := canonicalPair(userID, recipeID)
	if !ok {
		return domain.ErrNotFavorited
	}

	removed, err := s.socialRepository.DeleteFavorite(ctx, uid, rid)
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrNotFavorited
	}

	metrics.RecordSocialRelation("favorite", "remove")
	return nil
}

func (s *socialService) IsFavorited(ctx context.Context, userID, recipeID string) (bool, error) {
	uid, rid, ok := canonicalPair(userID, recipeID)
	if !ok {
		return false, nil
	}
	return s.socialRepository.IsFavorited(ctx, uid, rid)
}

func (s *socialService) AddToCart(ctx context.Context, userID, recipeID string) (domain.RecipeShort, error) {
	uid, target, err := s.resolvePair(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeShort{}, err
	}

	entry := &entities.ShoppingCartEntry{UserID: uid, RecipeID: target.ID}
	if err := s.socialRepository.CreateCartEntry(ctx, entry); err != nil {
		return domain.RecipeShort{}, translateLinkError(err, domain.ErrAlreadyInCart)
	}

	metrics.RecordSocialRelation("cart", "add")
	logging.Debug().Str("user_id", userID).Str("recipe_id", recipeID).Msg("cart entry added")
	return recipe.ToRecipeShort(target), nil
}

func (s *socialService) RemoveFromCart(ctx context.Context, userID, recipeID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	uid, rid, ok := canonicalPair(userID, recipeID)
	if !ok {
		return domain.ErrNotInCart
	}

	removed, err := s.socialRepository.DeleteCartEntry(ctx, uid, rid)
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrNotInCart
	}

	metrics.RecordSocialRelation("cart", "remove")
	return nil
}

func (s *socialService) IsInCart(ctx context.Context, userID, recipeID string) (bool, error) {
	uid, rid, ok := canonicalPair(userID, recipeID)
	if !ok {
		return false, nil
	}
	return s.socialRepository.IsInCart(ctx, uid, rid)
}

func (s *socialService) CartRecipeIDs(ctx context.Context, userID string) ([]string, error) {
	uid, ok := domain.CanonicalID(userID)
	if !ok {
		return []string{}, nil
	}
	ids, err := s.socialRepository.GetCartRecipeIDs(ctx, uid)
	if err != nil {
		return nil, err
	}
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		res = append(res, id.String())
	}
	return res, nil
}

// Follow subscribes userID to authorID. Self-follow is rejected before any lookup.
func (s *socialService) Follow(ctx context.Context, userID, authorID string, recipesLimit int) (domain.SubscriptionResponse, error) {
	if err := requireUser(userID); err != nil {
		return domain.SubscriptionResponse{}, err
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return domain.SubscriptionResponse{}, domain.ErrParseUUID
	}
	aid, err := uuid.Parse(authorID)
	if err != nil {
		return domain.SubscriptionResponse{}, domain.ErrUserNotFound
	}
	if uid == aid {
		return domain.SubscriptionResponse{}, domain.ErrSelfFollow
	}

	author, err := s.userRepository.GetUserByID(ctx, aid.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SubscriptionResponse{}, domain.ErrUserNotFound
		}
		return domain.SubscriptionResponse{}, err
	}

	follow := &entities.Follow{UserID: uid, AuthorID: author.ID}
	if err := s.socialRepository.CreateFollow(ctx, follow); err != nil {
		if database.IsForeignKeyViolation(err) {
			return domain.SubscriptionResponse{}, domain.ErrUserNotFound
		}
		if errors.Is(err, gorm.ErrCheckConstraintViolated) {
			return domain.SubscriptionResponse{}, domain.ErrSelfFollow
		}
		if database.IsDuplicateKey(err) {
			return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
		}
		return domain.SubscriptionResponse{}, err
	}

	metrics.RecordSocialRelation("follow", "add")
	logging.Info().Str("user_id", uid.String()).Str("author_id", aid.String()).Msg("subscribed")

	res, err := s.subscriptions(ctx, []*entities.User{author}, recipesLimit)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	return res[0], nil
}

func (s *socialService) Unfollow(ctx context.Context, userID, authorID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	uid, aid, ok := canonicalPair(userID, authorID)
	if !ok {
		return domain.ErrNotSubscribed
	}

	removed, err := s.socialRepository.DeleteFollow(ctx, uid, aid)
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrNotSubscribed
	}

	metrics.RecordSocialRelation("follow", "remove")
	logging.Info().Str("user_id", uid).Str("author_id", aid).Msg("unsubscribed")
	return nil
}

func (s *socialService) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	aid, ok := domain.CanonicalID(authorID)
	if !ok {
		return false, nil
	}
	set, err := s.FollowingSet(ctx, userID, []string{aid})
	if err != nil {
		return false, err
	}
	return set[aid], nil
}

// FollowingSet reports which of authorIDs userID follows, keyed by canonical id.
// Anonymous viewers follow nobody.
func (s *socialService) FollowingSet(ctx context.Context, userID string, authorIDs []string) (map[string]bool, error) {
	set := make(map[string]bool, len(authorIDs))
	uid, ok := domain.CanonicalID(userID)
	if !ok {
		return set, nil
	}

	valid := make([]string, 0, len(authorIDs))
	for _, id := range authorIDs {
		if canonical, ok := domain.CanonicalID(id); ok {
			valid = append(valid, canonical)
		}
	}

	ids, err := s.socialRepository.GetFollowedAuthorIDs(ctx, uid, valid)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id.String()] = true
	}
	return set, nil
}

func (s *socialService) ListFollowedAuthors(ctx context.Context, userID string, recipesLimit, page, limit int) ([]domain.SubscriptionResponse, int64, error) {
	if err := requireUser(userID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = recipe.DefaultPageLimit
	}
	if limit > recipe.MaxPageLimit {
		limit = recipe.MaxPageLimit
	}

	uid, ok := domain.CanonicalID(userID)
	if !ok {
		return nil, 0, domain.ErrParseUUID
	}

	authors, count, err := s.socialRepository.GetFollowedAuthors(ctx, uid, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res, err := s.subscriptions(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return res, count, nil
}

// subscriptions builds followed-author cards. recipesLimit <= 0 keeps every recipe.
func (s *socialService) subscriptions(ctx context.Context, authors []*entities.User, recipesLimit int) ([]domain.SubscriptionResponse, error) {
	ids := make([]string, 0, len(authors))
	for _, author := range authors {
		ids = append(ids, author.ID.String())
	}
	counts, err := s.recipeRepository.CountRecipesByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	res := make([]domain.SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		recipes, err := s.recipeRepository.GetRecipesByAuthor(ctx, author.ID.String(), recipesLimit)
		if err != nil {
			return nil, err
		}
		shorts := make([]domain.RecipeShort, 0, len(recipes))
		for _, r := range recipes {
			shorts = append(shorts, recipe.ToRecipeShort(r))
		}
		res = append(res, domain.SubscriptionResponse{
			UserResponse: user.ToUserResponse(author, true),
			Recipes:      shorts,
			RecipesCount: counts[author.ID.String()],
		})
	}
	return res, nil
}

func (s *socialService) resolvePair(ctx context.Context, userID, recipeID string) (uuid.UUID, *entities.Recipe, error) {
	if err := requireUser(userID); err != nil {
		return uuid.Nil, nil, err
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, nil, domain.ErrParseUUID
	}
	rid, err := uuid.Parse(recipeID)
	if err != nil {
		return uuid.Nil, nil, domain.ErrRecipeNotFound
	}

	target, err := s.recipeRepository.GetRecipeByID(ctx, rid.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, nil, domain.ErrRecipeNotFound
		}
		return uuid.Nil, nil, err
	}
	return uid, target, nil
}

// translateLinkError maps constraint failures of favorite and cart inserts.
// The unique index is the only guard against concurrent duplicate adds.
// A foreign key failure means the recipe or the caller's account is gone.
func translateLinkError(err error, duplicate error) error {
	if database.IsDuplicateKey(err) {
		return duplicate
	}
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("recipe or user %w", domain.ErrNotFound)
	}
	return err
}

func requireUser(userID string) error {
	if userID == "" {
		return domain.ErrAuthenticationRequired
	}
	return nil
}

// canonicalPair parses both ids and returns their canonical forms.
func canonicalPair(userID, otherID string) (string, string, bool) {
	uid, ok := domain.CanonicalID(userID)
	if !ok {
		return "", "", false
	}
	oid, ok := domain.CanonicalID(otherID)
	if !ok {
		return "", "", false
	}
	return uid, oid, true
}

package user

import (
	"context"
	"errors"
	"strings"

	"Foodgram/domain"
	"Foodgram/entities"
	"Foodgram/internal/database"
	"Foodgram/internal/logging"
	"Foodgram/pkg/jwt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		GetUser(ctx context.Context, id string) (domain.UserResponse, error)
		GetUsers(ctx context.Context, page, limit int) ([]domain.UserResponse, int64, error)
		SetPassword(ctx context.Context, userID string, req domain.SetPasswordRequest) error
		EnsureAdmin(ctx context.Context, email, password string) error
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	emailTaken, usernameTaken, err := s.userRepository.CheckEmailOrUsername(ctx, email, req.Username)
	if err != nil {
		return domain.UserResponse{}, err
	}
	if emailTaken {
		return domain.UserResponse{}, domain.ErrEmailTaken
	}
	if usernameTaken {
		return domain.UserResponse{}, domain.ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserResponse{}, err
	}

	user := &entities.User{
		ID:        uuid.New(),
		Email:     email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
		Role:      domain.RoleUser,
	}
	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		if database.IsDuplicateKey(err) {
			return domain.UserResponse{}, s.takenIdentity(ctx, email, req.Username)
		}
		return domain.UserResponse{}, err
	}

	return ToUserResponse(user, false), nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrInvalidCredentials
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	return domain.LoginResponse{
		AuthToken: s.jwtService.GenerateTokenUser(user.ID.String(), user.Role),
	}, nil
}

// takenIdentity reports which identity lost a concurrent registration race.
func (s *userService) takenIdentity(ctx context.Context, email, username string) error {
	emailTaken, usernameTaken, err := s.userRepository.CheckEmailOrUsername(ctx, email, username)
	if err != nil {
		return err
	}
	if usernameTaken && !emailTaken {
		return domain.ErrUsernameTaken
	}
	return domain.ErrEmailTaken
}

func (s *userService) GetUser(ctx context.Context, id string) (domain.UserResponse, error) {
	uid, ok := domain.CanonicalID(id)
	if !ok {
		return domain.UserResponse{}, domain.ErrUserNotFound
	}
	user, err := s.userRepository.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return ToUserResponse(user, false), nil
}

func (s *userService) GetUsers(ctx context.Context, page, limit int) ([]domain.UserResponse, int64, error) {
	users, count, err := s.userRepository.GetUsers(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]domain.UserResponse, 0, len(users))
	for _, user := range users {
		res = append(res, ToUserResponse(user, false))
	}
	return res, count, nil
}

// SetPassword replaces the caller's password after checking the current one.
func (s *userService) SetPassword(ctx context.Context, userID string, req domain.SetPasswordRequest) error {
	if userID == "" {
		return domain.ErrAuthenticationRequired
	}
	uid, ok := domain.CanonicalID(userID)
	if !ok {
		return domain.ErrParseUUID
	}
	user, err := s.userRepository.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		return err
	}

	logging.Info().Str("user_id", uid).Msg("password changed")
	return nil
}

// EnsureAdmin creates the bootstrap administrator, or promotes the existing
// account with that email. An empty email disables bootstrapping.
func (s *userService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	existing, err := s.userRepository.GetUserByEmail(ctx, email)
	if err == nil {
		if existing.Role == domain.RoleAdmin {
			return nil
		}
		existing.Role = domain.RoleAdmin
		logging.Info().Str("email", email).Msg("promoting user to admin")
		return s.userRepository.UpdateUser(ctx, existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	username, _, _ := strings.Cut(email, "@")
	admin := &entities.User{
		ID:       uuid.New(),
		Email:    email,
		Username: username,
		Password: string(hashed),
		Role:     domain.RoleAdmin,
	}
	logging.Info().Str("email", email).Msg("creating bootstrap admin")
	return s.userRepository.CreateUser(ctx, admin)
}

func ToUserResponse(user *entities.User, isSubscribed bool) domain.UserResponse {
	return domain.UserResponse{
		ID:           user.ID.String(),
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
}

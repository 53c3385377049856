package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"
	MessageUnauthorized         = "authentication credentials were not provided"

	// Error kinds. Every error returned by a service wraps exactly one of these.
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation error")
	ErrAlreadyExists    = errors.New("already exists")
	ErrSelfFollow       = errors.New("cannot follow yourself")

	ErrParseUUID     = fmt.Errorf("failed to parse UUID: %w", ErrValidation)
	ErrTokenNotFound = errors.New("failed to token not found")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("token invalid")
)

// Actor is the identity a request acts as. The zero value is anonymous.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAnonymous() bool {
	return a.UserID == ""
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanModify reports whether the actor may mutate an object owned by ownerID.
func (a Actor) CanModify(ownerID string) bool {
	if a.IsAnonymous() {
		return false
	}
	return a.IsAdmin() || SameID(a.UserID, ownerID)
}

// CanonicalID parses id as a UUID and returns its lowercase hyphenated form.
func CanonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// SameID reports whether a and b name the same UUID in any accepted spelling.
func SameID(a, b string) bool {
	x, okA := CanonicalID(a)
	y, okB := CanonicalID(b)
	return okA && okB && x == y
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}
}

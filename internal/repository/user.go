package repository

import (
	"context"

	"vidtube/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByUsernameOrEmail matches either field; pass the same value for
	// both when the caller only has a single identifier.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	// SetRefreshToken overwrites the stored refresh token unconditionally.
	// An empty token clears it.
	SetRefreshToken(ctx context.Context, id, token string) error
	// RotateRefreshToken swaps current for next only if current is still
	// the stored value. Returns domain.ErrUnauthorized when the stored
	// token no longer matches (rotated by a concurrent call, or cleared
	// by logout).
	RotateRefreshToken(ctx context.Context, id, current, next string) error
}

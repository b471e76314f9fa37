// Package users stores credential records.
package users

import (
	"context"

	"github.com/faithchat/relay/internal/server/models"
)

// Repository is the credential store. Create must be an atomic unique
// insert: a second Create for the same identity fails with
// common.ErrorAlreadyExists and leaves the first record untouched.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByIdentity(ctx context.Context, identity string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, identity string, hash []byte) error
}

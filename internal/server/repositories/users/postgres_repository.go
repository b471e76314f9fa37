package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/faithchat/relay/internal/common"
	"github.com/faithchat/relay/internal/dbx"
	"github.com/faithchat/relay/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the user unless the identity is taken. The uniqueness
// check and the insert are one statement, so concurrent registrations of
// the same identity cannot both succeed.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (identity, password_hash)
		 VALUES ($1, $2)
		 ON CONFLICT (identity) DO NOTHING
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, user.Identity, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.UpdatedAt = user.CreatedAt
	return user, nil
}

func (r *PostgresRepository) GetByIdentity(ctx context.Context, identity string) (*models.User, error) {
	query :=
		`SELECT id, identity, password_hash, created_at, updated_at FROM users
		 WHERE identity = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, identity).
		Scan(&user.ID, &user.Identity, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, identity string, hash []byte) error {
	query :=
		`UPDATE users SET password_hash = $2, updated_at = now()
		 WHERE identity = $1
		 `

	res, err := r.db.ExecContext(ctx, query, identity, hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

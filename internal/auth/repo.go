package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asset-atlas/atlas/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByUsername fetches a user with its role by unique username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT u.id, u.username, u.password_hash, COALESCE(u.display_name, ''), COALESCE(u.dept, ''),
		       u.is_active, u.created_at, u.updated_at,
		       r.id, r.name, r.can_create_asset, r.can_read_asset, r.can_update_asset,
		       r.can_delete_asset, r.can_manage_users
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.username = $1`, username)

	var user User
	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.DisplayName, &user.Dept,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		&user.Role.ID, &user.Role.Name, &user.Role.CreateAsset, &user.Role.ReadAsset,
		&user.Role.UpdateAsset, &user.Role.DeleteAsset, &user.Role.ManageUsers,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)

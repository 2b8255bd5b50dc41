// Package bootstrap seeds the fixed roles and the initial admin account.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asset-atlas/atlas/internal/platform/db"
	"github.com/asset-atlas/atlas/internal/shared"
)

// Hasher derives a storage hash from a plaintext password.
type Hasher func(password string) (string, error)

// Seeder performs idempotent first-boot seeding. Re-running against a
// populated database is a no-op, and concurrent restarts racing on the
// same storage settle on the unique constraints.
type Seeder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	audit  *shared.AuditLogger
	hash   Hasher
}

// NewSeeder constructs a Seeder.
func NewSeeder(pool *pgxpool.Pool, logger *slog.Logger, audit *shared.AuditLogger, hash Hasher) *Seeder {
	return &Seeder{pool: pool, logger: logger, audit: audit, hash: hash}
}

type roleSeed struct {
	name                              string
	create, read, update, del, manage bool
}

// The three fixed roles. Capability sets are defined here once and only
// ever changed by direct storage edits, never through the API.
var roleSeeds = []roleSeed{
	{name: "admin", create: true, read: true, update: true, del: true, manage: true},
	{name: "editor", create: true, read: true, update: true, del: true, manage: false},
	{name: "viewer", create: false, read: true, update: false, del: false, manage: false},
}

// Seed inserts the fixed roles and the admin account when absent.
func (s *Seeder) Seed(ctx context.Context, adminPassword string) error {
	if adminPassword == "" {
		return errors.New("bootstrap: admin default password must not be empty")
	}

	for _, role := range roleSeeds {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO roles (name, can_create_asset, can_read_asset, can_update_asset, can_delete_asset, can_manage_users)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (name) DO NOTHING`,
			role.name, role.create, role.read, role.update, role.del, role.manage)
		if err != nil {
			return fmt.Errorf("bootstrap: seed role %s: %w", role.name, err)
		}
	}

	hash, err := s.hash(adminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap: hash admin password: %w", err)
	}

	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var adminID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO users (username, password_hash, display_name, dept, role_id, is_active, created_at, updated_at)
			SELECT 'admin', $1, 'System Administrator', 'IT', r.id, TRUE, NOW(), NOW()
			FROM roles r WHERE r.name = 'admin'
			ON CONFLICT (username) DO NOTHING
			RETURNING id`, hash).Scan(&adminID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Admin already exists, nothing to do.
				return nil
			}
			return fmt.Errorf("bootstrap: seed admin: %w", err)
		}
		s.logger.Info("seeded initial admin account", slog.Int64("user_id", adminID))
		return s.audit.RecordIn(ctx, tx, shared.AuditEntry{
			ActorID:     nil,
			Action:      shared.ActionCreate,
			TargetTable: "users",
			TargetID:    &adminID,
			Detail:      "bootstrap admin account",
		})
	})
}

package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/asset-atlas/atlas/internal/rbac"
	"github.com/asset-atlas/atlas/internal/shared"
)

// ErrNoFields indicates an update request that changes nothing.
var ErrNoFields = errors.New("users: no fields provided")

// Hasher derives a storage hash from a plaintext password.
type Hasher func(password string) (string, error)

// Service handles user management business logic. Mutations and their
// audit entries commit in one transaction.
type Service struct {
	repo Repository
	hash Hasher
}

// NewService builds a Service instance.
func NewService(repo Repository, hash Hasher) *Service {
	return &Service{repo: repo, hash: hash}
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// ListRoles returns the seeded roles.
func (s *Service) ListRoles(ctx context.Context) ([]rbac.Role, error) {
	return s.repo.ListRoles(ctx)
}

// Create persists a new account bound to an existing role. Only the
// password hash is stored.
func (s *Service) Create(ctx context.Context, actorID int64, input CreateInput) (User, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" {
		return User{}, errors.New("users: username required")
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}

	var created User
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		exists, err := tx.UsernameExists(ctx, input.Username)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("username already exists: %w", shared.ErrConflict)
		}
		roleOK, err := tx.RoleExists(ctx, input.RoleID)
		if err != nil {
			return err
		}
		if !roleOK {
			return fmt.Errorf("role does not exist: %w", shared.ErrInvalidReference)
		}
		created, err = tx.Insert(ctx, input, hash)
		if err != nil {
			return err
		}
		return tx.RecordAudit(ctx, shared.AuditEntry{
			ActorID:     &actorID,
			Action:      shared.ActionCreate,
			TargetTable: "users",
			TargetID:    &created.ID,
			Detail:      map[string]any{"username": input.Username, "role_id": input.RoleID},
		})
	})
	if err != nil {
		return User{}, err
	}
	return created, nil
}

// Update applies the provided fields. A supplied password is hashed before
// it reaches storage; is_active=false soft-deactivates the account without
// recalling tokens already issued (they die at the next request's account
// check or at expiry).
func (s *Service) Update(ctx context.Context, actorID, id int64, input UpdateInput) (User, error) {
	if input.IsEmpty() {
		return User{}, ErrNoFields
	}

	var passwordHash *string
	if input.Password != nil {
		hash, err := s.hash(*input.Password)
		if err != nil {
			return User{}, fmt.Errorf("users: hash password: %w", err)
		}
		passwordHash = &hash
	}

	var updated User
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if input.RoleID != nil {
			roleOK, err := tx.RoleExists(ctx, *input.RoleID)
			if err != nil {
				return err
			}
			if !roleOK {
				return fmt.Errorf("role does not exist: %w", shared.ErrInvalidReference)
			}
		}
		var err error
		updated, err = tx.Update(ctx, id, input, passwordHash)
		if err != nil {
			return err
		}
		return tx.RecordAudit(ctx, shared.AuditEntry{
			ActorID:     &actorID,
			Action:      shared.ActionUpdate,
			TargetTable: "users",
			TargetID:    &id,
			Detail:      input.Changes(),
		})
	})
	if err != nil {
		return User{}, err
	}
	return updated, nil
}

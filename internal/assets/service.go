package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/asset-atlas/atlas/internal/shared"
)

// ErrNoFields indicates an update request that changes nothing.
var ErrNoFields = errors.New("assets: no fields provided")

// Service coordinates asset mutations. Every mutation and its audit entry
// commit inside one transaction: if the audit insert fails the mutation
// rolls back with it.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns assets matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Asset, error) {
	return s.repo.List(ctx, filters)
}

// Get fetches a single asset.
func (s *Service) Get(ctx context.Context, id int64) (Asset, error) {
	return s.repo.Get(ctx, id)
}

// Create persists a new asset and its CREATE audit entry.
func (s *Service) Create(ctx context.Context, actorID int64, input CreateInput) (Asset, error) {
	input.AssetCode = strings.TrimSpace(input.AssetCode)
	if input.AssetCode == "" {
		return Asset{}, errors.New("assets: asset_code required")
	}

	var created Asset
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		exists, err := tx.CodeExists(ctx, input.AssetCode, 0)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("asset_code already exists: %w", shared.ErrConflict)
		}
		created, err = tx.Insert(ctx, input)
		if err != nil {
			return err
		}
		return tx.RecordAudit(ctx, shared.AuditEntry{
			ActorID:     &actorID,
			Action:      shared.ActionCreate,
			TargetTable: "assets",
			TargetID:    &created.ID,
			Detail:      input,
		})
	})
	if err != nil {
		return Asset{}, err
	}
	return created, nil
}

// Update applies the provided fields to an existing asset and records the
// UPDATE audit entry alongside.
func (s *Service) Update(ctx context.Context, actorID, id int64, input UpdateInput) (Asset, error) {
	if input.IsEmpty() {
		return Asset{}, ErrNoFields
	}

	var updated Asset
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if input.AssetCode != nil && *input.AssetCode != current.AssetCode {
			exists, err := tx.CodeExists(ctx, *input.AssetCode, id)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("asset_code already exists: %w", shared.ErrConflict)
			}
		}
		updated, err = tx.Update(ctx, id, input)
		if err != nil {
			return err
		}
		return tx.RecordAudit(ctx, shared.AuditEntry{
			ActorID:     &actorID,
			Action:      shared.ActionUpdate,
			TargetTable: "assets",
			TargetID:    &id,
			Detail:      input.Changes(),
		})
	})
	if err != nil {
		return Asset{}, err
	}
	return updated, nil
}

// Delete removes an asset permanently and records the DELETE audit entry.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(ctx, id); err != nil {
			return err
		}
		return tx.RecordAudit(ctx, shared.AuditEntry{
			ActorID:     &actorID,
			Action:      shared.ActionDelete,
			TargetTable: "assets",
			TargetID:    &id,
			Detail:      map[string]any{"asset_code": current.AssetCode},
		})
	})
}

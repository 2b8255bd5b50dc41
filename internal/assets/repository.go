package assets

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asset-atlas/atlas/internal/platform/db"
	"github.com/asset-atlas/atlas/internal/shared"
)

const assetColumns = `id, asset_code, category, COALESCE(brand, ''), COALESCE(model, ''),
	COALESCE(serial_number, ''), COALESCE(location, ''), COALESCE(owner_dept, ''),
	COALESCE(ip_address, ''), COALESCE(mac_address, ''), COALESCE(os_or_firmware, ''),
	status, COALESCE(note, ''), created_at, updated_at`

// Repository defines persistence operations for assets.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Asset, error)
	Get(ctx context.Context, id int64) (Asset, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the mutating operations bound to one transaction,
// including the audit insert so mutation and trail commit together.
type TxRepository interface {
	CodeExists(ctx context.Context, code string, excludeID int64) (bool, error)
	Insert(ctx context.Context, input CreateInput) (Asset, error)
	GetForUpdate(ctx context.Context, id int64) (Asset, error)
	Update(ctx context.Context, id int64, input UpdateInput) (Asset, error)
	Delete(ctx context.Context, id int64) error
	RecordAudit(ctx context.Context, entry shared.AuditEntry) error
}

// PGRepository persists assets in PostgreSQL.
type PGRepository struct {
	pool  *pgxpool.Pool
	audit *shared.AuditLogger
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool, audit *shared.AuditLogger) *PGRepository {
	return &PGRepository{pool: pool, audit: audit}
}

// List returns assets matching the filters, most recently updated first.
func (r *PGRepository) List(ctx context.Context, filters ListFilters) ([]Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.AssetCode != "" {
		argCount++
		query += ` AND asset_code ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.AssetCode+"%")
	}
	if filters.IPAddress != "" {
		argCount++
		query += ` AND ip_address ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.IPAddress+"%")
	}
	if filters.Category != "" {
		argCount++
		query += ` AND category = $` + strconv.Itoa(argCount)
		args = append(args, filters.Category)
	}
	if filters.Status != "" {
		argCount++
		query += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, asset)
	}
	return result, rows.Err()
}

// Get fetches an asset by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (Asset, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Asset{}, shared.ErrNotFound
		}
		return Asset{}, err
	}
	return asset, nil
}

// WithTx runs fn inside one transaction carrying mutation and audit.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx, audit: r.audit})
	})
}

type txRepo struct {
	tx    pgx.Tx
	audit *shared.AuditLogger
}

func (t *txRepo) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM assets WHERE asset_code = $1 AND id <> $2)`,
		code, excludeID).Scan(&exists)
	return exists, err
}

func (t *txRepo) Insert(ctx context.Context, input CreateInput) (Asset, error) {
	row := t.tx.QueryRow(ctx, `
		INSERT INTO assets (asset_code, category, brand, model, serial_number, location,
			owner_dept, ip_address, mac_address, os_or_firmware, status, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING `+assetColumns,
		input.AssetCode, input.Category, input.Brand, input.Model, input.SerialNumber,
		input.Location, input.OwnerDept, input.IPAddress, input.MACAddress,
		input.OSOrFirmware, input.Status, input.Note)
	asset, err := scanAsset(row)
	if err != nil {
		return Asset{}, mapConstraintError(err)
	}
	return asset, nil
}

func (t *txRepo) GetForUpdate(ctx context.Context, id int64) (Asset, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1 FOR UPDATE`, id)
	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Asset{}, shared.ErrNotFound
		}
		return Asset{}, err
	}
	return asset, nil
}

func (t *txRepo) Update(ctx context.Context, id int64, input UpdateInput) (Asset, error) {
	query := `UPDATE assets SET updated_at = NOW()`
	args := []any{}
	argCount := 0
	set := func(column string, value *string) {
		if value != nil {
			argCount++
			query += `, ` + column + ` = $` + strconv.Itoa(argCount)
			args = append(args, *value)
		}
	}
	set("asset_code", input.AssetCode)
	set("category", input.Category)
	set("brand", input.Brand)
	set("model", input.Model)
	set("serial_number", input.SerialNumber)
	set("location", input.Location)
	set("owner_dept", input.OwnerDept)
	set("ip_address", input.IPAddress)
	set("mac_address", input.MACAddress)
	set("os_or_firmware", input.OSOrFirmware)
	set("status", input.Status)
	set("note", input.Note)

	argCount++
	query += ` WHERE id = $` + strconv.Itoa(argCount) + ` RETURNING ` + assetColumns
	args = append(args, id)

	row := t.tx.QueryRow(ctx, query, args...)
	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Asset{}, shared.ErrNotFound
		}
		return Asset{}, mapConstraintError(err)
	}
	return asset, nil
}

func (t *txRepo) Delete(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (t *txRepo) RecordAudit(ctx context.Context, entry shared.AuditEntry) error {
	return t.audit.RecordIn(ctx, t.tx, entry)
}

// mapConstraintError translates the unique-index violation raised when a
// concurrent writer wins the asset_code race; the application-level
// pre-check only exists for a friendlier message.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("asset_code already exists: %w", shared.ErrConflict)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (Asset, error) {
	var a Asset
	err := row.Scan(&a.ID, &a.AssetCode, &a.Category, &a.Brand, &a.Model,
		&a.SerialNumber, &a.Location, &a.OwnerDept, &a.IPAddress, &a.MACAddress,
		&a.OSOrFirmware, &a.Status, &a.Note, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

var _ Repository = (*PGRepository)(nil)

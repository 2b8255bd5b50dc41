package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asset-atlas/atlas/internal/platform/db"
	"github.com/asset-atlas/atlas/internal/rbac"
	"github.com/asset-atlas/atlas/internal/shared"
)

const userColumns = `u.id, u.username, COALESCE(u.display_name, ''), COALESCE(u.dept, ''),
	u.is_active, u.created_at, u.updated_at,
	r.id, r.name, r.can_create_asset, r.can_read_asset, r.can_update_asset,
	r.can_delete_asset, r.can_manage_users`

const userJoin = ` FROM users u JOIN roles r ON r.id = u.role_id`

// Repository defines persistence operations for user management.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	ListRoles(ctx context.Context) ([]rbac.Role, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the mutations bound to one transaction together
// with the audit insert.
type TxRepository interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	RoleExists(ctx context.Context, roleID int64) (bool, error)
	Insert(ctx context.Context, input CreateInput, passwordHash string) (User, error)
	GetForUpdate(ctx context.Context, id int64) (User, error)
	Update(ctx context.Context, id int64, input UpdateInput, passwordHash *string) (User, error)
	RecordAudit(ctx context.Context, entry shared.AuditEntry) error
}

// PGRepository persists users in PostgreSQL.
type PGRepository struct {
	pool  *pgxpool.Pool
	audit *shared.AuditLogger
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool, audit *shared.AuditLogger) *PGRepository {
	return &PGRepository{pool: pool, audit: audit}
}

// List returns all users, newest first.
func (r *PGRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+userJoin+` ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

// ListRoles returns all roles ordered by id.
func (r *PGRepository) ListRoles(ctx context.Context) ([]rbac.Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, can_create_asset, can_read_asset, can_update_asset,
		       can_delete_asset, can_manage_users
		FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []rbac.Role
	for rows.Next() {
		var role rbac.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreateAsset, &role.ReadAsset,
			&role.UpdateAsset, &role.DeleteAsset, &role.ManageUsers); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
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

func (t *txRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

func (t *txRepo) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM roles WHERE id = $1)`, roleID).Scan(&exists)
	return exists, err
}

func (t *txRepo) Insert(ctx context.Context, input CreateInput, passwordHash string) (User, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, display_name, dept, role_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
		RETURNING id`,
		input.Username, passwordHash, input.DisplayName, input.Dept, input.RoleID).Scan(&id)
	if err != nil {
		return User{}, mapConstraintError(err)
	}
	return t.get(ctx, id)
}

func (t *txRepo) GetForUpdate(ctx context.Context, id int64) (User, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+userColumns+userJoin+` WHERE u.id = $1 FOR UPDATE OF u`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (t *txRepo) Update(ctx context.Context, id int64, input UpdateInput, passwordHash *string) (User, error) {
	query := `UPDATE users SET updated_at = NOW()`
	args := []any{}
	argCount := 0
	add := func(column string, value any) {
		argCount++
		query += `, ` + column + ` = $` + strconv.Itoa(argCount)
		args = append(args, value)
	}
	if input.DisplayName != nil {
		add("display_name", *input.DisplayName)
	}
	if input.Dept != nil {
		add("dept", *input.Dept)
	}
	if input.RoleID != nil {
		add("role_id", *input.RoleID)
	}
	if input.IsActive != nil {
		add("is_active", *input.IsActive)
	}
	if passwordHash != nil {
		add("password_hash", *passwordHash)
	}

	argCount++
	query += ` WHERE id = $` + strconv.Itoa(argCount)
	args = append(args, id)

	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return User{}, mapConstraintError(err)
	}
	if tag.RowsAffected() == 0 {
		return User{}, shared.ErrNotFound
	}
	return t.get(ctx, id)
}

func (t *txRepo) RecordAudit(ctx context.Context, entry shared.AuditEntry) error {
	return t.audit.RecordIn(ctx, t.tx, entry)
}

func (t *txRepo) get(ctx context.Context, id int64) (User, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+userColumns+userJoin+` WHERE u.id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// mapConstraintError translates storage-level constraint violations: the
// unique index on username is the arbiter under concurrent creates, the
// role foreign key backs the InvalidReference contract.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("username already exists: %w", shared.ErrConflict)
		case "23503":
			return fmt.Errorf("role does not exist: %w", shared.ErrInvalidReference)
		}
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Dept,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		&u.Role.ID, &u.Role.Name, &u.Role.CreateAsset, &u.Role.ReadAsset,
		&u.Role.UpdateAsset, &u.Role.DeleteAsset, &u.Role.ManageUsers)
	return u, err
}

var _ Repository = (*PGRepository)(nil)

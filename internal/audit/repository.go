package audit

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// systemActor is how NULL-actor rows (bootstrap writes) surface in the
// timeline, and the filter value that selects them.
const systemActor = "system"

// PGRepository reads the audit trail from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListWindow returns up to limit entries matching the filters, newest
// first.
func (r *PGRepository) ListWindow(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error) {
	query, args := buildWindowQuery(filters, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Actor, &e.Action,
			&e.TargetTable, &e.TargetID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func buildWindowQuery(filters TimelineFilters, limit, offset int) (string, []any) {
	query := `
		SELECT a.id, a.user_id, COALESCE(u.username, 'system'), a.action,
		       COALESCE(a.target_table, ''), a.target_id, COALESCE(a.detail, ''), a.created_at
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE 1=1`
	args := []any{}
	argCount := 0

	switch filters.Actor {
	case "":
	case systemActor:
		// Bootstrap rows have no user_id; "system" is their display name,
		// not a username the join could match.
		query += ` AND a.user_id IS NULL`
	default:
		argCount++
		query += ` AND u.username = $` + strconv.Itoa(argCount)
		args = append(args, filters.Actor)
	}
	if filters.Action != "" {
		argCount++
		query += ` AND a.action = $` + strconv.Itoa(argCount)
		args = append(args, filters.Action)
	}
	if filters.TargetTable != "" {
		argCount++
		query += ` AND a.target_table = $` + strconv.Itoa(argCount)
		args = append(args, filters.TargetTable)
	}

	argCount++
	query += ` ORDER BY a.created_at DESC, a.id DESC LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, offset)

	return query, args
}

var _ Repository = (*PGRepository)(nil)

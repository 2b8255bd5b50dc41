package shared

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Audit action labels.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionLogin  = "LOGIN"
)

// AuditEntry represents a record stored in audit_logs. ActorID is nil for
// system actions such as bootstrap seeding.
type AuditEntry struct {
	ActorID     *int64
	Action      string
	TargetTable string
	TargetID    *int64
	Detail      any
}

// Execer is satisfied by both pgxpool.Pool and pgx.Tx, so audit rows can be
// written inside the same transaction as the mutation they describe.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AuditLogger appends records to audit_logs. The table is append-only:
// no update or delete is exposed anywhere in the codebase.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the entry using the logger's own pool.
func (l *AuditLogger) Record(ctx context.Context, entry AuditEntry) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	return l.RecordIn(ctx, l.pool, entry)
}

// RecordIn persists the entry through the supplied querier, typically the
// transaction carrying the business mutation.
func (l *AuditLogger) RecordIn(ctx context.Context, q Execer, entry AuditEntry) error {
	if entry.Action == "" {
		return errors.New("audit entry requires an action")
	}
	detail, err := marshalDetail(entry.Detail)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx,
		`INSERT INTO audit_logs (user_id, action, target_table, target_id, detail, created_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, NOW())`,
		entry.ActorID, entry.Action, entry.TargetTable, entry.TargetID, detail)
	return err
}

func marshalDetail(detail any) (*string, error) {
	if detail == nil {
		return nil, nil
	}
	if s, ok := detail.(string); ok {
		return &s, nil
	}
	raw, err := json.Marshal(detail)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

package users

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asset-atlas/atlas/internal/shared"
)

func TestMapConstraintError(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	require.ErrorIs(t, mapConstraintError(unique), shared.ErrConflict)

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "users_role_id_fkey"}
	require.ErrorIs(t, mapConstraintError(fk), shared.ErrInvalidReference)

	// Wrapped driver errors unwrap the same way.
	wrapped := errors.Join(errors.New("insert users"), fk)
	require.ErrorIs(t, mapConstraintError(wrapped), shared.ErrInvalidReference)
}

func TestMapConstraintErrorPassesThroughOthers(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(serialization), mapConstraintError(serialization))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, mapConstraintError(plain))
}

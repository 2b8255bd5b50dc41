package assets

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asset-atlas/atlas/internal/shared"
)

func TestMapConstraintError(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "assets_asset_code_key"}
	err := mapConstraintError(unique)
	require.ErrorIs(t, err, shared.ErrConflict)

	// Wrapped driver errors unwrap the same way.
	err = mapConstraintError(errors.Join(errors.New("insert assets"), unique))
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestMapConstraintErrorPassesThroughOthers(t *testing.T) {
	deadlock := &pgconn.PgError{Code: "40P01"}
	assert.Equal(t, error(deadlock), mapConstraintError(deadlock))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, mapConstraintError(plain))
}

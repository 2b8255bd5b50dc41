package rbac

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asset-atlas/atlas/internal/shared"
)

func allCapabilities() []Capability {
	return []Capability{CapCreateAsset, CapReadAsset, CapUpdateAsset, CapDeleteAsset, CapManageUsers}
}

func setWith(cap Capability, granted bool) CapabilitySet {
	var set CapabilitySet
	switch cap {
	case CapCreateAsset:
		set.CreateAsset = granted
	case CapReadAsset:
		set.ReadAsset = granted
	case CapUpdateAsset:
		set.UpdateAsset = granted
	case CapDeleteAsset:
		set.DeleteAsset = granted
	case CapManageUsers:
		set.ManageUsers = granted
	}
	return set
}

func TestAuthorizeMatrix(t *testing.T) {
	svc := NewService()

	for _, cap := range allCapabilities() {
		for _, active := range []bool{true, false} {
			for _, granted := range []bool{true, false} {
				name := fmt.Sprintf("%s/active=%t/granted=%t", cap, active, granted)
				t.Run(name, func(t *testing.T) {
					actor := &Actor{
						ID:       1,
						Username: "tester",
						IsActive: active,
						Role:     Role{ID: 1, Name: "test", CapabilitySet: setWith(cap, granted)},
					}
					got, err := svc.Authorize(actor, cap)
					if active && granted {
						require.NoError(t, err)
						assert.Equal(t, actor, got)
					} else {
						require.ErrorIs(t, err, shared.ErrForbidden)
						assert.Nil(t, got)
					}
				})
			}
		}
	}
}

func TestAuthorizeNoImplicationBetweenCapabilities(t *testing.T) {
	svc := NewService()
	for _, held := range allCapabilities() {
		actor := &Actor{
			ID:       1,
			IsActive: true,
			Role:     Role{Name: "single", CapabilitySet: setWith(held, true)},
		}
		for _, requested := range allCapabilities() {
			_, err := svc.Authorize(actor, requested)
			if requested == held {
				assert.NoError(t, err, "capability %s should grant itself", held)
			} else {
				assert.True(t, errors.Is(err, shared.ErrForbidden),
					"capability %s must not imply %s", held, requested)
			}
		}
	}
}

func TestAuthorizeNilActor(t *testing.T) {
	svc := NewService()
	_, err := svc.Authorize(nil, CapReadAsset)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "create_asset", CapCreateAsset.String())
	assert.Equal(t, "manage_users", CapManageUsers.String())
	assert.Equal(t, "unknown", Capability(99).String())
}

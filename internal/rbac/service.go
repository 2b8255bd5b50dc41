package rbac

import (
	"github.com/asset-atlas/atlas/internal/shared"
)

// Service evaluates authorization decisions. Decisions are computed from
// the actor loaded for the current request and never cached.
type Service struct{}

// NewService constructs a Service.
func NewService() *Service {
	return &Service{}
}

// Authorize returns the actor when it is active and its role grants the
// capability, shared.ErrForbidden otherwise.
func (s *Service) Authorize(actor *Actor, cap Capability) (*Actor, error) {
	if actor == nil {
		return nil, shared.ErrUnauthenticated
	}
	if !actor.IsActive {
		return nil, shared.ErrForbidden
	}
	if !actor.Role.Has(cap) {
		return nil, shared.ErrForbidden
	}
	return actor, nil
}

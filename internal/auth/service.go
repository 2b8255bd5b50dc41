package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/asset-atlas/atlas/internal/shared"
)

// AuditPort abstracts audit logging for the login flow.
type AuditPort interface {
	Record(ctx context.Context, entry shared.AuditEntry) error
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	tokens   *TokenIssuer
	audit    AuditPort
	throttle *Throttle
}

// NewService constructs a new Service. throttle may be nil.
func NewService(repo Repository, tokens *TokenIssuer, audit AuditPort, throttle *Throttle) *Service {
	return &Service{repo: repo, tokens: tokens, audit: audit, throttle: throttle}
}

// Login validates username/password credentials and issues a bearer token.
// Unknown username, wrong password and deactivated account all surface the
// same shared.ErrInvalidCredentials; nothing in the response narrows down
// which one it was. Successful logins are audited, failed attempts are not.
func (s *Service) Login(ctx context.Context, username, password, clientIP string) (*User, string, error) {
	if s.throttle.Blocked(ctx, username, clientIP) {
		return nil, "", shared.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.throttle.NoteFailure(ctx, username, clientIP)
			return nil, "", shared.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !CheckPassword(password, user.PasswordHash) || !user.IsActive {
		s.throttle.NoteFailure(ctx, username, clientIP)
		return nil, "", shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, "", err
	}

	entry := shared.AuditEntry{
		ActorID:     &user.ID,
		Action:      shared.ActionLogin,
		TargetTable: "users",
		TargetID:    &user.ID,
		Detail:      "user login",
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		return nil, "", fmt.Errorf("auth: record login audit: %w", err)
	}

	s.throttle.Reset(ctx, username, clientIP)
	return user, token, nil
}

// ResolveSubject loads the account behind a validated token subject. The
// lookup runs on every request so deactivation and role changes apply
// immediately even to unexpired tokens.
func (s *Service) ResolveSubject(ctx context.Context, subject string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrUnauthenticated
	}
	return user, nil
}

// ValidateToken exposes token validation for the bearer middleware.
func (s *Service) ValidateToken(token string) (string, error) {
	return s.tokens.Validate(token)
}

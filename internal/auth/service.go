package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/spoirmm/spoirmm/internal/shared"
)

const minPasswordLength = 10

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials. Inactive profiles and
// unknown emails fail identically so the response leaks nothing.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	identity, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !identity.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	// The last-login stamp is advisory and must not block a valid login.
	_ = s.repo.RecordLogin(ctx, identity.UserID)
	return identity, nil
}

// Provision creates an identity for a new user profile. The identity starts
// with an unguessable placeholder secret; the returned setup token is mailed
// to the user so they can choose their own password.
func (s *Service) Provision(ctx context.Context, userID, email string) (setupToken string, err error) {
	placeholder := make([]byte, 32)
	if _, err := rand.Read(placeholder); err != nil {
		return "", fmt.Errorf("auth: generate placeholder secret: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword(placeholder, bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash placeholder secret: %w", err)
	}

	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("auth: generate setup token: %w", err)
	}
	setupToken = base64.RawURLEncoding.EncodeToString(token)

	err = s.repo.Create(ctx, Identity{
		UserID:       userID,
		Email:        email,
		PasswordHash: string(hash),
		SetupToken:   setupToken,
	})
	if err != nil {
		return "", fmt.Errorf("auth: create identity: %w", err)
	}
	return setupToken, nil
}

// CompleteSetup redeems a credential-setup token and stores the chosen
// password.
func (s *Service) CompleteSetup(ctx context.Context, token, password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("auth: password must be at least %d characters", minPasswordLength)
	}
	identity, err := s.repo.FindBySetupToken(ctx, token)
	if err != nil {
		return shared.ErrNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	return s.repo.SetPassword(ctx, identity.UserID, string(hash))
}

// Remove deletes the identity backing a user. Callers treat this as a
// best-effort side effect; a failure is theirs to downgrade or queue.
func (s *Service) Remove(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

// Orphaned lists identities whose profile row has been deleted.
func (s *Service) Orphaned(ctx context.Context, limit int) ([]Identity, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListOrphaned(ctx, limit)
}

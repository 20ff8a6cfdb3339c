package users

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/spoirmm/spoirmm/internal/audit"
	"github.com/spoirmm/spoirmm/internal/platform/httpx"
	"github.com/spoirmm/spoirmm/internal/rbac"
	"github.com/spoirmm/spoirmm/internal/shared"
)

// IdentityManager provisions and removes the authentication identity backing
// a profile.
type IdentityManager interface {
	Provision(ctx context.Context, userID, email string) (setupToken string, err error)
	Remove(ctx context.Context, userID string) error
}

// Auditor records lifecycle actions.
type Auditor interface {
	RecordBestEffort(ctx context.Context, entry audit.Entry)
}

// Enqueuer hands work to the background queue.
type Enqueuer interface {
	EnqueueIdentityCleanup(ctx context.Context, userID string) error
	EnqueueSetupEmail(ctx context.Context, email, token string) error
}

// Service implements the user lifecycle.
type Service struct {
	logger     *slog.Logger
	repo       RepositoryPort
	identities IdentityManager
	auditor    Auditor
	queue      Enqueuer
	resolver   *rbac.Resolver
	cache      *rbac.RoleCache
	validate   *validator.Validate
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, repo RepositoryPort, identities IdentityManager, auditor Auditor, queue Enqueuer, resolver *rbac.Resolver, cache *rbac.RoleCache) *Service {
	return &Service{
		logger:     logger,
		repo:       repo,
		identities: identities,
		auditor:    auditor,
		queue:      queue,
		resolver:   resolver,
		cache:      cache,
		validate:   validator.New(),
	}
}

// Create stores a new profile and provisions its authentication identity. The
// two writes are not transactional; if provisioning fails the profile row is
// rolled back so a retry starts clean.
func (s *Service) Create(ctx context.Context, actorID string, req CreateUserRequest) (*Profile, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	if err := validateRoleNames(req.Roles); err != nil {
		return nil, err
	}

	profile := Profile{
		ID:           uuid.NewString(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		Organization: req.Organization,
		IsActive:     true,
		Roles:        req.Roles,
		CreatedBy:    actorID,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, httpx.ErrDuplicate) {
			return nil, fmt.Errorf("%w: a user with that email already exists", httpx.ErrDuplicate)
		}
		return nil, err
	}

	token, err := s.identities.Provision(ctx, profile.ID, profile.Email)
	if err != nil {
		if delErr := s.repo.Delete(ctx, profile.ID); delErr != nil {
			s.logger.Error("rollback of profile after identity failure",
				slog.String("user_id", profile.ID), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("provision identity: %w", err)
	}

	if err := s.queue.EnqueueSetupEmail(ctx, profile.Email, token); err != nil {
		s.logger.Warn("enqueue setup email", slog.String("user_id", profile.ID), slog.Any("error", err))
	}

	s.auditor.RecordBestEffort(ctx, audit.Entry{
		Action:       audit.ActionUserCreated,
		TargetUserID: profile.ID,
		PerformedBy:  actorID,
		Details:      map[string]any{"email": profile.Email, "roles": profile.Roles},
	})
	return &profile, nil
}

// Update replaces the display name and role set.
func (s *Service) Update(ctx context.Context, actorID, userID string, req UpdateUserRequest) (*Profile, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	if err := validateRoleNames(req.Roles); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	existing.DisplayName = req.DisplayName
	existing.Organization = req.Organization
	existing.Roles = req.Roles
	existing.ProjectIDs = req.ProjectIDs
	existing.ProfileRole = ""
	existing.TopLevelRole = ""
	existing.CanManageUsers = nil
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, mapNotFound(err)
	}

	// Role grants may have changed; drop any memoized set.
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("invalidate role cache", slog.String("user_id", userID), slog.Any("error", err))
	}

	s.auditor.RecordBestEffort(ctx, audit.Entry{
		Action:       audit.ActionUserUpdated,
		TargetUserID: userID,
		PerformedBy:  actorID,
		Details:      map[string]any{"display_name": req.DisplayName, "roles": req.Roles},
	})
	return existing, nil
}

// Deactivate suspends a user. A suspended user keeps their data but can no
// longer log in. Deactivating an already inactive user is a no-op.
func (s *Service) Deactivate(ctx context.Context, actorID, userID string) error {
	existing, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return mapNotFound(err)
	}
	if !existing.IsActive {
		return nil
	}
	if err := s.repo.SetActive(ctx, userID, false); err != nil {
		return mapNotFound(err)
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("invalidate role cache", slog.String("user_id", userID), slog.Any("error", err))
	}
	s.auditor.RecordBestEffort(ctx, audit.Entry{
		Action:       audit.ActionUserDeactivated,
		TargetUserID: userID,
		PerformedBy:  actorID,
	})
	return nil
}

// Reactivate restores a suspended user. Reactivating an already active user
// succeeds without writing anything.
func (s *Service) Reactivate(ctx context.Context, actorID, userID string) error {
	existing, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return mapNotFound(err)
	}
	if existing.IsActive {
		return nil
	}
	if err := s.repo.SetActive(ctx, userID, true); err != nil {
		return mapNotFound(err)
	}
	s.auditor.RecordBestEffort(ctx, audit.Entry{
		Action:       audit.ActionUserReactivated,
		TargetUserID: userID,
		PerformedBy:  actorID,
	})
	return nil
}

// DeleteCompletely removes both the profile and its authentication identity.
// Only a caller holding full user management access may delete, and never
// their own account. Identity removal is best effort: a failure is logged,
// audited and queued for the cleanup job rather than failing the call, so the
// profile deletion the admin asked for always sticks.
func (s *Service) DeleteCompletely(ctx context.Context, actorID, userID string) (*DeleteResult, error) {
	if actorID == "" {
		return nil, httpx.ErrUnauthorized
	}
	// Self-deletion is rejected before the role check so the answer does not
	// depend on what the caller is allowed to do.
	if actorID == userID {
		return nil, fmt.Errorf("%w: you cannot delete your own account", httpx.ErrInvalidArgument)
	}
	roles, err := s.RolesForUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !rbac.HasPermission(roles, rbac.Permission{Namespace: rbac.NamespaceUserManagement, Scope: rbac.ScopeFull}) {
		return nil, fmt.Errorf("%w: user deletion requires the Admin role", httpx.ErrForbidden)
	}

	target, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return nil, mapNotFound(err)
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("invalidate role cache", slog.String("user_id", userID), slog.Any("error", err))
	}

	if err := s.identities.Remove(ctx, userID); err != nil {
		s.logger.Warn("identity removal failed, queueing cleanup",
			slog.String("user_id", userID), slog.Any("error", err))
		s.auditor.RecordBestEffort(ctx, audit.Entry{
			Action:       audit.ActionUserAuthDeletionFailed,
			TargetUserID: userID,
			PerformedBy:  actorID,
			Details:      map[string]any{"error": err.Error()},
		})
		if qErr := s.queue.EnqueueIdentityCleanup(ctx, userID); qErr != nil {
			s.logger.Error("enqueue identity cleanup", slog.String("user_id", userID), slog.Any("error", qErr))
		}
	}

	s.auditor.RecordBestEffort(ctx, audit.Entry{
		Action:       audit.ActionUserDeleted,
		TargetUserID: userID,
		PerformedBy:  actorID,
		Details:      map[string]any{"email": target.Email},
	})
	return &DeleteResult{
		Success:       true,
		Message:       fmt.Sprintf("User %s deleted", target.Email),
		DeletedUserID: userID,
	}, nil
}

// Get fetches a single profile.
func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return p, nil
}

// List returns user profiles.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]Profile, error) {
	return s.repo.List(ctx, includeInactive)
}

// RolesForUser resolves the effective role set for a user. A missing profile
// resolves to no roles at all, which denies every permission check without
// surfacing an error.
func (s *Service) RolesForUser(ctx context.Context, userID string) ([]rbac.Role, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, nil
	}
	return s.resolver.Resolve(rbac.LegacyProfile{
		Email:          p.Email,
		ProfileRole:    p.ProfileRole,
		TopLevelRole:   p.TopLevelRole,
		CanManageUsers: p.CanManageUsers,
		Roles:          p.Roles,
	}), nil
}

func validateRoleNames(names []string) error {
	for _, name := range names {
		if _, ok := rbac.ParseRole(name); !ok {
			return fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, name)
		}
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: user", httpx.ErrNotFound)
	}
	return err
}

var _ rbac.RoleSource = (*Service)(nil)

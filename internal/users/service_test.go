package users

import (
	"context"
	"errors"
	"io"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoirmm/spoirmm/internal/audit"
	"github.com/spoirmm/spoirmm/internal/platform/httpx"
	"github.com/spoirmm/spoirmm/internal/rbac"
	"github.com/spoirmm/spoirmm/internal/shared"
)

type memRepo struct {
	profiles map[string]*Profile
}

func newMemRepo() *memRepo {
	return &memRepo{profiles: make(map[string]*Profile)}
}

func (m *memRepo) Create(ctx context.Context, p Profile) error {
	for _, existing := range m.profiles {
		if existing.Email == p.Email {
			return httpx.ErrDuplicate
		}
	}
	cp := p
	m.profiles[p.ID] = &cp
	return nil
}

func (m *memRepo) Update(ctx context.Context, p Profile) error {
	existing, ok := m.profiles[p.ID]
	if !ok {
		return shared.ErrNotFound
	}
	existing.DisplayName = p.DisplayName
	existing.Organization = p.Organization
	existing.Roles = p.Roles
	existing.ProjectIDs = p.ProjectIDs
	existing.ProfileRole = ""
	existing.TopLevelRole = ""
	existing.CanManageUsers = nil
	return nil
}

func (m *memRepo) SetActive(ctx context.Context, userID string, active bool) error {
	p, ok := m.profiles[userID]
	if !ok {
		return shared.ErrNotFound
	}
	p.IsActive = active
	return nil
}

func (m *memRepo) Delete(ctx context.Context, userID string) error {
	if _, ok := m.profiles[userID]; !ok {
		return shared.ErrNotFound
	}
	delete(m.profiles, userID)
	return nil
}

func (m *memRepo) FindByID(ctx context.Context, userID string) (*Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) List(ctx context.Context, includeInactive bool) ([]Profile, error) {
	var out []Profile
	for _, p := range m.profiles {
		if p.IsActive || includeInactive {
			out = append(out, *p)
		}
	}
	return out, nil
}

type stubIdentities struct {
	provisioned  map[string]string
	removed      []string
	provisionErr error
	removeErr    error
}

func newStubIdentities() *stubIdentities {
	return &stubIdentities{provisioned: make(map[string]string)}
}

func (s *stubIdentities) Provision(ctx context.Context, userID, email string) (string, error) {
	if s.provisionErr != nil {
		return "", s.provisionErr
	}
	s.provisioned[userID] = email
	return "token-" + userID, nil
}

func (s *stubIdentities) Remove(ctx context.Context, userID string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.removed = append(s.removed, userID)
	return nil
}

type stubAuditor struct {
	entries []audit.Entry
}

func (s *stubAuditor) RecordBestEffort(ctx context.Context, entry audit.Entry) {
	s.entries = append(s.entries, entry)
}

func (s *stubAuditor) actions() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Action
	}
	return out
}

type stubQueue struct {
	cleanups []string
	emails   []string
}

func (s *stubQueue) EnqueueIdentityCleanup(ctx context.Context, userID string) error {
	s.cleanups = append(s.cleanups, userID)
	return nil
}

func (s *stubQueue) EnqueueSetupEmail(ctx context.Context, email, token string) error {
	s.emails = append(s.emails, email)
	return nil
}

type fixture struct {
	svc        *Service
	repo       *memRepo
	identities *stubIdentities
	auditor    *stubAuditor
	queue      *stubQueue
}

func newFixture() *fixture {
	f := &fixture{
		repo:       newMemRepo(),
		identities: newStubIdentities(),
		auditor:    &stubAuditor{},
		queue:      &stubQueue{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewService(logger, f.repo, f.identities, f.auditor, f.queue,
		rbac.NewResolver(nil), rbac.NewRoleCache(nil, 0))
	return f
}

func (f *fixture) seed(id, email string, roles ...string) {
	f.repo.profiles[id] = &Profile{ID: id, Email: email, DisplayName: email, IsActive: true, Roles: roles}
}

func TestCreateProvisionsIdentityAndAudits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	profile, err := f.svc.Create(ctx, "admin-1", CreateUserRequest{
		Email:       "jane@example.com",
		DisplayName: "Jane",
		Roles:       []string{"Viewer"},
	})
	require.NoError(t, err)
	assert.True(t, profile.IsActive)
	assert.Equal(t, "jane@example.com", f.identities.provisioned[profile.ID])
	assert.Equal(t, []string{"jane@example.com"}, f.queue.emails)
	assert.Equal(t, []string{audit.ActionUserCreated}, f.auditor.actions())
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), "admin-1", CreateUserRequest{
		Email:       "jane@example.com",
		DisplayName: "Jane",
		Roles:       []string{"Grand Vizier"},
	})
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, f.repo.profiles)
}

func TestCreateRollsBackProfileWhenProvisionFails(t *testing.T) {
	f := newFixture()
	f.identities.provisionErr = errors.New("identity store down")

	_, err := f.svc.Create(context.Background(), "admin-1", CreateUserRequest{
		Email:       "jane@example.com",
		DisplayName: "Jane",
		Roles:       []string{"Viewer"},
	})
	require.Error(t, err)
	assert.Empty(t, f.repo.profiles, "profile must not survive a failed provision")
	assert.Empty(t, f.auditor.entries)
}

func TestCreateDuplicateEmail(t *testing.T) {
	f := newFixture()
	f.seed("u1", "jane@example.com", "Viewer")

	_, err := f.svc.Create(context.Background(), "admin-1", CreateUserRequest{
		Email:       "jane@example.com",
		DisplayName: "Jane Again",
		Roles:       []string{"Viewer"},
	})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestDeleteCompletelyByAdmin(t *testing.T) {
	f := newFixture()
	f.seed("admin-1", "admin@example.com", "Admin")
	f.seed("u2", "victim@example.com", "Viewer")

	result, err := f.svc.DeleteCompletely(context.Background(), "admin-1", "u2")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "u2", result.DeletedUserID)
	assert.NotContains(t, f.repo.profiles, "u2")
	assert.Equal(t, []string{"u2"}, f.identities.removed)
	assert.Equal(t, []string{audit.ActionUserDeleted}, f.auditor.actions())
	assert.Empty(t, f.queue.cleanups)
}

func TestDeleteCompletelyRequiresAdmin(t *testing.T) {
	f := newFixture()
	f.seed("coord-1", "coord@example.com", "Risk Plan Coordinator")
	f.seed("u2", "victim@example.com", "Viewer")

	_, err := f.svc.DeleteCompletely(context.Background(), "coord-1", "u2")
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	assert.Contains(t, f.repo.profiles, "u2")
	assert.Empty(t, f.identities.removed)
}

func TestDeleteCompletelyRejectsAnonymous(t *testing.T) {
	f := newFixture()
	f.seed("u2", "victim@example.com", "Viewer")

	_, err := f.svc.DeleteCompletely(context.Background(), "", "u2")
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestDeleteCompletelyRejectsSelf(t *testing.T) {
	f := newFixture()
	f.seed("admin-1", "admin@example.com", "Admin")
	f.seed("viewer-1", "viewer@example.com", "Viewer")
	ctx := context.Background()

	_, err := f.svc.DeleteCompletely(ctx, "admin-1", "admin-1")
	assert.ErrorIs(t, err, httpx.ErrInvalidArgument)
	assert.Contains(t, f.repo.profiles, "admin-1")

	// The rejection holds for any role, not just admins, and takes
	// precedence over the permission check.
	_, err = f.svc.DeleteCompletely(ctx, "viewer-1", "viewer-1")
	assert.ErrorIs(t, err, httpx.ErrInvalidArgument)
	assert.NotErrorIs(t, err, httpx.ErrForbidden)
	assert.Contains(t, f.repo.profiles, "viewer-1")
}

func TestDeleteCompletelyMissingTarget(t *testing.T) {
	f := newFixture()
	f.seed("admin-1", "admin@example.com", "Admin")

	_, err := f.svc.DeleteCompletely(context.Background(), "admin-1", "ghost")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteCompletelySurvivesIdentityFailure(t *testing.T) {
	f := newFixture()
	f.seed("admin-1", "admin@example.com", "Admin")
	f.seed("u2", "victim@example.com", "Viewer")
	f.identities.removeErr = errors.New("identity store down")

	result, err := f.svc.DeleteCompletely(context.Background(), "admin-1", "u2")
	require.NoError(t, err, "identity failure must not fail the deletion")
	assert.True(t, result.Success)
	assert.NotContains(t, f.repo.profiles, "u2")
	assert.Equal(t, []string{"u2"}, f.queue.cleanups)
	assert.Equal(t, []string{audit.ActionUserAuthDeletionFailed, audit.ActionUserDeleted}, f.auditor.actions())
}

func TestDeactivateAndReactivate(t *testing.T) {
	f := newFixture()
	f.seed("u1", "jane@example.com", "Viewer")
	ctx := context.Background()

	require.NoError(t, f.svc.Deactivate(ctx, "admin-1", "u1"))
	assert.False(t, f.repo.profiles["u1"].IsActive)

	// Deactivating twice changes nothing and writes no second audit entry.
	require.NoError(t, f.svc.Deactivate(ctx, "admin-1", "u1"))

	require.NoError(t, f.svc.Reactivate(ctx, "admin-1", "u1"))
	assert.True(t, f.repo.profiles["u1"].IsActive)

	// Reactivating an active user is a no-op success.
	require.NoError(t, f.svc.Reactivate(ctx, "admin-1", "u1"))
	assert.Equal(t, []string{audit.ActionUserDeactivated, audit.ActionUserReactivated}, f.auditor.actions())
}

func TestRolesForUser(t *testing.T) {
	f := newFixture()
	f.seed("u1", "jane@example.com", "Risk Owner", "Viewer")
	ctx := context.Background()

	roles, err := f.svc.RolesForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []rbac.Role{rbac.RoleRiskOwner, rbac.RoleViewer}, roles)

	roles, err = f.svc.RolesForUser(ctx, "ghost")
	require.NoError(t, err, "a missing profile denies rather than errors")
	assert.Empty(t, roles)

	require.NoError(t, f.svc.Deactivate(ctx, "admin-1", "u1"))
	roles, err = f.svc.RolesForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, roles, "suspended users hold no effective roles")
}

func TestUpdateCanonicalisesRoleStorage(t *testing.T) {
	f := newFixture()
	manage := true
	f.repo.profiles["u1"] = &Profile{
		ID: "u1", Email: "jane@example.com", DisplayName: "Jane",
		IsActive: true, CanManageUsers: &manage,
	}

	updated, err := f.svc.Update(context.Background(), "admin-1", "u1", UpdateUserRequest{
		DisplayName: "Jane B",
		Roles:       []string{"Viewer"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Viewer"}, updated.Roles)
	assert.Nil(t, f.repo.profiles["u1"].CanManageUsers)
	assert.Equal(t, []string{audit.ActionUserUpdated}, f.auditor.actions())
}

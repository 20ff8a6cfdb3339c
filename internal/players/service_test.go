package players

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoirmm/spoirmm/internal/shared"
)

type mockRepository struct {
	byID      map[string]*Player
	byProject map[string][]string
	listErr   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		byID:      make(map[string]*Player),
		byProject: make(map[string][]string),
	}
}

func (m *mockRepository) ListByProject(ctx context.Context, projectID string) ([]Player, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var players []Player
	for _, id := range m.byProject[projectID] {
		players = append(players, *m.byID[id])
	}
	return players, nil
}

func (m *mockRepository) Get(ctx context.Context, id string) (*Player, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepository) Create(ctx context.Context, p Player) error {
	m.byID[p.ID] = &p
	m.byProject[p.ProjectID] = append(m.byProject[p.ProjectID], p.ID)
	return nil
}

func (m *mockRepository) Update(ctx context.Context, p Player) error {
	if _, ok := m.byID[p.ID]; !ok {
		return shared.ErrNotFound
	}
	m.byID[p.ID] = &p
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func TestCreateValidPlayer(t *testing.T) {
	svc := NewService(newMockRepository())

	player, err := svc.Create(context.Background(), "proj-1", "u1", CreatePlayerRequest{
		Name:   "Jane Doe",
		Type:   "Recipient",
		Role:   "Recipient of Benefit",
		Nature: "Individual",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, player.ID)
	assert.Equal(t, TypeRecipient, player.Type)
	assert.False(t, player.CreatedAt.IsZero())
}

func TestCreateRejectsInvalidCombination(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), "proj-1", "u1", CreatePlayerRequest{
		Name:   "Acme Corp",
		Type:   "Recipient",
		Role:   "Recipient of Benefit",
		Nature: "Organization",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "role")
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), "proj-1", "u1", CreatePlayerRequest{
		Name:   "Somebody",
		Type:   "Bystander",
		Role:   "Recipient of Benefit",
		Nature: "Individual",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "type")
}

func TestCreateRejectsDuplicate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, "proj-1", "u1", CreatePlayerRequest{
		Name:   "Acme Corp",
		Type:   "Provider",
		Role:   "Provider of Benefit",
		Nature: "Organization",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "proj-1", "u1", CreatePlayerRequest{
		Name:   "acme corp",
		Type:   "Provider",
		Role:   "Provider of Benefit",
		Nature: "Organization",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
}

func TestDuplicateScopedToProject(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, "proj-1", "u1", CreatePlayerRequest{
		Name: "Acme Corp", Type: "Provider", Role: "Provider of Benefit", Nature: "Organization",
	})
	require.NoError(t, err)

	// Same triple in a different project is fine.
	_, err = svc.Create(ctx, "proj-2", "u1", CreatePlayerRequest{
		Name: "Acme Corp", Type: "Provider", Role: "Provider of Benefit", Nature: "Organization",
	})
	assert.NoError(t, err)
}

func TestUpdateSameRecordIsNotItsOwnDuplicate(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	created, err := svc.Create(ctx, "proj-1", "u1", CreatePlayerRequest{
		Name: "Acme Corp", Type: "Provider", Role: "Provider of Benefit", Nature: "Organization",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdatePlayerRequest{
		Name: "ACME CORP", Type: "Provider", Role: "Provider of Benefit", Nature: "Organization",
		Notes: "renamed for branding",
	})
	require.NoError(t, err)
	assert.Equal(t, "ACME CORP", updated.Name)
}

func TestUpdateMissingPlayer(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Update(context.Background(), "ghost", UpdatePlayerRequest{
		Name: "X", Type: "Staff", Role: "Staff Member (Benefit Enabler)", Nature: "Individual",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDuplicateCheckFailurePropagates(t *testing.T) {
	repo := newMockRepository()
	repo.listErr = errors.New("pg down")
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), "proj-1", "u1", CreatePlayerRequest{
		Name: "Jane", Type: "Staff", Role: "Staff Member (Benefit Enabler)", Nature: "Individual",
	})
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr), "infrastructure failure must not masquerade as validation")
}

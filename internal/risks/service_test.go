package risks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoirmm/spoirmm/internal/platform/httpx"
	"github.com/spoirmm/spoirmm/internal/rbac"
	"github.com/spoirmm/spoirmm/internal/shared"
)

type memRepo struct {
	risks map[string]*Risk
}

func newMemRepo() *memRepo {
	return &memRepo{risks: make(map[string]*Risk)}
}

func (m *memRepo) Create(ctx context.Context, risk Risk) error {
	cp := risk
	m.risks[risk.ID] = &cp
	return nil
}

func (m *memRepo) Update(ctx context.Context, risk Risk) error {
	if _, ok := m.risks[risk.ID]; !ok {
		return shared.ErrNotFound
	}
	cp := risk
	m.risks[risk.ID] = &cp
	return nil
}

func (m *memRepo) Delete(ctx context.Context, riskID string) error {
	if _, ok := m.risks[riskID]; !ok {
		return shared.ErrNotFound
	}
	delete(m.risks, riskID)
	return nil
}

func (m *memRepo) FindByID(ctx context.Context, riskID string) (*Risk, error) {
	risk, ok := m.risks[riskID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *risk
	return &cp, nil
}

func (m *memRepo) ListByProject(ctx context.Context, projectID string) ([]Risk, error) {
	var out []Risk
	for _, risk := range m.risks {
		if risk.ProjectID == projectID {
			out = append(out, *risk)
		}
	}
	return out, nil
}

func TestRateBands(t *testing.T) {
	cases := []struct {
		likelihood  int
		consequence int
		score       int
		band        string
	}{
		{1, 1, 1, BandLow},
		{2, 2, 4, BandLow},
		{1, 5, 5, BandModerate},
		{3, 3, 9, BandModerate},
		{2, 5, 10, BandHigh},
		{3, 4, 12, BandHigh},
		{3, 5, 15, BandExtreme},
		{5, 5, 25, BandExtreme},
	}
	for _, tc := range cases {
		score, band := Rate(tc.likelihood, tc.consequence)
		assert.Equal(t, tc.score, score, "score %dx%d", tc.likelihood, tc.consequence)
		assert.Equal(t, tc.band, band, "band %dx%d", tc.likelihood, tc.consequence)
	}
}

func TestCreateDerivesRating(t *testing.T) {
	svc := NewService(newMemRepo())

	risk, err := svc.Create(context.Background(), "p1", "u1", CreateRiskRequest{
		Statement:   "Vendor fails to deliver cold-chain storage",
		Likelihood:  4,
		Consequence: 4,
		OwnerID:     "owner-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 16, risk.Score)
	assert.Equal(t, BandExtreme, risk.Band)
	assert.Equal(t, StatusOpen, risk.Status)
}

func seedRisk(repo *memRepo, id, ownerID string) {
	score, band := Rate(2, 3)
	repo.risks[id] = &Risk{
		ID: id, ProjectID: "p1", Statement: "Original statement",
		Likelihood: 2, Consequence: 3, Score: score, Band: band,
		OwnerID: ownerID, Status: StatusOpen,
	}
}

func validUpdate(ownerID string) UpdateRiskRequest {
	return UpdateRiskRequest{
		Statement:   "Updated statement",
		Likelihood:  3,
		Consequence: 5,
		OwnerID:     ownerID,
		Status:      StatusOpen,
	}
}

func TestUpdateWithRegisterWideEdit(t *testing.T) {
	repo := newMemRepo()
	seedRisk(repo, "r1", "owner-1")
	svc := NewService(repo)
	coordinator := Actor{ID: "coord-1", Roles: []rbac.Role{rbac.RoleRiskPlanCoordinator}}

	risk, err := svc.Update(context.Background(), coordinator, "r1", validUpdate("owner-1"))
	require.NoError(t, err)
	assert.Equal(t, "Updated statement", risk.Statement)
	assert.Equal(t, 15, risk.Score)
	assert.Equal(t, BandExtreme, risk.Band)
}

func TestEditAssignedOnlyCoversOwnedRisks(t *testing.T) {
	repo := newMemRepo()
	seedRisk(repo, "mine", "owner-1")
	seedRisk(repo, "theirs", "owner-2")
	svc := NewService(repo)
	owner := Actor{ID: "owner-1", Roles: []rbac.Role{rbac.RoleRiskOwner}}
	ctx := context.Background()

	_, err := svc.Update(ctx, owner, "mine", validUpdate("owner-1"))
	assert.NoError(t, err)

	_, err = svc.Update(ctx, owner, "theirs", validUpdate("owner-2"))
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	assert.Equal(t, "Original statement", repo.risks["theirs"].Statement)
}

func TestUpdateWithoutEditAccess(t *testing.T) {
	repo := newMemRepo()
	seedRisk(repo, "r1", "owner-1")
	svc := NewService(repo)
	viewer := Actor{ID: "viewer-1", Roles: []rbac.Role{rbac.RoleViewer}}

	_, err := svc.Update(context.Background(), viewer, "r1", validUpdate("owner-1"))
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestApprove(t *testing.T) {
	repo := newMemRepo()
	seedRisk(repo, "r1", "owner-1")
	svc := NewService(repo)
	ctx := context.Background()

	sponsor := Actor{ID: "sponsor-1", Roles: []rbac.Role{rbac.RoleRiskPlanSponsor}}
	risk, err := svc.Approve(ctx, sponsor, "r1")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, risk.Status)

	member := Actor{ID: "wg-1", Roles: []rbac.Role{rbac.RoleWorkingGroupMember}}
	_, err = svc.Approve(ctx, member, "r1")
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestApproveClosedRisk(t *testing.T) {
	repo := newMemRepo()
	seedRisk(repo, "r1", "owner-1")
	repo.risks["r1"].Status = StatusClosed
	svc := NewService(repo)
	sponsor := Actor{ID: "sponsor-1", Roles: []rbac.Role{rbac.RoleRiskPlanSponsor}}

	_, err := svc.Approve(context.Background(), sponsor, "r1")
	assert.ErrorIs(t, err, httpx.ErrInvalidArgument)
}

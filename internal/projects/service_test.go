package projects

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoirmm/spoirmm/internal/platform/httpx"
	"github.com/spoirmm/spoirmm/internal/shared"
)

type stubRepo struct {
	projects map[string]*Project
	players  int64
	issues   int64
	risks    int64
	groups   int64
	countErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{projects: make(map[string]*Project)}
}

func (s *stubRepo) Create(ctx context.Context, p Project) error {
	cp := p
	s.projects[p.ID] = &cp
	return nil
}

func (s *stubRepo) Update(ctx context.Context, p Project) error {
	if _, ok := s.projects[p.ID]; !ok {
		return shared.ErrNotFound
	}
	cp := p
	s.projects[p.ID] = &cp
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, projectID string) error {
	if _, ok := s.projects[projectID]; !ok {
		return shared.ErrNotFound
	}
	delete(s.projects, projectID)
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, projectID string) (*Project, error) {
	p, ok := s.projects[projectID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubRepo) List(ctx context.Context) ([]Project, error) {
	var out []Project
	for _, p := range s.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubRepo) CountPlayers(ctx context.Context, projectID string) (int64, error) {
	return s.players, s.countErr
}

func (s *stubRepo) CountOpenIssues(ctx context.Context, projectID string) (int64, error) {
	return s.issues, s.countErr
}

func (s *stubRepo) CountRisks(ctx context.Context, projectID string) (int64, error) {
	return s.risks, s.countErr
}

func (s *stubRepo) CountWorkgroups(ctx context.Context, projectID string) (int64, error) {
	return s.groups, s.countErr
}

func TestCreateStartsInDraft(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	project, err := svc.Create(context.Background(), "u1", CreateProjectRequest{
		Title:         "Clinic relocation",
		Organization:  "Northside Health",
		SponsorID:     "sponsor-1",
		CoordinatorID: "coord-1",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, project.Status)
	assert.Equal(t, "u1", project.CreatedBy)
	assert.Contains(t, repo.projects, project.ID)
}

func TestDashboardAggregatesCounts(t *testing.T) {
	repo := newStubRepo()
	repo.projects["p1"] = &Project{ID: "p1", Title: "Clinic relocation"}
	repo.players, repo.issues, repo.risks, repo.groups = 4, 2, 7, 1
	svc := NewService(repo)

	dash, err := svc.DashboardFor(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), dash.Players)
	assert.Equal(t, int64(2), dash.OpenIssues)
	assert.Equal(t, int64(7), dash.Risks)
	assert.Equal(t, int64(1), dash.Workgroups)
	assert.Equal(t, "Clinic relocation", dash.Project.Title)
}

func TestDashboardPropagatesCountFailure(t *testing.T) {
	repo := newStubRepo()
	repo.projects["p1"] = &Project{ID: "p1"}
	repo.countErr = errors.New("db down")
	svc := NewService(repo)

	_, err := svc.DashboardFor(context.Background(), "p1")
	assert.Error(t, err)
}

func TestDashboardMissingProject(t *testing.T) {
	svc := NewService(newStubRepo())

	_, err := svc.DashboardFor(context.Background(), "ghost")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

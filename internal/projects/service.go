package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spoirmm/spoirmm/internal/platform/httpx"
	"github.com/spoirmm/spoirmm/internal/shared"
)

// Service implements project planning operations.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Create stores a new plan project in draft status.
func (s *Service) Create(ctx context.Context, createdBy string, req CreateProjectRequest) (*Project, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	p := Project{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Organization:  req.Organization,
		SponsorID:     req.SponsorID,
		CoordinatorID: req.CoordinatorID,
		Status:        StatusDraft,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		CreatedBy:     createdBy,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update replaces the mutable project fields.
func (s *Service) Update(ctx context.Context, projectID string, req UpdateProjectRequest) (*Project, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	existing, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	existing.Title = req.Title
	existing.Organization = req.Organization
	existing.SponsorID = req.SponsorID
	existing.CoordinatorID = req.CoordinatorID
	existing.Status = req.Status
	existing.StartDate = req.StartDate
	existing.EndDate = req.EndDate
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, mapNotFound(err)
	}
	return existing, nil
}

// Delete removes a project and, via the schema's cascade, its registers.
func (s *Service) Delete(ctx context.Context, projectID string) error {
	return mapNotFound(s.repo.Delete(ctx, projectID))
}

// Get fetches a project.
func (s *Service) Get(ctx context.Context, projectID string) (*Project, error) {
	p, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return p, nil
}

// List returns all projects, newest first.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	return s.repo.List(ctx)
}

// DashboardFor aggregates the register counts of one project. The four counts
// are independent queries, fanned out concurrently.
func (s *Service) DashboardFor(ctx context.Context, projectID string) (*Dashboard, error) {
	project, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	dash := Dashboard{Project: project}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dash.Players, err = s.repo.CountPlayers(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		dash.OpenIssues, err = s.repo.CountOpenIssues(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		dash.Risks, err = s.repo.CountRisks(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		dash.Workgroups, err = s.repo.CountWorkgroups(gctx, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dash, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: project", httpx.ErrNotFound)
	}
	return err
}

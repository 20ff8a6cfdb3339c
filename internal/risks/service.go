package risks

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/spoirmm/spoirmm/internal/platform/httpx"
	"github.com/spoirmm/spoirmm/internal/rbac"
	"github.com/spoirmm/spoirmm/internal/shared"
)

// Actor identifies the caller and their resolved role set. Edit access
// depends on ownership, so the route gate alone is not enough here.
type Actor struct {
	ID    string
	Roles []rbac.Role
}

// Service implements risk register operations.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Create adds an open risk to a project's register.
func (s *Service) Create(ctx context.Context, projectID, createdBy string, req CreateRiskRequest) (*Risk, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	score, band := Rate(req.Likelihood, req.Consequence)
	risk := Risk{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Statement:   req.Statement,
		Likelihood:  req.Likelihood,
		Consequence: req.Consequence,
		Score:       score,
		Band:        band,
		OwnerID:     req.OwnerID,
		Treatment:   req.Treatment,
		Status:      StatusOpen,
		CreatedBy:   createdBy,
	}
	if err := s.repo.Create(ctx, risk); err != nil {
		return nil, err
	}
	return &risk, nil
}

// CreateFromIssue records a risk converted out of the issue register. The
// caller has already authorized the conversion.
func (s *Service) CreateFromIssue(ctx context.Context, projectID, issueID, statement, createdBy string) (*Risk, error) {
	score, band := Rate(1, 1)
	risk := Risk{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Statement:   statement,
		Likelihood:  1,
		Consequence: 1,
		Score:       score,
		Band:        band,
		OwnerID:     createdBy,
		Status:      StatusOpen,
		IssueID:     issueID,
		CreatedBy:   createdBy,
	}
	if err := s.repo.Create(ctx, risk); err != nil {
		return nil, err
	}
	return &risk, nil
}

// Update edits a risk. Holders of register-wide edit access may edit any
// risk; holders of edit_assigned may only edit risks they own.
func (s *Service) Update(ctx context.Context, actor Actor, riskID string, req UpdateRiskRequest) (*Risk, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	existing, err := s.repo.FindByID(ctx, riskID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if err := s.authorizeEdit(actor, existing); err != nil {
		return nil, err
	}

	existing.Statement = req.Statement
	existing.Likelihood = req.Likelihood
	existing.Consequence = req.Consequence
	existing.Score, existing.Band = Rate(req.Likelihood, req.Consequence)
	existing.OwnerID = req.OwnerID
	existing.Treatment = req.Treatment
	existing.Status = req.Status
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, mapNotFound(err)
	}
	return existing, nil
}

// Approve moves a risk to the accepted status.
func (s *Service) Approve(ctx context.Context, actor Actor, riskID string) (*Risk, error) {
	if !rbac.HasPermission(actor.Roles, rbac.Permission{Namespace: rbac.NamespaceRiskRegister, Scope: rbac.ScopeApprove}) {
		return nil, fmt.Errorf("%w: approval requires risk register approve access", httpx.ErrForbidden)
	}
	existing, err := s.repo.FindByID(ctx, riskID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if existing.Status == StatusClosed {
		return nil, fmt.Errorf("%w: a closed risk cannot be approved", httpx.ErrInvalidArgument)
	}
	existing.Status = StatusAccepted
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, mapNotFound(err)
	}
	return existing, nil
}

// Delete removes a risk from the register.
func (s *Service) Delete(ctx context.Context, riskID string) error {
	return mapNotFound(s.repo.Delete(ctx, riskID))
}

// Get fetches a risk.
func (s *Service) Get(ctx context.Context, riskID string) (*Risk, error) {
	risk, err := s.repo.FindByID(ctx, riskID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return risk, nil
}

// ListByProject returns a project's register ordered by score.
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]Risk, error) {
	return s.repo.ListByProject(ctx, projectID)
}

func (s *Service) authorizeEdit(actor Actor, risk *Risk) error {
	if rbac.HasPermission(actor.Roles, rbac.Permission{Namespace: rbac.NamespaceRiskRegister, Scope: rbac.ScopeEdit}) {
		return nil
	}
	if rbac.HasPermission(actor.Roles, rbac.Permission{Namespace: rbac.NamespaceRiskRegister, Scope: rbac.ScopeEditAssigned}) {
		if risk.OwnerID == actor.ID {
			return nil
		}
		return fmt.Errorf("%w: you may only edit risks assigned to you", httpx.ErrForbidden)
	}
	return fmt.Errorf("%w: risk register edit access required", httpx.ErrForbidden)
}

func mapNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: risk", httpx.ErrNotFound)
	}
	return err
}

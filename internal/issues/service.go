package issues

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/spoirmm/spoirmm/internal/platform/httpx"
	"github.com/spoirmm/spoirmm/internal/risks"
	"github.com/spoirmm/spoirmm/internal/shared"
)

// RiskCreator records a risk produced by an issue conversion.
type RiskCreator interface {
	CreateFromIssue(ctx context.Context, projectID, issueID, statement, createdBy string) (*risks.Risk, error)
}

// Service implements issue register operations.
type Service struct {
	repo     RepositoryPort
	risks    RiskCreator
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo RepositoryPort, riskCreator RiskCreator) *Service {
	return &Service{repo: repo, risks: riskCreator, validate: validator.New()}
}

// Create raises a new open issue.
func (s *Service) Create(ctx context.Context, projectID, raisedBy string, req CreateIssueRequest) (*Issue, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	issue := Issue{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Description: req.Description,
		RaisedBy:    raisedBy,
		Status:      StatusOpen,
	}
	if err := s.repo.Create(ctx, issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// Update edits an issue's description and status. Terminal issues are frozen.
func (s *Service) Update(ctx context.Context, issueID string, req UpdateIssueRequest) (*Issue, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	existing, err := s.repo.FindByID(ctx, issueID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if existing.Status == StatusConverted {
		return nil, fmt.Errorf("%w: a converted issue can no longer be edited", httpx.ErrInvalidArgument)
	}
	existing.Description = req.Description
	existing.Status = req.Status
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, mapNotFound(err)
	}
	return existing, nil
}

// Convert turns an accepted issue into a risk register entry. The issue moves
// to the converted status and keeps a reference to the new risk.
func (s *Service) Convert(ctx context.Context, issueID, actorID string) (*Issue, error) {
	existing, err := s.repo.FindByID(ctx, issueID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	switch existing.Status {
	case StatusConverted:
		return nil, fmt.Errorf("%w: issue is already converted", httpx.ErrInvalidArgument)
	case StatusClosed:
		return nil, fmt.Errorf("%w: a closed issue cannot be converted", httpx.ErrInvalidArgument)
	case StatusAccepted:
	default:
		return nil, fmt.Errorf("%w: only accepted issues can be converted", httpx.ErrInvalidArgument)
	}

	risk, err := s.risks.CreateFromIssue(ctx, existing.ProjectID, existing.ID, existing.Description, actorID)
	if err != nil {
		return nil, fmt.Errorf("convert issue: %w", err)
	}
	existing.Status = StatusConverted
	existing.RiskID = risk.ID
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, mapNotFound(err)
	}
	return existing, nil
}

// Delete removes an issue from the register.
func (s *Service) Delete(ctx context.Context, issueID string) error {
	return mapNotFound(s.repo.Delete(ctx, issueID))
}

// Get fetches an issue.
func (s *Service) Get(ctx context.Context, issueID string) (*Issue, error) {
	issue, err := s.repo.FindByID(ctx, issueID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return issue, nil
}

// ListByProject returns a project's issues, newest first.
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]Issue, error) {
	return s.repo.ListByProject(ctx, projectID)
}

func mapNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: issue", httpx.ErrNotFound)
	}
	return err
}

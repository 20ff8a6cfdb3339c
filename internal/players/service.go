package players

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidationError carries field-level validation messages. It is recoverable:
// the submission is blocked, the user corrects the fields and resubmits.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "player validation failed"
}

// RepositoryPort defines data access methods for players.
type RepositoryPort interface {
	ListByProject(ctx context.Context, projectID string) ([]Player, error)
	Get(ctx context.Context, id string) (*Player, error)
	Create(ctx context.Context, p Player) error
	Update(ctx context.Context, p Player) error
	Delete(ctx context.Context, id string) error
}

// Service handles stakeholder registry business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreatePlayerRequest carries a new stakeholder submission.
type CreatePlayerRequest struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Type         string   `json:"type" validate:"required"`
	Role         string   `json:"role" validate:"required"`
	Nature       string   `json:"nature" validate:"required"`
	Relationship string   `json:"relationship,omitempty" validate:"max=500"`
	Notes        string   `json:"notes,omitempty"`
	RiskRefs     []string `json:"risk_refs,omitempty"`
}

// UpdatePlayerRequest mirrors CreatePlayerRequest for edits.
type UpdatePlayerRequest struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Type         string   `json:"type" validate:"required"`
	Role         string   `json:"role" validate:"required"`
	Nature       string   `json:"nature" validate:"required"`
	Relationship string   `json:"relationship,omitempty" validate:"max=500"`
	Notes        string   `json:"notes,omitempty"`
	RiskRefs     []string `json:"risk_refs,omitempty"`
}

// ListByProject returns every stakeholder registered for a project.
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]Player, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// Get fetches a single stakeholder.
func (s *Service) Get(ctx context.Context, id string) (*Player, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and stores a new stakeholder record.
func (s *Service) Create(ctx context.Context, projectID, createdBy string, req CreatePlayerRequest) (*Player, error) {
	candidate := Player{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		Name:         strings.TrimSpace(req.Name),
		Relationship: strings.TrimSpace(req.Relationship),
		Notes:        req.Notes,
		RiskRefs:     req.RiskRefs,
		CreatedBy:    createdBy,
	}
	if err := s.resolveAndValidate(ctx, &candidate, req.Type, req.Role, req.Nature); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}
	return &candidate, nil
}

// Update validates and stores edits to an existing stakeholder record.
func (s *Service) Update(ctx context.Context, id string, req UpdatePlayerRequest) (*Player, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}

	candidate := *existing
	candidate.Name = strings.TrimSpace(req.Name)
	candidate.Relationship = strings.TrimSpace(req.Relationship)
	candidate.Notes = req.Notes
	candidate.RiskRefs = req.RiskRefs
	if err := s.resolveAndValidate(ctx, &candidate, req.Type, req.Role, req.Nature); err != nil {
		return nil, err
	}

	candidate.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, candidate); err != nil {
		return nil, fmt.Errorf("update player: %w", err)
	}
	return &candidate, nil
}

// Delete removes a stakeholder record.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// resolveAndValidate parses the enum fields, checks the combination whitelist
// and the project-wide uniqueness rule, and fills the candidate in place. All
// failures come back as a ValidationError, never a panic.
func (s *Service) resolveAndValidate(ctx context.Context, candidate *Player, rawType, role, rawNature string) error {
	fields := make(map[string]string)

	if candidate.Name == "" {
		fields["name"] = "name is required"
	}

	playerType, typeOK := ParseType(rawType)
	if !typeOK {
		fields["type"] = "unknown player type"
	}
	nature, natureOK := ParseNature(rawNature)
	if !natureOK {
		fields["nature"] = "nature must be Individual or Organization"
	}

	if typeOK && natureOK {
		if !ValidCombination(playerType, role, nature) {
			fields["role"] = fmt.Sprintf("%q / %q is not a valid combination for type %s", role, nature, playerType)
		}
	}

	if len(fields) == 0 {
		candidate.Type = playerType
		candidate.Role = role
		candidate.Nature = nature

		existing, err := s.repo.ListByProject(ctx, candidate.ProjectID)
		if err != nil {
			return fmt.Errorf("list players for duplicate check: %w", err)
		}
		if IsDuplicate(*candidate, existing) {
			fields["name"] = "a player with this name, role and nature already exists"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

package workgroups

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/spoirmm/spoirmm/internal/platform/httpx"
	"github.com/spoirmm/spoirmm/internal/shared"
)

// Service implements working group operations.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// CreateGroup adds a working group to a project.
func (s *Service) CreateGroup(ctx context.Context, projectID string, req SaveGroupRequest) (*Group, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	g := Group{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
	}
	if err := s.repo.CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateGroup replaces a group's name and membership.
func (s *Service) UpdateGroup(ctx context.Context, groupID string, req SaveGroupRequest) (*Group, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	existing, err := s.repo.FindGroup(ctx, groupID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	existing.Name = req.Name
	existing.MemberIDs = req.MemberIDs
	if err := s.repo.UpdateGroup(ctx, *existing); err != nil {
		return nil, mapNotFound(err)
	}
	return existing, nil
}

// DeleteGroup removes a group and its meetings.
func (s *Service) DeleteGroup(ctx context.Context, groupID string) error {
	return mapNotFound(s.repo.DeleteGroup(ctx, groupID))
}

// Group fetches one group.
func (s *Service) Group(ctx context.Context, groupID string) (*Group, error) {
	g, err := s.repo.FindGroup(ctx, groupID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return g, nil
}

// ListGroups returns a project's groups.
func (s *Service) ListGroups(ctx context.Context, projectID string) ([]Group, error) {
	return s.repo.ListGroups(ctx, projectID)
}

// ScheduleMeeting adds a meeting to a group's calendar.
func (s *Service) ScheduleMeeting(ctx context.Context, groupID string, req ScheduleMeetingRequest) (*Meeting, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	if _, err := s.repo.FindGroup(ctx, groupID); err != nil {
		return nil, mapNotFound(err)
	}
	m := Meeting{
		ID:              uuid.NewString(),
		GroupID:         groupID,
		StartsAt:        req.StartsAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		Agenda:          req.Agenda,
	}
	if err := s.repo.CreateMeeting(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMeetings returns a group's meetings in start order.
func (s *Service) ListMeetings(ctx context.Context, groupID string) ([]Meeting, error) {
	if _, err := s.repo.FindGroup(ctx, groupID); err != nil {
		return nil, mapNotFound(err)
	}
	return s.repo.ListMeetings(ctx, groupID)
}

func mapNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: working group", httpx.ErrNotFound)
	}
	return err
}

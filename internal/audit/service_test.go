package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	entries []Entry
	gotOff  int
	gotLim  int
}

func (s *stubRepo) TimelineWindow(ctx context.Context, filters TimelineFilters, offset, limit int) ([]Entry, error) {
	s.gotOff = offset
	s.gotLim = limit
	if offset >= len(s.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.entries) {
		end = len(s.entries)
	}
	return s.entries[offset:end], nil
}

func makeEntries(n int) []Entry {
	entries := make([]Entry, n)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range entries {
		entries[i] = Entry{
			ID:           fmt.Sprintf("e%d", i),
			Action:       ActionUserUpdated,
			TargetUserID: "u1",
			PerformedBy:  "admin",
			At:           base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return entries
}

func TestTimelineDefaultsAndNextPage(t *testing.T) {
	repo := &stubRepo{entries: makeEntries(25)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 20)
	assert.Equal(t, 21, repo.gotLim, "fetches one extra row to detect next page")
	assert.True(t, result.Paging.HasNext)
	assert.Equal(t, 2, result.Paging.NextPage)
	assert.Zero(t, result.Paging.PrevPage)
}

func TestTimelineLastPage(t *testing.T) {
	repo := &stubRepo{entries: makeEntries(25)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 2})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 5)
	assert.False(t, result.Paging.HasNext)
	assert.Equal(t, 1, result.Paging.PrevPage)
}

func TestTimelineCapsPageSize(t *testing.T) {
	repo := &stubRepo{entries: makeEntries(120)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, result.Paging.PageSize)
	assert.Len(t, result.Rows, 50)
}

package cronjob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	projectdomain "github.com/listly/listly-backend/internal/projects/domain"
)

type fakeLister struct {
	cutoff time.Time
	out    []projectdomain.Project
	err    error
}

func (f *fakeLister) ListStale(_ context.Context, cutoff time.Time) ([]projectdomain.Project, error) {
	f.cutoff = cutoff
	return f.out, f.err
}

type fakeSweeper struct {
	got []projectdomain.Project
}

func (f *fakeSweeper) SweepStale(_ context.Context, stale []projectdomain.Project) int {
	f.got = stale
	return len(stale)
}

func TestScheduler_RunOnce(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	lister := &fakeLister{out: []projectdomain.Project{{ID: "a", Status: projectdomain.StatusRunning}}}
	sweeper := &fakeSweeper{}

	s := NewScheduler(lister, sweeper, 10*time.Minute)
	s.now = func() time.Time { return now }

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, now.Add(-10*time.Minute), lister.cutoff)
	assert.Len(t, sweeper.got, 1)
}

func TestScheduler_RunOnce_Nothing(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := NewScheduler(&fakeLister{}, sweeper, 0)

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Nil(t, sweeper.got)
	assert.Equal(t, 10*time.Minute, s.staleAfter)
}

func TestScheduler_RunOnce_ListError(t *testing.T) {
	s := NewScheduler(&fakeLister{err: errors.New("db down")}, &fakeSweeper{}, time.Minute)

	_, err := s.RunOnce(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(&fakeLister{}, &fakeSweeper{}, time.Minute)

	assert.Error(t, s.Start("not a schedule"))
	require.NoError(t, s.Start(""))
	s.Stop()
}

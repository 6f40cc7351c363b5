package submission_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/config"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/submission"
)

func TestRateLimiter_QuotaInsideWindow(t *testing.T) {
	t.Parallel()

	r := submission.NewRateLimiter(7, 5, config.Submitters{})
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	history := make([]time.Time, 5)
	for i := range history {
		history[i] = now.Add(-6 * 24 * time.Hour)
	}

	ok, reason := r.Allowed("org", history, now)
	assert.False(t, ok)
	assert.Contains(t, reason, "organization org reached the limit of 5 submissions")

	ok, _ = r.Allowed("org", history[:4], now)
	assert.True(t, ok)
}

func TestRateLimiter_OldSubmissionsExpire(t *testing.T) {
	t.Parallel()

	r := submission.NewRateLimiter(7, 5, config.Submitters{})
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	history := []time.Time{
		now.Add(-8 * 24 * time.Hour),
		now.Add(-8 * 24 * time.Hour),
		now.Add(-6 * 24 * time.Hour),
		now.Add(-6 * 24 * time.Hour),
		now.Add(-6 * 24 * time.Hour),
		now.Add(-6 * 24 * time.Hour),
	}

	ok, _ := r.Allowed("org", history, now)
	assert.True(t, ok)
}

func TestRateLimiter_WindowBoundaryDoesNotCount(t *testing.T) {
	t.Parallel()

	r := submission.NewRateLimiter(7, 1, config.Submitters{})
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	// Exactly seven days old sits on the cutoff and is excluded.
	ok, _ := r.Allowed("org", []time.Time{now.Add(-7 * 24 * time.Hour)}, now)
	assert.True(t, ok)

	ok, _ = r.Allowed("org", []time.Time{now.Add(-7*24*time.Hour + time.Second)}, now)
	assert.False(t, ok)
}

func TestRateLimiter_CuratedBypass(t *testing.T) {
	t.Parallel()

	r := submission.NewRateLimiter(7, 1, config.Submitters{Curated: []string{"trusted-org"}})
	now := time.Now()

	history := []time.Time{now.Add(-time.Hour), now.Add(-2 * time.Hour)}

	ok, _ := r.Allowed("trusted-org", history, now)
	assert.True(t, ok)

	ok, _ = r.Allowed("other-org", history, now)
	assert.False(t, ok)
}

func TestRateLimiter_HigherLimitDoublesQuota(t *testing.T) {
	t.Parallel()

	r := submission.NewRateLimiter(7, 5, config.Submitters{HigherLimit: []string{"busy-org"}})
	now := time.Now()

	history := make([]time.Time, 9)
	for i := range history {
		history[i] = now.Add(-time.Hour)
	}

	ok, _ := r.Allowed("busy-org", history, now)
	assert.True(t, ok)

	ok, reason := r.Allowed("busy-org", append(history, now.Add(-time.Hour)), now)
	assert.False(t, ok)
	assert.Contains(t, reason, "limit of 10 submissions")
}

func TestRateLimiter_DefaultsOnZeroValues(t *testing.T) {
	t.Parallel()

	r := submission.NewRateLimiter(0, 0, config.Submitters{})
	now := time.Now()

	history := make([]time.Time, submission.DefQuota)
	for i := range history {
		history[i] = now.Add(-time.Hour)
	}

	ok, _ := r.Allowed("org", history, now)
	assert.False(t, ok)

	ok, _ = r.Allowed("org", history[:submission.DefQuota-1], now)
	assert.True(t, ok)
}

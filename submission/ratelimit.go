// Package submission validates new evaluation requests and enforces the
// submission quota.
package submission

import (
	"fmt"
	"time"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/config"
)

const (
	DefWindowDays = 7
	DefQuota      = 5
)

// RateLimiter counts an organization's submissions inside a trailing window.
// It is a pure function of the history passed in; curated identities always
// pass and higher-limit identities get double the quota.
type RateLimiter struct {
	windowDays int
	quota      int
	curated    map[string]struct{}
	higher     map[string]struct{}
}

func NewRateLimiter(windowDays, quota int, cfg config.Submitters) *RateLimiter {
	if windowDays <= 0 {
		windowDays = DefWindowDays
	}
	if quota <= 0 {
		quota = DefQuota
	}
	curated := make(map[string]struct{}, len(cfg.Curated))
	for _, id := range cfg.Curated {
		curated[id] = struct{}{}
	}
	higher := make(map[string]struct{}, len(cfg.HigherLimit))
	for _, id := range cfg.HigherLimit {
		higher[id] = struct{}{}
	}

	return &RateLimiter{
		windowDays: windowDays,
		quota:      quota,
		curated:    curated,
		higher:     higher,
	}
}

// Allowed reports whether org may submit now given its submission history.
// A submission exactly at the window boundary does not count.
func (r *RateLimiter) Allowed(org string, history []time.Time, now time.Time) (bool, string) {
	if _, ok := r.curated[org]; ok {
		return true, ""
	}

	quota := r.quota
	if _, ok := r.higher[org]; ok {
		quota *= 2
	}

	cutoff := now.Add(-time.Duration(r.windowDays) * 24 * time.Hour)
	count := 0
	for _, t := range history {
		if t.After(cutoff) {
			count++
		}
	}

	if count >= quota {
		return false, fmt.Sprintf(
			"organization %s reached the limit of %d submissions in the last %d days (%d submitted), please try again later",
			org, quota, r.windowDays, count)
	}

	return true, ""
}

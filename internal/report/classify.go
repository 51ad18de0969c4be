// Package report turns a user's fetched issues into the weekly status
// message: classification into buckets, cooldown-aware filtering, text
// rendering and the short-lived cache in front of it all.
package report

import (
	"time"

	"github.com/teampulse/pulse-service/internal/domain"
)

// Build classifies issues into the four report buckets for the half-open
// period [periodStart, periodEnd). Rules are evaluated in order and the
// first match wins, so every issue lands in exactly one bucket:
//
//  1. completed within the period
//  2. started within the period
//  3. updated within the period
//  4. everything else, which is the open-but-untouched backlog
//
// During a cooldown the backlog bucket drops issues that belong to a
// project: cooldown weeks are for maintenance work, not project work. The
// other three buckets are never filtered.
func Build(issues []domain.Issue, periodStart, periodEnd time.Time, inCooldown bool) *domain.Report {
	r := &domain.Report{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}

	for _, issue := range issues {
		switch {
		case issue.CompletedAt != nil && within(*issue.CompletedAt, periodStart, periodEnd):
			r.Completed = append(r.Completed, issue)
		case issue.StartedAt != nil && within(*issue.StartedAt, periodStart, periodEnd):
			r.Started = append(r.Started, issue)
		case within(issue.UpdatedAt, periodStart, periodEnd):
			r.Updated = append(r.Updated, issue)
		default:
			if inCooldown && issue.Project != nil {
				continue
			}
			r.OtherOpen = append(r.OtherOpen, issue)
		}
	}

	return r
}

// within reports whether t falls in the half-open interval [start, end).
func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

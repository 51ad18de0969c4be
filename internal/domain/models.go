package domain

import (
	"time"
)

// StateType is the workflow state category of a tracker issue.
type StateType string

const (
	StateBacklog   StateType = "backlog"
	StateStarted   StateType = "started"
	StateCompleted StateType = "completed"
	StateCanceled  StateType = "canceled"
)

// Priority follows the tracker's ordinal scale: 0 is "no priority",
// 1 is the most urgent, 4 the least.
type Priority int

const (
	PriorityNone   Priority = 0
	PriorityUrgent Priority = 1
	PriorityHigh   Priority = 2
	PriorityMedium Priority = 3
	PriorityLow    Priority = 4
)

type ProjectRef struct {
	ID   string
	Name string
}

type TeamRef struct {
	ID   string
	Key  string
	Name string
}

// Issue is an immutable snapshot of a tracker work item fetched per
// report cycle. It has no local identity beyond the remote ID.
type Issue struct {
	ID          string
	Identifier  string
	Title       string
	Priority    Priority
	Estimate    *float64
	StateType   StateType
	CreatedAt   time.Time
	UpdatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	CanceledAt  *time.Time
	Project     *ProjectRef
	Team        *TeamRef
}

// Open reports whether the issue is neither completed nor canceled.
func (i Issue) Open() bool {
	return i.StateType != StateCompleted && i.StateType != StateCanceled
}

// TrackerUser is an issue-tracker account.
type TrackerUser struct {
	ID          string
	Name        string
	DisplayName string
	Email       string
	Active      bool
}

// Organization holds tracker workspace metadata used to build deep links.
type Organization struct {
	URLKey string
	Name   string
}

// OrgMember is a source-hosting organization member used to enrich user
// links with a code-review identity.
type OrgMember struct {
	Login string
	Email string
	Name  string
}

// MessagingUser is a chat workspace member as returned by the messaging
// platform's user listing.
type MessagingUser struct {
	ID          string
	Name        string
	DisplayName string
	Email       string
	IsBot       bool
	Deleted     bool
}

// Report holds one user's classified issues for a reporting period.
// The period is half-open: [PeriodStart, PeriodEnd).
type Report struct {
	DisplayName string
	PeriodStart time.Time
	PeriodEnd   time.Time

	Completed []Issue
	Started   []Issue
	Updated   []Issue
	OtherOpen []Issue

	// Linking metadata for deep links into the tracker. Either may be
	// empty, in which case aggregated tiers render without links.
	OrgURLKey     string
	TrackerUserID string
}

// TotalIssues is the number of issues across all four buckets.
func (r *Report) TotalIssues() int {
	return len(r.Completed) + len(r.Started) + len(r.Updated) + len(r.OtherOpen)
}

// CooldownSchedule is the stored (start, duration) pair a user's
// cooldown status is derived from.
type CooldownSchedule struct {
	UserID        string    `db:"user_id"`
	NextStart     time.Time `db:"next_start"`
	DurationWeeks int       `db:"duration_weeks"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// UserLink joins one person's identities across the messaging platform,
// the tracker, and the source-hosting platform. The messaging user ID
// is the primary key; tracker and source-hosting identities are filled
// in by the sync pipeline when a match is found.
type UserLink struct {
	SlackUserID  string    `db:"slack_user_id"`
	Email        string    `db:"email"`
	DisplayName  string    `db:"display_name"`
	LinearUserID *string   `db:"linear_user_id"`
	GitHubLogin  *string   `db:"github_login"`
	OptedIn      bool      `db:"opted_in"`
	Active       bool      `db:"active"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Skip reasons recorded on delivery results. Skips are a first-class
// outcome, never inferred by subtraction from the totals.
const (
	SkipReasonOptedOut   = "recipient opted out"
	SkipReasonNoIdentity = "no tracker identity"
)

// DeliveryResult is the outcome of one recipient in a delivery run.
type DeliveryResult struct {
	UserID     string `json:"user_id"`
	Success    bool   `json:"success"`
	Skipped    bool   `json:"skipped"`
	SkipReason string `json:"skip_reason,omitempty"`
	Error      string `json:"error,omitempty"`
	IssueCount int    `json:"issue_count"`
	InCooldown bool   `json:"in_cooldown"`
}

// DeliverySummary aggregates a delivery run.
// Invariant: Total = Succeeded + Failed + Skipped.
type DeliverySummary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// SyncSummary aggregates a user-sync run.
type SyncSummary struct {
	MessagingUsers int `json:"messaging_users"`
	TrackerUsers   int `json:"tracker_users"`
	Created        int `json:"created"`
	Updated        int `json:"updated"`
	Deactivated    int `json:"deactivated"`
	Unmatched      int `json:"unmatched"`
}

// DeliveryLogEntry records one delivery attempt for auditing.
type DeliveryLogEntry struct {
	ID          int64     `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Success     bool      `db:"success" json:"success"`
	Skipped     bool      `db:"skipped" json:"skipped"`
	Detail      string    `db:"detail" json:"detail,omitempty"`
	IssueCount  int       `db:"issue_count" json:"issue_count"`
	InCooldown  bool      `db:"in_cooldown" json:"in_cooldown"`
	DeliveredAt time.Time `db:"delivered_at" json:"delivered_at"`
}

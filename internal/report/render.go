package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/teampulse/pulse-service/internal/cooldown"
	"github.com/teampulse/pulse-service/internal/domain"
)

const (
	// aggregationThreshold is the bucket size above which the per-project
	// listing collapses into the priority breakdown.
	aggregationThreshold = 10

	noProjectGroup = "No project"

	congratsMessage = "🎉 All clear! No tracked activity this week. Enjoy the breathing room!"
)

// Render produces the newline-joined message body for one report: cooldown
// banner when active, greeting, reporting period, then the non-empty
// buckets. Dates are always formatted in UTC so the period never shifts by
// a day depending on where the process runs.
func Render(r *domain.Report, status cooldown.Status) string {
	var lines []string

	if status.InCooldown {
		lines = append(lines, FormatCooldownBanner(status.WeekNumber, status.TotalWeeks, status.EndDate), "")
	}

	lines = append(lines, greeting(r.DisplayName))
	lines = append(lines, fmt.Sprintf("Reporting period: %s to %s (UTC)", formatDate(r.PeriodStart), formatDate(r.PeriodEnd)))

	if r.TotalIssues() == 0 {
		lines = append(lines, "", congratsMessage)
		return strings.Join(lines, "\n")
	}

	lines = appendBucket(lines, r, "✅ Completed this week", r.Completed, false)
	lines = appendBucket(lines, r, "🚀 Started this week", r.Started, false)
	lines = appendBucket(lines, r, "✏️ Updated this week", r.Updated, false)
	lines = appendBucket(lines, r, "📋 Other open issues", r.OtherOpen, true)

	return strings.Join(lines, "\n")
}

// FormatCooldownBanner renders the header line shown on top of a report
// while the recipient's maintenance window is active.
func FormatCooldownBanner(week, totalWeeks int, endDate time.Time) string {
	return fmt.Sprintf("❄️ COOLDOWN MODE ACTIVE: Week %d of %d, ends %s", week, totalWeeks, formatDate(endDate))
}

func greeting(displayName string) string {
	if displayName == "" {
		return "Hi! Here is your weekly status report."
	}

	return fmt.Sprintf("Hi %s! Here is your weekly status report.", displayName)
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// appendBucket renders one bucket if it is non-empty. Small buckets get the
// full per-project listing; buckets over the threshold, and the open
// backlog regardless of size, get the aggregated priority breakdown.
func appendBucket(lines []string, r *domain.Report, header string, issues []domain.Issue, alwaysAggregate bool) []string {
	if len(issues) == 0 {
		return lines
	}

	lines = append(lines, "", fmt.Sprintf("%s (%d)", header, len(issues)))

	if alwaysAggregate || len(issues) > aggregationThreshold {
		return appendPriorityBreakdown(lines, r, issues)
	}

	return appendProjectListing(lines, issues)
}

func appendProjectListing(lines []string, issues []domain.Issue) []string {
	groups := make(map[string][]domain.Issue)
	for _, issue := range issues {
		name := noProjectGroup
		if issue.Project != nil {
			name = issue.Project.Name
		}
		groups[name] = append(groups[name], issue)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}

	// Alphabetical, with the project-less group pinned to the bottom.
	sort.Slice(names, func(i, j int) bool {
		if names[i] == noProjectGroup {
			return false
		}
		if names[j] == noProjectGroup {
			return true
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  %s:", name))
		for _, issue := range groups[name] {
			lines = append(lines, "    "+issueLine(issue))
		}
	}

	return lines
}

func issueLine(issue domain.Issue) string {
	line := fmt.Sprintf("%s - %s", issue.Identifier, issue.Title)

	if emoji := priorityEmoji(issue.Priority); emoji != "" {
		line += " " + emoji
	}
	if issue.Estimate != nil {
		line += fmt.Sprintf(" [%s]", strconv.FormatFloat(*issue.Estimate, 'f', -1, 64))
	}

	return line
}

var priorityTiers = []struct {
	priority domain.Priority
	label    string
}{
	{domain.PriorityUrgent, "Urgent"},
	{domain.PriorityHigh, "High"},
	{domain.PriorityMedium, "Medium"},
	{domain.PriorityLow, "Low"},
	{domain.PriorityNone, "None"},
}

func appendPriorityBreakdown(lines []string, r *domain.Report, issues []domain.Issue) []string {
	counts := make(map[domain.Priority]int)
	for _, issue := range issues {
		p := issue.Priority
		if p < domain.PriorityNone || p > domain.PriorityLow {
			p = domain.PriorityNone
		}
		counts[p]++
	}

	for _, tier := range priorityTiers {
		count := counts[tier.priority]
		if count == 0 {
			continue
		}

		label := tier.label
		if emoji := priorityEmoji(tier.priority); emoji != "" {
			label = emoji + " " + label
		}

		line := fmt.Sprintf("  %s: %d", label, count)
		if link := searchLink(r, tier.priority); link != "" {
			line += fmt.Sprintf(" (<%s|view>)", link)
		}

		lines = append(lines, line)
	}

	return lines
}

// searchLink builds a deep link into the tracker filtered to the user's
// issues at one priority. Requires both workspace and user linking
// metadata; without them the breakdown renders as plain counts.
func searchLink(r *domain.Report, priority domain.Priority) string {
	if r.OrgURLKey == "" || r.TrackerUserID == "" {
		return ""
	}

	return fmt.Sprintf(
		"https://linear.app/%s/issues?assignee=%s&priority=%d",
		r.OrgURLKey, r.TrackerUserID, priority,
	)
}

func priorityEmoji(p domain.Priority) string {
	switch p {
	case domain.PriorityUrgent:
		return "🔴"
	case domain.PriorityHigh:
		return "🟠"
	case domain.PriorityMedium:
		return "🟡"
	case domain.PriorityLow:
		return "🟢"
	default:
		return ""
	}
}

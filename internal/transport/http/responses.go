package http

import (
	"github.com/teampulse/pulse-service/internal/cooldown"
	"github.com/teampulse/pulse-service/internal/domain"
	"github.com/teampulse/pulse-service/internal/report"
)

const dateLayout = "2006-01-02"

type previewResponse struct {
	UserID      string `json:"user_id"`
	Report      string `json:"report"`
	IssueCount  int    `json:"issue_count"`
	InCooldown  bool   `json:"in_cooldown"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

func toPreviewResponse(userID string, result *report.Result) previewResponse {
	return previewResponse{
		UserID:      userID,
		Report:      result.Rendered,
		IssueCount:  result.IssueCount,
		InCooldown:  result.Cooldown.InCooldown,
		PeriodStart: result.Report.PeriodStart.UTC().Format(dateLayout),
		PeriodEnd:   result.Report.PeriodEnd.UTC().Format(dateLayout),
	}
}

type runResponse struct {
	Summary *domain.DeliverySummary `json:"summary"`
	Results []domain.DeliveryResult `json:"results"`
}

type scheduleResponse struct {
	UserID        string `json:"user_id"`
	NextStart     string `json:"next_start"`
	DurationWeeks int    `json:"duration_weeks"`
}

func toScheduleResponse(schedule *domain.CooldownSchedule) scheduleResponse {
	return scheduleResponse{
		UserID:        schedule.UserID,
		NextStart:     schedule.NextStart.UTC().Format(dateLayout),
		DurationWeeks: schedule.DurationWeeks,
	}
}

type cooldownStatusResponse struct {
	InCooldown bool   `json:"in_cooldown"`
	WeekNumber int    `json:"week_number,omitempty"`
	TotalWeeks int    `json:"total_weeks,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
}

type cooldownResponse struct {
	scheduleResponse
	Status cooldownStatusResponse `json:"status"`
}

func toCooldownResponse(schedule *domain.CooldownSchedule, status cooldown.Status) cooldownResponse {
	resp := cooldownResponse{
		scheduleResponse: toScheduleResponse(schedule),
		Status:           cooldownStatusResponse{InCooldown: status.InCooldown},
	}

	if status.InCooldown {
		resp.Status.WeekNumber = status.WeekNumber
		resp.Status.TotalWeeks = status.TotalWeeks
		resp.Status.EndDate = status.EndDate.UTC().Format(dateLayout)
	}

	return resp
}

type recipientResponse struct {
	UserID  string `json:"user_id"`
	OptedIn bool   `json:"opted_in"`
	Active  bool   `json:"active"`
}

func toRecipientResponse(link *domain.UserLink) recipientResponse {
	return recipientResponse{
		UserID:  link.SlackUserID,
		OptedIn: link.OptedIn,
		Active:  link.Active,
	}
}

package linear

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teampulse/pulse-service/internal/apperrors"
	"github.com/teampulse/pulse-service/internal/domain"
)

type issueNode struct {
	ID          string     `json:"id"`
	Identifier  string     `json:"identifier"`
	Title       string     `json:"title"`
	Priority    int        `json:"priority"`
	Estimate    *float64   `json:"estimate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	StartedAt   *time.Time `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	CanceledAt  *time.Time `json:"canceledAt"`
	State       *struct {
		Type string `json:"type"`
	} `json:"state"`
	Project *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"project"`
	Team *struct {
		ID   string `json:"id"`
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"team"`
}

type issueConnection struct {
	Nodes    []issueNode `json:"nodes"`
	PageInfo pageInfo    `json:"pageInfo"`
}

func (n issueNode) toDomain() domain.Issue {
	issue := domain.Issue{
		ID:          n.ID,
		Identifier:  n.Identifier,
		Title:       n.Title,
		Priority:    domain.Priority(n.Priority),
		Estimate:    n.Estimate,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
		StartedAt:   n.StartedAt,
		CompletedAt: n.CompletedAt,
		CanceledAt:  n.CanceledAt,
	}

	if n.State != nil {
		issue.StateType = domain.StateType(n.State.Type)
	}
	if n.Project != nil {
		issue.Project = &domain.ProjectRef{ID: n.Project.ID, Name: n.Project.Name}
	}
	if n.Team != nil {
		issue.Team = &domain.TeamRef{ID: n.Team.ID, Key: n.Team.Key, Name: n.Team.Name}
	}

	return issue
}

// GetIssuesForUser fetches the complete assigned set for one tracker user,
// then keeps issues that are still open or were updated on/after cutoff.
// Completed work must still surface when it was touched recently, which is
// why the filter runs client-side over all pages.
func (c *Client) GetIssuesForUser(ctx context.Context, userID string, cutoff time.Time) ([]domain.Issue, error) {
	const op = "internal.linear.GetIssuesForUser"

	var nodes []issueNode
	var after *string
	for {
		vars := map[string]any{"id": userID, "first": c.pageSize}
		if after != nil {
			vars["after"] = *after
		}

		var resp struct {
			User *struct {
				AssignedIssues issueConnection `json:"assignedIssues"`
			} `json:"user"`
		}
		if err := c.post(ctx, op, queryUserIssues, vars, &resp); err != nil {
			return nil, err
		}
		if resp.User == nil {
			return nil, fmt.Errorf("%s: user %s: %w", op, userID, apperrors.ErrNotFound)
		}

		conn := resp.User.AssignedIssues
		nodes = append(nodes, conn.Nodes...)

		if !conn.PageInfo.HasNextPage {
			break
		}
		cursor := conn.PageInfo.EndCursor
		after = &cursor
	}

	issues := filterCurrent(nodes, cutoff)

	c.log.Debug(
		"fetched assigned issues",
		slog.String("user_id", userID),
		slog.Int("fetched", len(nodes)),
		slog.Int("kept", len(issues)),
	)

	return issues, nil
}

// GetAllAssignedIssues is GetIssuesForUser for the API key's own account.
func (c *Client) GetAllAssignedIssues(ctx context.Context, cutoff time.Time) ([]domain.Issue, error) {
	const op = "internal.linear.GetAllAssignedIssues"

	var nodes []issueNode
	var after *string
	for {
		vars := map[string]any{"first": c.pageSize}
		if after != nil {
			vars["after"] = *after
		}

		var resp struct {
			Viewer struct {
				AssignedIssues issueConnection `json:"assignedIssues"`
			} `json:"viewer"`
		}
		if err := c.post(ctx, op, queryViewerIssues, vars, &resp); err != nil {
			return nil, err
		}

		conn := resp.Viewer.AssignedIssues
		nodes = append(nodes, conn.Nodes...)

		if !conn.PageInfo.HasNextPage {
			break
		}
		cursor := conn.PageInfo.EndCursor
		after = &cursor
	}

	return filterCurrent(nodes, cutoff), nil
}

// filterCurrent keeps open issues plus anything updated on/after cutoff,
// preserving server order.
func filterCurrent(nodes []issueNode, cutoff time.Time) []domain.Issue {
	issues := make([]domain.Issue, 0, len(nodes))
	for _, node := range nodes {
		issue := node.toDomain()
		if issue.Open() || !issue.UpdatedAt.Before(cutoff) {
			issues = append(issues, issue)
		}
	}

	return issues
}

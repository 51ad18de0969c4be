package linear

import (
	"context"
	"log/slog"

	"github.com/teampulse/pulse-service/internal/domain"
)

type userNode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Active      bool   `json:"active"`
}

func (n userNode) toDomain() domain.TrackerUser {
	return domain.TrackerUser{
		ID:          n.ID,
		Name:        n.Name,
		DisplayName: n.DisplayName,
		Email:       n.Email,
		Active:      n.Active,
	}
}

// GetCurrentUser returns the account the API key belongs to.
func (c *Client) GetCurrentUser(ctx context.Context) (*domain.TrackerUser, error) {
	const op = "internal.linear.GetCurrentUser"

	var resp struct {
		Viewer userNode `json:"viewer"`
	}
	if err := c.post(ctx, op, queryViewer, nil, &resp); err != nil {
		return nil, err
	}

	user := resp.Viewer.toDomain()

	return &user, nil
}

// GetOrganization returns the workspace metadata used to build deep links.
func (c *Client) GetOrganization(ctx context.Context) (*domain.Organization, error) {
	const op = "internal.linear.GetOrganization"

	var resp struct {
		Organization struct {
			URLKey string `json:"urlKey"`
			Name   string `json:"name"`
		} `json:"organization"`
	}
	if err := c.post(ctx, op, queryOrganization, nil, &resp); err != nil {
		return nil, err
	}

	return &domain.Organization{
		URLKey: resp.Organization.URLKey,
		Name:   resp.Organization.Name,
	}, nil
}

// GetAllUsers fetches every workspace member, walking the cursor until the
// server reports no next page. Order is the server's.
func (c *Client) GetAllUsers(ctx context.Context) ([]domain.TrackerUser, error) {
	const op = "internal.linear.GetAllUsers"

	var users []domain.TrackerUser
	var after *string
	for {
		vars := map[string]any{"first": c.pageSize}
		if after != nil {
			vars["after"] = *after
		}

		var resp struct {
			Users struct {
				Nodes    []userNode `json:"nodes"`
				PageInfo pageInfo   `json:"pageInfo"`
			} `json:"users"`
		}
		if err := c.post(ctx, op, queryUsers, vars, &resp); err != nil {
			return nil, err
		}

		for _, node := range resp.Users.Nodes {
			users = append(users, node.toDomain())
		}

		if !resp.Users.PageInfo.HasNextPage {
			break
		}
		cursor := resp.Users.PageInfo.EndCursor
		after = &cursor
	}

	c.log.Debug("fetched tracker users", slog.Int("count", len(users)))

	return users, nil
}

// Package github lists source-hosting organization members so the sync
// pipeline can attach code-review identities to user links. Enrichment is
// optional; the client is only wired when a token is configured.
package github

import (
	"context"
	"fmt"
	"log/slog"

	gh "github.com/google/go-github/v39/github"
	"golang.org/x/oauth2"

	"github.com/teampulse/pulse-service/internal/apperrors"
	"github.com/teampulse/pulse-service/internal/config"
	"github.com/teampulse/pulse-service/internal/domain"
	"github.com/teampulse/pulse-service/internal/remote"
)

const membersPerPage = 100

type Client struct {
	api    *gh.Client
	org    string
	caller *remote.Caller
	log    *slog.Logger
}

func NewClient(cfg config.GitHub, log *slog.Logger) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := oauth2.NewClient(context.Background(), src)

	return &Client{
		api:    gh.NewClient(httpClient),
		org:    cfg.Org,
		caller: remote.NewCaller(log),
		log:    log,
	}
}

// ListMembers fetches every member of the configured organization, one page
// at a time. Public profile emails are often empty; callers fall back to
// login-based matching.
func (c *Client) ListMembers(ctx context.Context) ([]domain.OrgMember, error) {
	const op = "internal.github.ListMembers"

	if c.org == "" {
		return nil, fmt.Errorf("%s: organization is not configured: %w", op, apperrors.ErrMissingCredentials)
	}

	var members []domain.OrgMember
	opts := &gh.ListMembersOptions{
		ListOptions: gh.ListOptions{PerPage: membersPerPage},
	}
	for {
		var (
			users []*gh.User
			resp  *gh.Response
		)
		err := c.caller.Call(ctx, op, func(ctx context.Context) error {
			var err error
			users, resp, err = c.api.Organizations.ListMembers(ctx, c.org, opts)
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, user := range users {
			members = append(members, domain.OrgMember{
				Login: user.GetLogin(),
				Email: user.GetEmail(),
				Name:  user.GetName(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	c.log.Debug("fetched organization members", slog.Int("count", len(members)))

	return members, nil
}

// Package slack is the messaging platform client. It lists workspace
// members and delivers direct messages, enforcing a minimum interval
// between consecutive sends so batch delivery stays under the per-workspace
// rate limit.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/teampulse/pulse-service/internal/config"
	"github.com/teampulse/pulse-service/internal/domain"
	"github.com/teampulse/pulse-service/internal/remote"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	pageSize   int
	limiter    *rate.Limiter
	caller     *remote.Caller
	log        *slog.Logger
}

func NewClient(cfg config.Slack, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		pageSize:   cfg.PageSize,
		limiter:    rate.NewLimiter(rate.Every(cfg.MinSendInterval), 1),
		caller:     remote.NewCaller(log),
		log:        log,
	}
}

// apiMeta is the envelope every Web API response carries. Failures arrive
// as ok:false plus a machine-readable error code, usually with HTTP 200.
type apiMeta struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (m apiMeta) ok() bool { return m.OK }

func (m apiMeta) errCode() string { return m.Error }

type envelope interface {
	ok() bool
	errCode() string
}

type memberNode struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
	IsBot   bool   `json:"is_bot"`
	Profile struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		RealName    string `json:"real_name"`
	} `json:"profile"`
}

func (m memberNode) toDomain() domain.MessagingUser {
	displayName := m.Profile.DisplayName
	if displayName == "" {
		displayName = m.Profile.RealName
	}

	return domain.MessagingUser{
		ID:          m.ID,
		Name:        m.Name,
		DisplayName: displayName,
		Email:       m.Profile.Email,
		IsBot:       m.IsBot,
		Deleted:     m.Deleted,
	}
}

type usersListResponse struct {
	apiMeta
	Members          []memberNode `json:"members"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

type conversationsOpenResponse struct {
	apiMeta
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
}

type chatPostMessageResponse struct {
	apiMeta
	TS string `json:"ts"`
}

// do runs one Web API method with retries. An ok:false response is turned
// into an error built from the platform's error code, so transient codes
// like ratelimited are retried and everything else fails fast.
func (c *Client) do(ctx context.Context, op, method string, params url.Values, out envelope) error {
	return c.caller.Call(ctx, op, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			c.baseURL+"/"+method,
			strings.NewReader(params.Encode()),
		)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}

		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return remote.Classify(op, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return remote.Classify(op, err)
		}

		if resp.StatusCode != http.StatusOK {
			return remote.FromStatus(op, resp.StatusCode, string(body))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}

		if !out.ok() {
			return remote.Classify(op, fmt.Errorf("slack: %s", out.errCode()))
		}

		return nil
	})
}

// ListUsers fetches every workspace member, following the pagination cursor
// until the server returns an empty one. Bots and deleted accounts are
// included; callers decide what to keep.
func (c *Client) ListUsers(ctx context.Context) ([]domain.MessagingUser, error) {
	const op = "internal.slack.ListUsers"

	var users []domain.MessagingUser
	cursor := ""
	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(c.pageSize))
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp usersListResponse
		if err := c.do(ctx, op, "users.list", params, &resp); err != nil {
			return nil, err
		}

		for _, member := range resp.Members {
			users = append(users, member.toDomain())
		}

		cursor = resp.ResponseMetadata.NextCursor
		if cursor == "" {
			break
		}
	}

	c.log.Debug("fetched workspace members", slog.Int("count", len(users)))

	return users, nil
}

// SendDirectMessage opens a direct-message channel to the user and posts
// text into it, returning the delivered message's timestamp ID.
func (c *Client) SendDirectMessage(ctx context.Context, userID, text string) (string, error) {
	const op = "internal.slack.SendDirectMessage"

	openParams := url.Values{}
	openParams.Set("users", userID)

	var open conversationsOpenResponse
	if err := c.do(ctx, op, "conversations.open", openParams, &open); err != nil {
		return "", err
	}

	// Block until the minimum interval since the previous send has
	// elapsed. Together with the strictly sequential delivery loop this
	// keeps the workspace under the messaging API's rate limit.
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	postParams := url.Values{}
	postParams.Set("channel", open.Channel.ID)
	postParams.Set("text", text)

	var post chatPostMessageResponse
	if err := c.do(ctx, op, "chat.postMessage", postParams, &post); err != nil {
		return "", err
	}

	return post.TS, nil
}

// Package linear is the GraphQL client for the issue tracker. All queries go
// through a single POST endpoint; pagination is cursor-based and strictly
// sequential, and every request is retried per the shared remote policy.
package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/teampulse/pulse-service/internal/config"
	"github.com/teampulse/pulse-service/internal/remote"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	pageSize   int
	caller     *remote.Caller
	log        *slog.Logger
}

func NewClient(cfg config.Linear, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		pageSize:   cfg.PageSize,
		caller:     remote.NewCaller(log),
		log:        log,
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors,omitempty"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// post runs one GraphQL document with retries and decodes the data payload
// into out. Transport failures and GraphQL-level errors are classified at
// this boundary; anything downstream only sees normalized kinds.
func (c *Client) post(ctx context.Context, op, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", op, err)
	}

	var data json.RawMessage
	err = c.caller.Call(ctx, op, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", c.apiKey)

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

		var envelope gqlResponse
		if err := json.Unmarshal(body, &envelope); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}

		// The GraphQL layer reports rate limits and auth failures with a
		// 200 status and an errors array; only the message text tells
		// them apart.
		if len(envelope.Errors) > 0 {
			return remote.Classify(op, fmt.Errorf("graphql: %s", envelope.Errors[0].Message))
		}

		data = envelope.Data
		return nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", op, err)
	}

	return nil
}

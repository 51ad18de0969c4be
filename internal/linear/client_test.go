package linear

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teampulse/pulse-service/internal/apperrors"
	"github.com/teampulse/pulse-service/internal/config"
	"github.com/teampulse/pulse-service/internal/remote"
)

type fakeTimer struct {
	delays []time.Duration
	ch     chan time.Time
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{ch: make(chan time.Time, 1)}
}

func (t *fakeTimer) Start(d time.Duration) {
	t.delays = append(t.delays, d)
	t.ch <- time.Now()
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

func (t *fakeTimer) Stop() {}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *fakeTimer) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	timer := newFakeTimer()

	client := NewClient(config.Linear{
		APIKey:   "lin_api_test",
		BaseURL:  srv.URL,
		Timeout:  5 * time.Second,
		PageSize: 2,
	}, logger)
	client.caller = remote.NewCallerWithTimer(logger, timer)

	return client, timer
}

func decodeRequest(t *testing.T, r *http.Request) gqlRequest {
	t.Helper()

	var req gqlRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

	return req
}

func TestClient_GetCurrentUser(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":{"viewer":{"id":"u1","name":"ana","displayName":"Ana","email":"ana@corp.io","active":true}}}`))
	})

	user, err := client.GetCurrentUser(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "lin_api_test", gotAuth)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Ana", user.DisplayName)
	assert.Equal(t, "ana@corp.io", user.Email)
	assert.True(t, user.Active)
}

func TestClient_GetOrganization(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"organization":{"urlKey":"teampulse","name":"Team Pulse"}}}`))
	})

	org, err := client.GetOrganization(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "teampulse", org.URLKey)
	assert.Equal(t, "Team Pulse", org.Name)
}

func TestClient_GetAllUsers_PaginatesSequentially(t *testing.T) {
	var cursors []any
	pages := []string{
		`{"data":{"users":{"nodes":[{"id":"u1","email":"a@corp.io"},{"id":"u2","email":"b@corp.io"}],"pageInfo":{"hasNextPage":true,"endCursor":"cur-1"}}}}`,
		`{"data":{"users":{"nodes":[{"id":"u3","email":"c@corp.io"}],"pageInfo":{"hasNextPage":false,"endCursor":""}}}}`,
	}

	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		cursors = append(cursors, req.Variables["after"])

		w.Write([]byte(pages[calls]))
		calls++
	})

	users, err := client.GetAllUsers(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 3)

	// Server order is preserved across pages.
	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, "u2", users[1].ID)
	assert.Equal(t, "u3", users[2].ID)

	require.Equal(t, 2, calls)
	assert.Nil(t, cursors[0])
	assert.Equal(t, "cur-1", cursors[1])
}

func TestClient_GetIssuesForUser_FetchesAllPagesThenFilters(t *testing.T) {
	pages := []string{
		`{"data":{"user":{"assignedIssues":{
			"nodes":[
				{"id":"i1","identifier":"ENG-1","title":"Open and stale","priority":2,"state":{"type":"started"},"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-10T00:00:00Z"},
				{"id":"i2","identifier":"ENG-2","title":"Done recently","priority":1,"state":{"type":"completed"},"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-08-20T00:00:00Z","completedAt":"2025-08-20T00:00:00Z"}
			],
			"pageInfo":{"hasNextPage":true,"endCursor":"cur-1"}}}}}`,
		`{"data":{"user":{"assignedIssues":{
			"nodes":[
				{"id":"i3","identifier":"ENG-3","title":"Done long ago","priority":3,"state":{"type":"completed"},"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-02-01T00:00:00Z","completedAt":"2025-02-01T00:00:00Z"}
			],
			"pageInfo":{"hasNextPage":false,"endCursor":""}}}}}`,
	}

	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pages[calls]))
		calls++
	})

	cutoff := time.Date(2025, time.July, 25, 0, 0, 0, 0, time.UTC)
	issues, err := client.GetIssuesForUser(context.Background(), "u1", cutoff)

	require.NoError(t, err)
	require.Equal(t, 2, calls, "must fetch every page before filtering")

	// Open issues survive regardless of age; completed ones only when
	// updated on or after the cutoff.
	require.Len(t, issues, 2)
	assert.Equal(t, "ENG-1", issues[0].Identifier)
	assert.Equal(t, "ENG-2", issues[1].Identifier)
}

func TestClient_GetIssuesForUser_UnknownUser(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"user":null}}`))
	})

	_, err := client.GetIssuesForUser(context.Background(), "missing", time.Now())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClient_Post_RetriesRateLimitThenSucceeds(t *testing.T) {
	calls := 0
	client, timer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limited"}`))
			return
		}
		w.Write([]byte(`{"data":{"viewer":{"id":"u1","email":"a@corp.io"}}}`))
	})

	user, err := client.GetCurrentUser(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{time.Second}, timer.delays)
}

func TestClient_Post_GraphQLRateLimitIsRetryable(t *testing.T) {
	calls := 0
	client, timer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"errors":[{"message":"rate limit exceeded, retry later"}]}`))
			return
		}
		w.Write([]byte(`{"data":{"viewer":{"id":"u1"}}}`))
	})

	_, err := client.GetCurrentUser(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, timer.delays, 1)
}

func TestClient_Post_FatalStatusDoesNotRetry(t *testing.T) {
	calls := 0
	client, timer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid key"}`))
	})

	_, err := client.GetCurrentUser(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, timer.delays)

	var re *remote.Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, remote.KindFatal, re.Kind)
}

func TestClient_Post_GraphQLAuthErrorIsFatal(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"errors":[{"message":"authentication required"}]}`))
	})

	_, err := client.GetCurrentUser(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var re *remote.Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, remote.KindFatal, re.Kind)
}

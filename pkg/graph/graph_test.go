package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"student-events/config"
)

// newTestServer 模拟 token 端点与 Graph API
func newTestServer(t *testing.T, api http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/v1.0/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		api(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &config.GraphConfig{
		ClientID:       "client",
		ClientSecret:   "secret",
		BaseURL:        srv.URL + "/v1.0/",
		TokenURL:       srv.URL + "/token",
		Scopes:         []string{"https://graph.microsoft.com/.default"},
		RequestTimeout: 5 * time.Second,
	}
	return NewClient(context.Background(), cfg, zap.NewNop()), srv
}

func TestListUsers(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.0/users", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("$top"))
		assert.Equal(t, userSelect, r.URL.Query().Get("$select"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":[
			{"id":"u1","displayName":"Alice","mail":"alice@example.com","department":"Engineering"},
			{"id":"u2","displayName":"Bob","mail":null}
		]}`)
	})

	users, err := client.ListUsers(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, "u1", users[0].ID)
	require.NotNil(t, users[0].Mail)
	assert.Equal(t, "alice@example.com", *users[0].Mail)
	require.NotNil(t, users[0].Department)
	assert.Equal(t, "Engineering", *users[0].Department)

	assert.Nil(t, users[1].Mail)
	assert.Nil(t, users[1].Department)
}

func TestListCalendarView(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.0/users/u1/calendarView", r.URL.Path)
		assert.Equal(t, "2025-01-01T00:00:00Z", r.URL.Query().Get("startDateTime"))
		assert.Equal(t, "2025-04-01T00:00:00Z", r.URL.Query().Get("endDateTime"))
		assert.Equal(t, "100", r.URL.Query().Get("$top"))
		assert.Equal(t, `outlook.timezone="UTC"`, r.Header.Get("Prefer"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":[
			{
				"id":"e1","subject":"Team Meeting",
				"start":{"dateTime":"2025-01-02T09:00:00.0000000","timeZone":"UTC"},
				"end":{"dateTime":"2025-01-02T10:30:00.0000000","timeZone":"UTC"},
				"location":{"displayName":"Room 101"},
				"body":{"contentType":"html","content":"<p>agenda</p>"},
				"isOnlineMeeting":true
			},
			{
				"id":"e2","subject":"No times",
				"location":{"displayName":""},
				"body":{"contentType":"text","content":""}
			}
		]}`)
	})

	events, err := client.ListCalendarView(context.Background(), "u1", start, end, 100)
	require.NoError(t, err)
	require.Len(t, events, 2)

	e1 := events[0]
	require.NotNil(t, e1.Start)
	require.NotNil(t, e1.End)
	assert.True(t, e1.Start.Equal(time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)))
	assert.True(t, e1.End.Equal(time.Date(2025, 1, 2, 10, 30, 0, 0, time.UTC)))
	require.NotNil(t, e1.Location)
	assert.Equal(t, "Room 101", *e1.Location)
	require.NotNil(t, e1.Body)
	assert.Equal(t, "<p>agenda</p>", *e1.Body)
	require.NotNil(t, e1.IsOnlineMeeting)
	assert.True(t, *e1.IsOnlineMeeting)

	e2 := events[1]
	assert.Nil(t, e2.Start)
	assert.Nil(t, e2.End)
	assert.Nil(t, e2.Location, "空 location 视为未提供")
	assert.Nil(t, e2.Body, "空 body 视为未提供")
	assert.Nil(t, e2.IsOnlineMeeting)
}

func TestAPIError(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":"Authorization_RequestDenied","message":"Insufficient privileges"}}`)
	})

	_, err := client.ListUsers(context.Background(), 10)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Authorization_RequestDenied", apiErr.Code)
	assert.Equal(t, "Insufficient privileges", apiErr.Message)
}

func TestGraphDateTime_Parse(t *testing.T) {
	d := &graphDateTime{DateTime: "2025-06-01T12:00:00.1234567", TimeZone: "Europe/Berlin"}
	got := d.parse()
	require.NotNil(t, got)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 10, got.Hour(), "柏林夏令时 12:00 对应 UTC 10:00")

	assert.Nil(t, (&graphDateTime{DateTime: "garbage"}).parse())
	assert.Nil(t, (*graphDateTime)(nil).parse())
}

package googlecal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	calendarApp "github.com/davidrzs/Timeboard/internal/calendar/application"
	"github.com/davidrzs/Timeboard/internal/calendar/domain"
)

func testProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	return NewProviderWithBaseURL(source, nil, server.URL)
}

func TestListEventsPagesAndSyncToken(t *testing.T) {
	provider := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = w.Write([]byte(`{
				"items": [{
					"id": "e1", "summary": "Standup", "status": "confirmed",
					"start": {"dateTime": "2025-03-12T10:00:00Z"},
					"end": {"dateTime": "2025-03-12T10:30:00Z"}
				}],
				"nextPageToken": "page-2"
			}`))
			return
		}
		assert.Equal(t, "page-2", r.URL.Query().Get("pageToken"))
		_, _ = w.Write([]byte(`{
			"items": [{
				"id": "e2", "summary": "Offsite", "status": "confirmed",
				"start": {"date": "2025-03-13"},
				"end": {"date": "2025-03-14"}
			}],
			"nextSyncToken": "sync-token-1"
		}`))
	})

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	page, err := provider.ListEvents(context.Background(), "primary", from, to, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "e1", page.Items[0].ExternalID)
	assert.False(t, page.Items[0].AllDay)
	assert.Equal(t, "page-2", page.NextPage)
	assert.Empty(t, page.NextCursor)

	page, err = provider.ListEvents(context.Background(), "primary", from, to, page.NextPage)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "e2", page.Items[0].ExternalID)
	assert.True(t, page.Items[0].AllDay)
	assert.Empty(t, page.NextPage)
	assert.Equal(t, "sync-token-1", page.NextCursor)
}

func TestChangesReportsCancellations(t *testing.T) {
	provider := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sync-token-1", r.URL.Query().Get("syncToken"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [{"id": "e1", "status": "cancelled"}],
			"nextSyncToken": "sync-token-2"
		}`))
	})

	page, err := provider.Changes(context.Background(), "primary", "sync-token-1", "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, domain.StatusCancelled, page.Items[0].Status)
	assert.Equal(t, "sync-token-2", page.NextCursor)
}

func TestChangesGoneMeansCursorExpired(t *testing.T) {
	provider := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})

	_, err := provider.Changes(context.Background(), "primary", "old-token", "")
	require.ErrorIs(t, err, calendarApp.ErrCursorExpired)
}

func TestServerErrorIsTransport(t *testing.T) {
	provider := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := provider.ListEvents(context.Background(), "primary", time.Now(), time.Now().Add(time.Hour), "")
	require.ErrorIs(t, err, calendarApp.ErrTransport)
}

func TestListCalendars(t *testing.T) {
	provider := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me/calendarList", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{"id": "primary", "summary": "Work", "backgroundColor": "#4285f4", "primary": true},
				{"id": "family", "summary": "Family"}
			]
		}`))
	})

	infos, err := provider.ListCalendars(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "Work", infos[0].Name)
	assert.Equal(t, "#4285f4", infos[0].Color)
}

package googlecal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	calendarApp "github.com/davidrzs/Timeboard/internal/calendar/application"
	"github.com/davidrzs/Timeboard/internal/calendar/domain"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

const pageSize = 250

// Provider reads calendars and events from the Google Calendar REST
// API. Incremental sync uses Google's syncToken protocol; a 410
// response surfaces as an expired cursor.
type Provider struct {
	source  oauth2.TokenSource
	logger  *slog.Logger
	baseURL string
	client  *http.Client
}

// NewProvider creates a Google Calendar provider.
func NewProvider(source oauth2.TokenSource, logger *slog.Logger) *Provider {
	return NewProviderWithBaseURL(source, logger, defaultBaseURL)
}

// NewProviderWithBaseURL creates a provider against a custom base URL.
// Tests point this at a local server.
func NewProviderWithBaseURL(source oauth2.TokenSource, logger *slog.Logger, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		source:  source,
		logger:  logger,
		baseURL: baseURL,
	}
	p.client = &http.Client{
		Timeout: 15 * time.Second,
		Transport: &oauthTransport{
			base:   http.DefaultTransport,
			source: source,
		},
	}
	return p
}

// Name identifies the provider.
func (p *Provider) Name() string { return "google" }

// ListCalendars returns the calendars on the user's calendar list.
func (p *Provider) ListCalendars(ctx context.Context) ([]calendarApp.CalendarInfo, error) {
	var payload struct {
		Items []struct {
			ID              string `json:"id"`
			Summary         string `json:"summary"`
			BackgroundColor string `json:"backgroundColor"`
			Primary         bool   `json:"primary"`
		} `json:"items"`
	}
	if err := p.getJSON(ctx, p.baseURL+"/users/me/calendarList", &payload); err != nil {
		return nil, err
	}

	infos := make([]calendarApp.CalendarInfo, 0, len(payload.Items))
	for _, item := range payload.Items {
		infos = append(infos, calendarApp.CalendarInfo{
			ID:    item.ID,
			Name:  item.Summary,
			Color: item.BackgroundColor,
		})
	}
	return infos, nil
}

// ListEvents pages through events in [from, to]. The final page
// carries the nextSyncToken that later Changes calls consume.
func (p *Provider) ListEvents(ctx context.Context, calendarID string, from, to time.Time, pageToken string) (*calendarApp.EventPage, error) {
	params := url.Values{}
	params.Set("timeMin", from.UTC().Format(time.RFC3339))
	params.Set("timeMax", to.UTC().Format(time.RFC3339))
	params.Set("singleEvents", "true")
	params.Set("maxResults", fmt.Sprint(pageSize))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}
	return p.fetchEventPage(ctx, calendarID, params)
}

// Changes pages through the delta since the sync token.
func (p *Provider) Changes(ctx context.Context, calendarID, cursor, pageToken string) (*calendarApp.EventPage, error) {
	params := url.Values{}
	params.Set("syncToken", cursor)
	params.Set("maxResults", fmt.Sprint(pageSize))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}
	return p.fetchEventPage(ctx, calendarID, params)
}

type eventItem struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Status  string `json:"status"`
	ETag    string `json:"etag"`
	Start   struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"end"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (p *Provider) fetchEventPage(ctx context.Context, calendarID string, params url.Values) (*calendarApp.EventPage, error) {
	var payload struct {
		Items         []eventItem `json:"items"`
		NextPageToken string      `json:"nextPageToken"`
		NextSyncToken string      `json:"nextSyncToken"`
	}
	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s",
		p.baseURL, url.PathEscape(calendarID), params.Encode())
	if err := p.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	page := &calendarApp.EventPage{
		Items:      make([]calendarApp.ProviderEvent, 0, len(payload.Items)),
		NextPage:   payload.NextPageToken,
		NextCursor: payload.NextSyncToken,
	}
	for _, item := range payload.Items {
		ev, ok := toProviderEvent(item)
		if !ok {
			p.logger.Debug("skipping event without usable times",
				"calendar_id", calendarID, "event_id", item.ID)
			continue
		}
		page.Items = append(page.Items, ev)
	}
	return page, nil
}

func toProviderEvent(item eventItem) (calendarApp.ProviderEvent, bool) {
	ev := calendarApp.ProviderEvent{
		ExternalID:  item.ID,
		Title:       item.Summary,
		Status:      item.Status,
		ETag:        item.ETag,
		Location:    item.Location,
		Description: item.Description,
	}
	// A cancelled delta entry only carries the id.
	if item.Status == domain.StatusCancelled {
		return ev, true
	}

	switch {
	case item.Start.DateTime != "" && item.End.DateTime != "":
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return ev, false
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return ev, false
		}
		ev.Start = start
		ev.End = end
	case item.Start.Date != "" && item.End.Date != "":
		start, err := time.Parse("2006-01-02", item.Start.Date)
		if err != nil {
			return ev, false
		}
		end, err := time.Parse("2006-01-02", item.End.Date)
		if err != nil {
			return ev, false
		}
		ev.Start = start
		ev.End = end
		ev.AllDay = true
	default:
		return ev, false
	}
	return ev, true
}

func (p *Provider) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", calendarApp.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone:
		return calendarApp.ErrCursorExpired
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status=%d", calendarApp.ErrTransport, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status=%d body=%s", calendarApp.ErrTransport, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type oauthTransport struct {
	base   http.RoundTripper
	source oauth2.TokenSource
}

func (t *oauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	return t.base.RoundTrip(req)
}

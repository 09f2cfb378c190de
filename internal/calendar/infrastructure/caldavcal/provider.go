package caldavcal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	calendarApp "github.com/davidrzs/Timeboard/internal/calendar/application"
	"github.com/davidrzs/Timeboard/internal/calendar/domain"
)

// Common CalDAV server URLs.
const (
	AppleCalDAVURL    = "https://caldav.icloud.com"
	FastmailCalDAVURL = "https://caldav.fastmail.com"
)

// Provider reads calendars over CalDAV (Apple Calendar, Fastmail,
// Nextcloud). CalDAV has no delta protocol comparable to a sync token,
// so the cursor is a digest of the window's uid/etag pairs: an
// unchanged digest means an empty delta, a changed one expires the
// cursor and forces a full resync.
type Provider struct {
	baseURL  string
	username string
	password string
	logger   *slog.Logger

	// window bounds the event queries, mirroring the sync engine's.
	windowPast   time.Duration
	windowFuture time.Duration
}

// NewProvider creates a CalDAV provider with basic auth credentials.
// Apple requires an app-specific password.
func NewProvider(baseURL, username, password string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		baseURL:      baseURL,
		username:     username,
		password:     password,
		logger:       logger,
		windowPast:   30 * 24 * time.Hour,
		windowFuture: 14 * 24 * time.Hour,
	}
}

// WithWindow overrides the query window.
func (p *Provider) WithWindow(past, future time.Duration) *Provider {
	p.windowPast = past
	p.windowFuture = future
	return p
}

// Name identifies the provider.
func (p *Provider) Name() string { return "caldav" }

// ListCalendars returns the calendars under the principal's home set.
func (p *Provider) ListCalendars(ctx context.Context) ([]calendarApp.CalendarInfo, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}

	cals, err := p.findCalendars(ctx, client)
	if err != nil {
		return nil, err
	}

	infos := make([]calendarApp.CalendarInfo, 0, len(cals))
	for _, cal := range cals {
		infos = append(infos, calendarApp.CalendarInfo{
			ID:   cal.Path,
			Name: cal.Name,
		})
	}
	return infos, nil
}

// ListEvents returns every event in [from, to] as a single page with a
// fresh digest cursor. CalDAV query results are not paginated.
func (p *Provider) ListEvents(ctx context.Context, calendarID string, from, to time.Time, pageToken string) (*calendarApp.EventPage, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}

	objects, err := p.queryWindow(ctx, client, calendarID, from, to)
	if err != nil {
		return nil, err
	}

	page := &calendarApp.EventPage{NextCursor: digestCursor(objects)}
	for i := range objects {
		if ev, ok := toProviderEvent(&objects[i]); ok {
			page.Items = append(page.Items, ev)
		}
	}
	return page, nil
}

// Changes compares the window's digest against the cursor. A match is
// an empty delta; a mismatch expires the cursor so the engine runs a
// full resync.
func (p *Provider) Changes(ctx context.Context, calendarID, cursor, pageToken string) (*calendarApp.EventPage, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	objects, err := p.queryWindow(ctx, client, calendarID, now.Add(-p.windowPast), now.Add(p.windowFuture))
	if err != nil {
		return nil, err
	}

	current := digestCursor(objects)
	if current != cursor {
		return nil, calendarApp.ErrCursorExpired
	}
	return &calendarApp.EventPage{NextCursor: cursor}, nil
}

func (p *Provider) getClient() (*caldav.Client, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	client, err := caldav.NewClient(
		webdav.HTTPClientWithBasicAuth(httpClient, p.username, p.password), p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("create caldav client: %w", err)
	}
	return client, nil
}

func (p *Provider) findCalendars(ctx context.Context, client *caldav.Client) ([]caldav.Calendar, error) {
	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: find principal: %v", calendarApp.ErrTransport, err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("%w: find calendar home set: %v", calendarApp.ErrTransport, err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("%w: find calendars: %v", calendarApp.ErrTransport, err)
	}
	return cals, nil
}

func (p *Provider) queryWindow(ctx context.Context, client *caldav.Client, calendarPath string, from, to time.Time) ([]caldav.CalendarObject, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  "VCALENDAR",
			Props: []string{"VERSION"},
			Comps: []caldav.CalendarCompRequest{
				{
					Name:  "VEVENT",
					Props: []string{"SUMMARY", "DTSTART", "DTEND", "UID", "DESCRIPTION", "LOCATION", "STATUS"},
				},
			},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{
					Name:  "VEVENT",
					Start: from,
					End:   to,
				},
			},
		},
	}

	objects, err := client.QueryCalendar(ctx, calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query calendar: %v", calendarApp.ErrTransport, err)
	}
	return objects, nil
}

// digestCursor derives a stable fingerprint of the window's contents
// from each object's path and etag.
func digestCursor(objects []caldav.CalendarObject) string {
	keys := make([]string, 0, len(objects))
	for i := range objects {
		keys = append(keys, objects[i].Path+"\x00"+objects[i].ETag)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, key := range keys {
		h.Write([]byte(key))
		h.Write([]byte{'\n'})
	}
	return "caldav:" + hex.EncodeToString(h.Sum(nil))
}

func toProviderEvent(obj *caldav.CalendarObject) (calendarApp.ProviderEvent, bool) {
	var ev calendarApp.ProviderEvent
	if obj == nil || obj.Data == nil {
		return ev, false
	}

	for _, child := range obj.Data.Children {
		if child.Name != ical.CompEvent {
			continue
		}

		ev.ExternalID = obj.Path
		ev.ETag = obj.ETag
		ev.Status = domain.StatusConfirmed

		if props := child.Props[ical.PropUID]; len(props) > 0 {
			ev.ExternalID = props[0].Value
		}
		if props := child.Props[ical.PropSummary]; len(props) > 0 {
			ev.Title = props[0].Value
		}
		if props := child.Props[ical.PropDescription]; len(props) > 0 {
			ev.Description = props[0].Value
		}
		if props := child.Props[ical.PropLocation]; len(props) > 0 {
			ev.Location = props[0].Value
		}
		if props := child.Props[ical.PropStatus]; len(props) > 0 {
			ev.Status = strings.ToLower(props[0].Value)
		}

		icalEvent := &ical.Event{Component: child}
		start, err := icalEvent.DateTimeStart(time.UTC)
		if err != nil {
			return ev, false
		}
		end, err := icalEvent.DateTimeEnd(time.UTC)
		if err != nil {
			return ev, false
		}
		ev.Start = start
		ev.End = end

		// Date-only values come back at midnight.
		if start.Hour() == 0 && start.Minute() == 0 &&
			end.Hour() == 0 && end.Minute() == 0 && !end.Before(start.AddDate(0, 0, 1)) {
			ev.AllDay = true
		}
		return ev, true
	}
	return ev, false
}

package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/consultcal/internal/booking"
)

// fakeAPI is a minimal stand-in for the Calendar v3 REST API.
type fakeAPI struct {
	status   int
	response string

	lastPath  string
	lastQuery map[string]string
	lastBody  map[string]any
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lastPath = r.URL.Path
	f.lastQuery = map[string]string{}
	for k := range r.URL.Query() {
		f.lastQuery[k] = r.URL.Query().Get(k)
	}
	body, _ := io.ReadAll(r.Body)
	f.lastBody = map[string]any{}
	_ = json.Unmarshal(body, &f.lastBody)

	w.Header().Set("Content-Type", "application/json")
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, f.response)
}

func newTestClient(t *testing.T, api *fakeAPI) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := calendar.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return NewClientWithService(svc), srv
}

func sampleDraft(t *testing.T, online bool) booking.EventDraft {
	t.Helper()
	cfg := booking.DefaultConfig()
	mode := "in-person"
	if online {
		mode = booking.ModeOnline
	}
	draft, err := booking.BuildEvent(cfg, booking.Request{
		Name: "Jane", Email: "jane@example.com", Date: "2025-06-02", Time: "10:00", Mode: mode,
	}, "airm-test")
	require.NoError(t, err)
	return draft
}

func TestClient_FetchBusyIntervals(t *testing.T) {
	api := &fakeAPI{response: `{
		"kind": "calendar#freeBusy",
		"calendars": {
			"primary": {
				"busy": [
					{"start": "2025-06-02T08:00:00Z", "end": "2025-06-02T09:00:00Z"},
					{"start": "2025-06-02T12:30:00+02:00", "end": "2025-06-02T13:00:00+02:00"}
				]
			}
		}
	}`}
	client, _ := newTestClient(t, api)

	from := time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	busy, err := client.FetchBusyIntervals(context.Background(), "primary", from, to)
	require.NoError(t, err)

	require.Len(t, busy, 2)
	assert.True(t, busy[0].Start.Equal(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)))
	assert.True(t, busy[1].End.Equal(time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)))

	assert.Equal(t, "/freeBusy", api.lastPath)
	assert.Equal(t, "2025-06-02T07:00:00Z", api.lastBody["timeMin"])
	assert.Equal(t, "2025-06-02T15:00:00Z", api.lastBody["timeMax"])
	items, ok := api.lastBody["items"].([]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"id": "primary"}, items[0])
}

func TestClient_FetchBusyIntervals_MissingCalendar(t *testing.T) {
	api := &fakeAPI{response: `{"calendars": {}}`}
	client, _ := newTestClient(t, api)

	busy, err := client.FetchBusyIntervals(context.Background(), "primary", time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.NotNil(t, busy)
	assert.Empty(t, busy)
}

func TestClient_FetchBusyIntervals_CalendarErrors(t *testing.T) {
	tests := []struct {
		name     string
		reason   string
		wantKind error
	}{
		{"not found", "notFound", booking.ErrCollaboratorRejected},
		{"backend", "backendError", booking.ErrCollaboratorUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{response: `{"calendars": {"c1": {"errors": [{"domain": "global", "reason": "` + tt.reason + `"}]}}}`}
			client, _ := newTestClient(t, api)

			_, err := client.FetchBusyIntervals(context.Background(), "c1", time.Now(), time.Now().Add(time.Hour))
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestClient_FetchBusyIntervals_BadTimestamp(t *testing.T) {
	api := &fakeAPI{response: `{"calendars": {"primary": {"busy": [{"start": "yesterday", "end": "today"}]}}}`}
	client, _ := newTestClient(t, api)

	_, err := client.FetchBusyIntervals(context.Background(), "primary", time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, booking.ErrCollaboratorUnavailable)
	assert.False(t, booking.IsTransient(err))
}

func TestClient_SubmitEvent_Online(t *testing.T) {
	api := &fakeAPI{response: `{
		"id": "evt123",
		"htmlLink": "https://calendar.google.com/event?eid=evt123",
		"hangoutLink": "https://meet.google.com/abc-defg-hij"
	}`}
	client, _ := newTestClient(t, api)

	conf, err := client.SubmitEvent(context.Background(), "primary", sampleDraft(t, true))
	require.NoError(t, err)

	assert.Equal(t, booking.Confirmation{
		EventID:        "evt123",
		HTMLLink:       "https://calendar.google.com/event?eid=evt123",
		ConferenceLink: "https://meet.google.com/abc-defg-hij",
	}, conf)

	assert.Equal(t, "/calendars/primary/events", api.lastPath)
	assert.Equal(t, "1", api.lastQuery["conferenceDataVersion"])
	assert.Equal(t, "all", api.lastQuery["sendUpdates"])

	assert.Equal(t, "AIRM konzultáció — Jane", api.lastBody["summary"])
	start := api.lastBody["start"].(map[string]any)
	assert.Equal(t, "2025-06-02T10:00:00+02:00", start["dateTime"])
	assert.Equal(t, "Europe/Budapest", start["timeZone"])
	assert.Equal(t, map[string]any{"useDefault": true}, api.lastBody["reminders"])

	conference := api.lastBody["conferenceData"].(map[string]any)
	createRequest := conference["createRequest"].(map[string]any)
	assert.Equal(t, "airm-test", createRequest["requestId"])
}

func TestClient_SubmitEvent_InPerson(t *testing.T) {
	api := &fakeAPI{response: `{"id": "evt1", "htmlLink": "https://calendar.google.com/x"}`}
	client, _ := newTestClient(t, api)

	conf, err := client.SubmitEvent(context.Background(), "primary", sampleDraft(t, false))
	require.NoError(t, err)

	assert.Empty(t, conf.ConferenceLink)
	assert.NotContains(t, api.lastBody, "conferenceData")
	attendees := api.lastBody["attendees"].([]any)
	assert.Equal(t, map[string]any{"email": "jane@example.com"}, attendees[0])
}

func TestClient_SubmitEvent_SendUpdatesOption(t *testing.T) {
	api := &fakeAPI{response: `{"id": "evt1"}`}
	srv := httptest.NewServer(api)
	defer srv.Close()

	svc, err := calendar.NewService(context.Background(), option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	_, err = NewClientWithService(svc, WithSendUpdates("none")).SubmitEvent(context.Background(), "primary", sampleDraft(t, false))
	require.NoError(t, err)
	assert.Equal(t, "none", api.lastQuery["sendUpdates"])
}

func TestClient_SubmitEvent_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantKind      error
		wantTransient bool
	}{
		{"bad request", http.StatusBadRequest, booking.ErrCollaboratorRejected, false},
		{"forbidden", http.StatusForbidden, booking.ErrCollaboratorRejected, false},
		{"conflict", http.StatusConflict, booking.ErrCollaboratorRejected, false},
		{"rate limited", http.StatusTooManyRequests, booking.ErrCollaboratorUnavailable, true},
		{"server error", http.StatusInternalServerError, booking.ErrCollaboratorUnavailable, true},
		{"unavailable", http.StatusServiceUnavailable, booking.ErrCollaboratorUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{
				status:   tt.status,
				response: fmt.Sprintf(`{"error": {"code": %d, "message": "nope"}}`, tt.status),
			}
			client, _ := newTestClient(t, api)

			_, err := client.SubmitEvent(context.Background(), "primary", sampleDraft(t, true))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantTransient, booking.IsTransient(err))

			var apiErr *googleapi.Error
			require.True(t, errors.As(err, &apiErr), "cause should stay reachable")
			assert.Equal(t, tt.status, apiErr.Code)
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	client, srv := newTestClient(t, &fakeAPI{response: `{}`})
	srv.Close()

	_, err := client.FetchBusyIntervals(context.Background(), "primary", time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, booking.ErrCollaboratorUnavailable)
	assert.True(t, booking.IsTransient(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantKind      error
		wantTransient bool
	}{
		{"timeout", &googleapi.Error{Code: http.StatusRequestTimeout}, booking.ErrCollaboratorUnavailable, true},
		{"not found", &googleapi.Error{Code: http.StatusNotFound}, booking.ErrCollaboratorRejected, false},
		{"bad gateway", &googleapi.Error{Code: http.StatusBadGateway}, booking.ErrCollaboratorUnavailable, true},
		{"deadline", context.DeadlineExceeded, booking.ErrCollaboratorUnavailable, true},
		{"canceled", context.Canceled, booking.ErrCollaboratorUnavailable, false},
		{"unknown", errors.New("boom"), booking.ErrCollaboratorUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("insert", tt.err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.wantTransient, booking.IsTransient(err))
		})
	}
}

func TestToConfirmation(t *testing.T) {
	assert.Equal(t, booking.Confirmation{}, toConfirmation(nil))

	conf := toConfirmation(&calendar.Event{
		Id: "e1",
		ConferenceData: &calendar.ConferenceData{
			EntryPoints: []*calendar.EntryPoint{
				{EntryPointType: "phone", Uri: "tel:+1"},
				{EntryPointType: "video", Uri: "https://meet.google.com/x"},
			},
		},
	})
	assert.Equal(t, "https://meet.google.com/x", conf.ConferenceLink)
}

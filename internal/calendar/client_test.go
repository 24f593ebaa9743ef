package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/config"
	stderrors "github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/errors"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/logger"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/models"
)

func sampleTicket() models.Ticket {
	return models.Ticket{
		Title:       "Fix login page",
		Assignee:    "Bob",
		DueDate:     "2025-08-29",
		Priority:    models.PriorityHigh,
		Description: "Complete the login page before the demo.",
	}
}

func newTestCalendarClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClient(config.CalendarConfig{
		BaseURL:    serverURL,
		CalendarID: "primary",
		Token:      "test-token",
		Timeout:    5000,
	}, logger.NewTestLogger(t))
}

func TestCreateTicketEvent(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":       "evt-1",
			"htmlLink": "https://calendar.example/evt-1",
		})
	}))
	defer server.Close()

	client := newTestCalendarClient(t, server.URL)

	event, err := client.CreateTicketEvent(context.Background(), sampleTicket())
	require.NoError(t, err)
	assert.Equal(t, "evt-1", event.EventID)
	assert.Equal(t, "https://calendar.example/evt-1", event.HTMLLink)
	assert.Equal(t, "Fix login page", event.TicketTitle)

	assert.Equal(t, "Fix login page [HIGH]", captured["summary"])
	assert.Contains(t, captured["description"], "Assignee: Bob")
	assert.Contains(t, captured["description"], "Priority: HIGH")

	start := captured["start"].(map[string]interface{})
	end := captured["end"].(map[string]interface{})
	assert.Equal(t, "2025-08-29", start["date"])
	assert.Equal(t, "2025-08-29", end["date"])

	reminders := captured["reminders"].(map[string]interface{})
	assert.Equal(t, false, reminders["useDefault"])
	overrides := reminders["overrides"].([]interface{})
	require.Len(t, overrides, 2)
	first := overrides[0].(map[string]interface{})
	second := overrides[1].(map[string]interface{})
	assert.Equal(t, "email", first["method"])
	assert.Equal(t, float64(1440), first["minutes"])
	assert.Equal(t, "popup", second["method"])
	assert.Equal(t, float64(120), second["minutes"])
}

func TestCreateTicketEventRewritesLegacyDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		start := payload["start"].(map[string]interface{})
		assert.Equal(t, "2025-08-29", start["date"])
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "evt-2", "htmlLink": "link"})
	}))
	defer server.Close()

	client := newTestCalendarClient(t, server.URL)

	ticket := sampleTicket()
	ticket.DueDate = "29-08-2025"
	_, err := client.CreateTicketEvent(context.Background(), ticket)
	require.NoError(t, err)
}

func TestCreateTicketEventBadDate(t *testing.T) {
	client := newTestCalendarClient(t, "http://localhost:1")

	ticket := sampleTicket()
	ticket.DueDate = "someday"
	_, err := client.CreateTicketEvent(context.Background(), ticket)
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeCalendarEventFailed, stderrors.CodeOf(err))
}

func TestCreateTicketEventAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestCalendarClient(t, server.URL)

	_, err := client.CreateTicketEvent(context.Background(), sampleTicket())
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeCalendarEventFailed, stderrors.CodeOf(err))
	assert.True(t, stderrors.IsRetryable(err))
}

func TestSyncTicketsStopsAtFirstFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "evt", "htmlLink": "link"})
	}))
	defer server.Close()

	client := newTestCalendarClient(t, server.URL)

	tickets := []models.Ticket{sampleTicket(), sampleTicket(), sampleTicket()}
	events, err := client.SyncTickets(context.Background(), tickets)
	require.Error(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 2, calls)
}

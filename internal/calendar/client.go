// Package calendar pushes extracted tickets to the Google Calendar REST API.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/config"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/errors"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/logger"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/models"
)

// Client creates one all-day event per ticket. Obtaining the OAuth token is
// out of band; the client only consumes an already-issued bearer token.
type Client struct {
	baseURL    string
	calendarID string
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg config.CalendarConfig, log logger.Logger) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = config.GetDuration(cfg.Timeout)

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		calendarID: cfg.CalendarID,
		httpClient: httpClient,
		logger:     log.WithFields(map[string]interface{}{"component": "calendar-client"}),
	}
}

type eventDate struct {
	Date string `json:"date"`
}

type reminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

type eventPayload struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       eventDate `json:"start"`
	End         eventDate `json:"end"`
	Reminders   struct {
		UseDefault bool               `json:"useDefault"`
		Overrides  []reminderOverride `json:"overrides"`
	} `json:"reminders"`
}

type eventResponse struct {
	ID       string `json:"id"`
	HTMLLink string `json:"htmlLink"`
}

// CreatedEvent is the outcome of one ticket sync.
type CreatedEvent struct {
	TicketTitle string `json:"ticket_title"`
	EventID     string `json:"event_id"`
	HTMLLink    string `json:"html_link"`
}

// CreateTicketEvent inserts one all-day event for the ticket, with email and
// popup reminders at 24 hours and 2 hours before the due date.
func (c *Client) CreateTicketEvent(ctx context.Context, ticket models.Ticket) (*CreatedEvent, error) {
	date, err := normalizeDate(ticket.DueDate)
	if err != nil {
		return nil, errors.NewCalendarEventFailedError(err)
	}

	assignee := ticket.Assignee
	if assignee == "" {
		assignee = "Unassigned"
	}

	payload := eventPayload{
		Summary:     fmt.Sprintf("%s [%s]", ticket.Title, ticket.Priority),
		Description: fmt.Sprintf("Assignee: %s\nPriority: %s\n\n%s", assignee, ticket.Priority, ticket.Description),
		Start:       eventDate{Date: date},
		End:         eventDate{Date: date},
	}
	payload.Reminders.Overrides = []reminderOverride{
		{Method: "email", Minutes: 24 * 60},
		{Method: "popup", Minutes: 120},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewCalendarEventFailedError(err)
	}

	url := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, c.calendarID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewCalendarEventFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewCalendarEventFailedError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewCalendarEventFailedError(err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.NewCalendarEventFailedError(fmt.Errorf("calendar API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var event eventResponse
	if err := json.Unmarshal(respBody, &event); err != nil {
		return nil, errors.NewCalendarEventFailedError(err)
	}

	c.logger.Info("calendar event created", map[string]interface{}{
		"ticket":  ticket.Title,
		"eventId": event.ID,
	})

	return &CreatedEvent{
		TicketTitle: ticket.Title,
		EventID:     event.ID,
		HTMLLink:    event.HTMLLink,
	}, nil
}

// SyncTickets creates one event per ticket, stopping at the first failure.
func (c *Client) SyncTickets(ctx context.Context, tickets []models.Ticket) ([]CreatedEvent, error) {
	events := make([]CreatedEvent, 0, len(tickets))
	for _, ticket := range tickets {
		event, err := c.CreateTicketEvent(ctx, ticket)
		if err != nil {
			return events, err
		}
		events = append(events, *event)
	}
	return events, nil
}

// normalizeDate accepts ISO dates and rewrites the DD-MM-YYYY form older
// exports still carry.
func normalizeDate(s string) (string, error) {
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return s, nil
	}
	if t, err := time.Parse("02-01-2006", s); err == nil {
		return t.Format("2006-01-02"), nil
	}
	return "", fmt.Errorf("due date %q is not a recognized calendar date", s)
}

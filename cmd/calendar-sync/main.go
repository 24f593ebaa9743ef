// cmd/calendar-sync/main.go
//
// Reads a ticket list from a JSON file (the shape returned by the TICKETS
// endpoint) and creates one all-day calendar event per ticket.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/calendar"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/config"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/logger"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/models"
)

func main() {
	var (
		input      = flag.String("input", "tickets.json", "path to a JSON file containing {\"tickets\": [...]}")
		calendarID = flag.String("calendar", "", "target calendar ID (overrides config)")
	)
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	if *calendarID != "" {
		cfg.Calendar.CalendarID = *calendarID
	}
	if cfg.Calendar.Token == "" {
		zapLog.Fatal("calendar token is required (set CALENDAR_OAUTH_TOKEN)")
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		zapLog.Fatal("read ticket file failed", zap.Error(err))
	}

	var payload struct {
		Tickets []models.Ticket `json:"tickets"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		zapLog.Fatal("parse ticket file failed", zap.Error(err))
	}
	if len(payload.Tickets) == 0 {
		zapLog.Fatal("no tickets found in input file", zap.String("path", *input))
	}

	client := calendar.NewClient(cfg.Calendar, log)

	events, err := client.SyncTickets(context.Background(), payload.Tickets)
	for _, event := range events {
		zapLog.Info("event created",
			zap.String("ticket", event.TicketTitle),
			zap.String("link", event.HTMLLink),
		)
	}
	if err != nil {
		zapLog.Fatal("calendar sync stopped early", zap.Error(err), zap.Int("created", len(events)))
	}

	zapLog.Info("calendar sync complete", zap.Int("created", len(events)))
}

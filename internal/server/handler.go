// Package server exposes the extraction pipeline over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/errors"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/logger"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/extraction"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/models"
)

// Handler serves the /v1/extract endpoint.
type Handler struct {
	dispatcher *extraction.Dispatcher
	logger     logger.Logger
}

func NewHandler(dispatcher *extraction.Dispatcher, log logger.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		logger:     log.WithFields(map[string]interface{}{"component": "http-handler"}),
	}
}

// extractPayload is the wire shape of an inbound extraction call.
type extractPayload struct {
	Messages   []models.ChatMessage `json:"messages"`
	PromptType string               `json:"prompt_type"`
	Counts     int                  `json:"counts"`
	Timestamp  string               `json:"timestamp"`
	DaysOfWeek string               `json:"days_of_week"`
}

type errorResponse struct {
	Detail string                `json:"detail"`
	Error  *errors.ErrorEnvelope `json:"error,omitempty"`
}

func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Detail: "method not allowed"})
		return
	}

	var payload extractPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body: " + err.Error()})
		return
	}

	req, err := payload.toRequest()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}

	outcome := h.dispatcher.Dispatch(r.Context(), req)
	if outcome.State == extraction.StateFailed {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Detail: outcome.Envelope.Detail(),
			Error:  outcome.Envelope,
		})
		return
	}

	writeJSON(w, http.StatusOK, outcome.Result)
}

// toRequest validates the wire payload and builds the immutable pipeline
// request. Timestamps accept both full RFC 3339 instants and bare dates.
func (p *extractPayload) toRequest() (*models.ExtractionRequest, error) {
	kind, err := models.ParsePromptKind(p.PromptType)
	if err != nil {
		return nil, err
	}

	var ts time.Time
	if strings.TrimSpace(p.Timestamp) != "" {
		parsed, err := time.Parse(time.RFC3339, p.Timestamp)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", p.Timestamp)
		}
		if err != nil {
			return nil, err
		}
		ts = parsed
	}

	req := &models.ExtractionRequest{
		Messages:           p.Messages,
		Kind:               kind,
		DesiredCount:       p.Counts,
		ReferenceTimestamp: ts,
		ReferenceWeekday:   p.DaysOfWeek,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

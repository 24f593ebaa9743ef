package extraction

import (
	"encoding/json"
	"fmt"
	"time"

	"regexp"

	"github.com/xeipuuv/gojsonschema"

	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/errors"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/models"
)

// Validate parses normalized text, checks it against the schema for kind and
// coerces it into the typed result. Validation is all-or-nothing: any field
// violation fails the whole response, no partial results come back.
func Validate(normalized string, kind models.PromptKind) (*models.ExtractionResult, error) {
	var document interface{}
	if err := json.Unmarshal([]byte(normalized), &document); err != nil {
		return nil, errors.NewMalformedDocumentError(err)
	}

	schemaLoader := gojsonschema.NewGoLoader(schemaFor(kind))
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, errors.NewMalformedDocumentError(err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return nil, errors.NewSchemaViolationError(first.Field(), first.Description())
	}

	switch kind {
	case models.PromptKindTickets:
		return coerceTickets(normalized)
	case models.PromptKindSummary:
		return coerceSummary(normalized)
	default:
		return coerceOverview(normalized, kind)
	}
}

// Durations like P2D, PT4H or P1DT2H30M. Must carry at least one component.
var isoDurationPattern = regexp.MustCompile(`^P(\d+Y)?(\d+M)?(\d+W)?(\d+D)?(T(\d+H)?(\d+M)?(\d+S)?)?$`)

func coerceTickets(normalized string) (*models.ExtractionResult, error) {
	var payload struct {
		Tickets []models.Ticket `json:"tickets"`
	}
	if err := json.Unmarshal([]byte(normalized), &payload); err != nil {
		return nil, errors.NewMalformedDocumentError(err)
	}

	for i := range payload.Tickets {
		t := &payload.Tickets[i]

		// The date must independently re-parse, the schema only checks it is
		// a non-empty string.
		if _, err := time.Parse("2006-01-02", t.DueDate); err != nil {
			return nil, errors.NewSchemaViolationError(
				fmt.Sprintf("tickets.%d.due_date", i),
				fmt.Sprintf("%q is not an ISO-8601 calendar date", t.DueDate),
			)
		}

		if t.Priority == "" {
			t.Priority = models.PriorityMid
		}
		if !t.Priority.IsValid() {
			return nil, errors.NewSchemaViolationError(
				fmt.Sprintf("tickets.%d.priority", i),
				fmt.Sprintf("%q is not one of LOW, MID, HIGH", t.Priority),
			)
		}

		if d := t.EstimatedDuration; d != "" && (d == "P" || d == "PT" || !isoDurationPattern.MatchString(d)) {
			return nil, errors.NewSchemaViolationError(
				fmt.Sprintf("tickets.%d.estimated_duration", i),
				fmt.Sprintf("%q is not an ISO-8601 duration", t.EstimatedDuration),
			)
		}
	}

	return &models.ExtractionResult{
		Kind:    models.PromptKindTickets,
		Tickets: payload.Tickets,
	}, nil
}

func coerceSummary(normalized string) (*models.ExtractionResult, error) {
	var payload models.Summary
	if err := json.Unmarshal([]byte(normalized), &payload); err != nil {
		return nil, errors.NewMalformedDocumentError(err)
	}
	return &models.ExtractionResult{
		Kind:    models.PromptKindSummary,
		Summary: &payload,
	}, nil
}

func coerceOverview(normalized string, kind models.PromptKind) (*models.ExtractionResult, error) {
	var payload models.ProjectOverview
	if err := json.Unmarshal([]byte(normalized), &payload); err != nil {
		return nil, errors.NewMalformedDocumentError(err)
	}
	return &models.ExtractionResult{
		Kind:     kind,
		Overview: &payload,
	}, nil
}

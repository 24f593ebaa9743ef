// Package models defines the request and result shapes of the extraction pipeline.
package models

import (
	"fmt"
	"strings"
	"time"
)

// PromptKind selects which template and result schema apply to a request.
type PromptKind string

const (
	PromptKindTickets       PromptKind = "TICKETS"
	PromptKindShortOverview PromptKind = "SHORT_OVERVIEW"
	PromptKindLongOverview  PromptKind = "LONG_OVERVIEW"
	PromptKindListTasks     PromptKind = "LIST_TASKS"
	PromptKindSummary       PromptKind = "SUMMARY"
)

// AllPromptKinds lists every supported kind, in registry order.
var AllPromptKinds = []PromptKind{
	PromptKindTickets,
	PromptKindShortOverview,
	PromptKindLongOverview,
	PromptKindListTasks,
	PromptKindSummary,
}

// ParsePromptKind resolves an inbound kind string case-insensitively.
// The canonical form is upper-case.
func ParsePromptKind(s string) (PromptKind, error) {
	kind := PromptKind(strings.ToUpper(strings.TrimSpace(s)))
	for _, k := range AllPromptKinds {
		if kind == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown prompt kind: %q", s)
}

// ChatMessage is one authored line of the input transcript. Order within the
// transcript is chronological and semantically meaningful.
type ChatMessage struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// ExtractionRequest is one inbound extraction call, immutable once built.
type ExtractionRequest struct {
	Messages []ChatMessage `json:"messages"`
	Kind     PromptKind    `json:"prompt_type"`

	// Optional contextual parameters. Zero values mean "use the default".
	DesiredCount       int       `json:"counts,omitempty"`
	ReferenceTimestamp time.Time `json:"timestamp,omitempty"`
	ReferenceWeekday   string    `json:"days_of_week,omitempty"`
}

// Validate checks the request-level invariants before the pipeline runs.
func (r *ExtractionRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages must not be empty")
	}
	for i, m := range r.Messages {
		if strings.TrimSpace(m.Author) == "" {
			return fmt.Errorf("messages[%d].author must not be empty", i)
		}
		if strings.TrimSpace(m.Content) == "" {
			return fmt.Errorf("messages[%d].content must not be empty", i)
		}
	}
	if _, err := ParsePromptKind(string(r.Kind)); err != nil {
		return err
	}
	if r.DesiredCount < 0 {
		return fmt.Errorf("counts must be positive")
	}
	return nil
}

// Priority is the closed ticket priority enumeration.
type Priority string

const (
	PriorityLow  Priority = "LOW"
	PriorityMid  Priority = "MID"
	PriorityHigh Priority = "HIGH"
)

// IsValid reports whether p is one of the three priority literals.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMid, PriorityHigh:
		return true
	}
	return false
}

// Ticket is one actionable work item extracted from a transcript.
// DueDate holds an ISO-8601 calendar date (YYYY-MM-DD).
type Ticket struct {
	Title             string   `json:"title"`
	Assignee          string   `json:"assignee,omitempty"`
	DueDate           string   `json:"due_date"`
	Priority          Priority `json:"priority"`
	Description       string   `json:"description"`
	EstimatedDuration string   `json:"estimated_duration,omitempty"`
}

// ProjectOverview is the loosely-typed overview shape shared by the
// SHORT_OVERVIEW, LONG_OVERVIEW and LIST_TASKS kinds. Task records are kept
// loosely typed on purpose; the generator's task vocabulary is open-ended.
type ProjectOverview struct {
	Summary   string                   `json:"summary"`
	Tasks     []map[string]interface{} `json:"tasks"`
	TeamRoles map[string]string        `json:"team_roles"`
	TechStack []string                 `json:"tech_stack,omitempty"`
	Progress  map[string][]string      `json:"progress,omitempty"`
}

// Summary is the free-prose result shape for the SUMMARY kind.
type Summary struct {
	Summary string `json:"summary"`
}

// ExtractionResult is a tagged union over the per-kind result shapes.
// Exactly one variant is populated per response.
type ExtractionResult struct {
	Kind     PromptKind       `json:"prompt_type"`
	Tickets  []Ticket         `json:"tickets,omitempty"`
	Overview *ProjectOverview `json:"overview,omitempty"`
	Summary  *Summary         `json:"summary,omitempty"`
}

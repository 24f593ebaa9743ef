package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/models"
)

const defaultDesiredCount = 3

// Composer turns an ExtractionRequest into the finalized prompt sent to the
// generator. The clock is injectable so composed prompts are byte-identical
// across runs in tests.
type Composer struct {
	registry *Registry
	now      func() time.Time
}

func NewComposer(registry *Registry) *Composer {
	return &Composer{
		registry: registry,
		now:      time.Now,
	}
}

// WithClock overrides the composition-time clock. Test hook.
func (c *Composer) WithClock(now func() time.Time) *Composer {
	c.now = now
	return c
}

// ComposedPrompt is the finalized generator input for one request.
type ComposedPrompt struct {
	SystemInstruction  string
	Prompt             string
	FormatInstructions string
}

// Compose renders the transcript, resolves contextual defaults and assembles
// the per-kind prompt body plus the schema-derived format instructions.
func (c *Composer) Compose(req *models.ExtractionRequest) (*ComposedPrompt, error) {
	system, err := c.registry.SystemInstruction(req.Kind)
	if err != nil {
		return nil, err
	}

	count := req.DesiredCount
	if count == 0 {
		count = defaultDesiredCount
	}

	ts := req.ReferenceTimestamp
	if ts.IsZero() {
		ts = c.now()
	}

	weekday := req.ReferenceWeekday
	if weekday == "" {
		weekday = ts.Weekday().String()
	}

	transcript := renderTranscript(req.Messages)
	format := FormatInstructions(req.Kind)

	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s (%s).\n\n", ts.Format("2006-01-02"), weekday)

	switch req.Kind {
	case models.PromptKindTickets:
		fmt.Fprintf(&b, "Extract up to %d actionable tickets from the chat log below.\n", count)
		b.WriteString("Resolve relative dates (tomorrow, friday, next week) against today's date and output ISO-8601 dates (YYYY-MM-DD).\n")
		b.WriteString("If the chat is not in English, translate titles and descriptions into English while preserving the meaning.\n\n")
		b.WriteString(ticketFewShot)
		b.WriteString("\n")
	case models.PromptKindSummary:
		b.WriteString("Write a summary of the chat log below with three sections:\n")
		b.WriteString("1. Executive summary - one paragraph stating what the team is building and where it stands.\n")
		b.WriteString("2. Discussion summary - the key points raised, decisions made, and disagreements if any.\n")
		b.WriteString("3. Future outlook - the agreed next steps and open risks.\n\n")
	default:
		fmt.Fprintf(&b, "Analyze the chat log below and produce the requested project overview. Include up to %d entries where a count applies.\n\n", count)
	}

	b.WriteString("Chat log:\n")
	b.WriteString(transcript)
	b.WriteString("\n\n")
	b.WriteString(format)

	return &ComposedPrompt{
		SystemInstruction:  system,
		Prompt:             b.String(),
		FormatInstructions: format,
	}, nil
}

// renderTranscript serializes the transcript one message per line, in the
// original order, as "author: content".
func renderTranscript(messages []models.ChatMessage) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Author, m.Content))
	}
	return strings.Join(lines, "\n")
}

// FormatInstructions returns the JSON-shape fragment appended to every prompt
// for the given kind. The fragments mirror the validation schemas exactly.
func FormatInstructions(kind models.PromptKind) string {
	switch kind {
	case models.PromptKindTickets:
		return `Respond with JSON only, no prose and no code fences, matching exactly this shape:
{"tickets": [{"title": "string, required", "assignee": "string, optional", "due_date": "YYYY-MM-DD, required", "priority": "LOW | MID | HIGH", "description": "string, required", "estimated_duration": "ISO-8601 duration such as PT4H, optional"}]}`
	case models.PromptKindSummary:
		return `Respond with JSON only, no prose and no code fences, matching exactly this shape:
{"summary": "string containing the full structured summary text"}`
	default:
		return `Respond with JSON only, no prose and no code fences, matching exactly this shape:
{"summary": "string", "tasks": [{"title": "string", "status": "string"}], "team_roles": {"member name": "role"}, "tech_stack": ["string"], "progress": {"category": ["string"]}}`
	}
}

// Two worked examples demonstrating the ticket output schema. The second is
// non-English input to establish the translate-to-English behavior.
const ticketFewShot = `Example 1:
Chat log:
Sam: we still need wireframes for the landing page, can someone pick that up before friday?
Tina: sure, I'll have drafts ready.
Output:
{"tickets": [{"title": "Create frontend wireframes", "assignee": "Tina", "due_date": "2025-08-29", "priority": "MID", "description": "Prepare landing page wireframe drafts for review.", "estimated_duration": "PT8H"}]}

Example 2:
Chat log:
민준: 로그인 API 버그 내일까지 꼭 고쳐야 해요, 급합니다.
서연: 제가 오늘 밤에 수정할게요.
Output:
{"tickets": [{"title": "Fix login API bug", "assignee": "서연", "due_date": "2025-08-28", "priority": "HIGH", "description": "Urgent fix for the login API bug, to be patched tonight.", "estimated_duration": "PT4H"}]}`

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePromptKind(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected PromptKind
		wantErr  bool
	}{
		{name: "canonical upper case", input: "TICKETS", expected: PromptKindTickets},
		{name: "lower case accepted", input: "summary", expected: PromptKindSummary},
		{name: "mixed case accepted", input: "Short_Overview", expected: PromptKindShortOverview},
		{name: "surrounding whitespace trimmed", input: "  LIST_TASKS  ", expected: PromptKindListTasks},
		{name: "unknown kind rejected", input: "EPICS", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := ParsePromptKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestExtractionRequestValidate(t *testing.T) {
	valid := ExtractionRequest{
		Messages: []ChatMessage{{Author: "Alice", Content: "finish login page by tomorrow"}},
		Kind:     PromptKindTickets,
	}
	assert.NoError(t, valid.Validate())

	empty := ExtractionRequest{Kind: PromptKindTickets}
	assert.Error(t, empty.Validate())

	blankAuthor := ExtractionRequest{
		Messages: []ChatMessage{{Author: "  ", Content: "hello"}},
		Kind:     PromptKindTickets,
	}
	assert.Error(t, blankAuthor.Validate())

	badKind := ExtractionRequest{
		Messages: []ChatMessage{{Author: "Alice", Content: "hello"}},
		Kind:     "EPICS",
	}
	assert.Error(t, badKind.Validate())
}

func TestPriorityIsValid(t *testing.T) {
	assert.True(t, PriorityLow.IsValid())
	assert.True(t, PriorityMid.IsValid())
	assert.True(t, PriorityHigh.IsValid())
	assert.False(t, Priority("URGENT").IsValid())
	assert.False(t, Priority("mid").IsValid())
}

package extraction

import "github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/models"

// JSON schema documents enforced per PromptKind. The overview kinds share one
// schema; their differences are prompt-side only.

var ticketListSchema = map[string]interface{}{
	"type":                 "object",
	"required":             []interface{}{"tickets"},
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"tickets": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"title", "due_date", "description"},
				"properties": map[string]interface{}{
					"title":              map[string]interface{}{"type": "string", "minLength": 1},
					"assignee":           map[string]interface{}{"type": "string"},
					"due_date":           map[string]interface{}{"type": "string", "minLength": 1},
					"priority":           map[string]interface{}{"type": "string", "enum": []interface{}{"LOW", "MID", "HIGH"}},
					"description":        map[string]interface{}{"type": "string", "minLength": 1},
					"estimated_duration": map[string]interface{}{"type": "string"},
				},
			},
		},
	},
}

var overviewSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"summary", "tasks", "team_roles"},
	"properties": map[string]interface{}{
		"summary": map[string]interface{}{"type": "string"},
		"tasks": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "object"},
		},
		"team_roles": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": map[string]interface{}{"type": "string"},
		},
		"tech_stack": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"progress": map[string]interface{}{
			"type": "object",
			"additionalProperties": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
	},
}

var summarySchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"summary"},
	"properties": map[string]interface{}{
		"summary": map[string]interface{}{"type": "string", "minLength": 1},
	},
}

// schemaFor returns the schema document governing the given kind.
func schemaFor(kind models.PromptKind) map[string]interface{} {
	switch kind {
	case models.PromptKindTickets:
		return ticketListSchema
	case models.PromptKindSummary:
		return summarySchema
	default:
		return overviewSchema
	}
}

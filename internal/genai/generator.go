// Package genai calls the external text-generation service.
package genai

import "context"

// Generator produces raw text for a finalized prompt. The dispatcher depends
// on this interface so tests can substitute a deterministic fake.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// Package extraction turns raw generated text into a validated typed result.
package extraction

import "strings"

// Normalize strips the code-fence wrapper models habitually add around JSON
// output. Only anchored fences are removed: the text must start and end with
// fence markers for anything to be stripped, so interior backticks survive.
// Normalize never fails and is idempotent.
func Normalize(raw string) string {
	text := strings.TrimSpace(raw)

	if !strings.HasPrefix(text, "```") {
		return text
	}

	rest := text[len("```"):]

	// Drop the optional language tag on the opening fence line. The tag may
	// sit on its own line or be glued straight onto the payload.
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 && isLanguageTag(strings.TrimSpace(rest[:idx])) {
		rest = rest[idx+1:]
	} else {
		i := 0
		for i < len(rest) && isTagChar(rest[i]) {
			i++
		}
		if i > 0 && i < len(rest) && (rest[i] == '{' || rest[i] == '[') {
			rest = rest[i:]
		}
	}

	if !strings.HasSuffix(strings.TrimSpace(rest), "```") {
		return text
	}
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, "```")

	return strings.TrimSpace(rest)
}

// isLanguageTag reports whether s looks like a fence language tag ("json",
// "JSON", "") rather than the start of the payload itself.
func isLanguageTag(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isTagChar(s[i]) {
			return false
		}
	}
	return true
}

func isTagChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

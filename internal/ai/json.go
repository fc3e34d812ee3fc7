package ai

import "strings"

// CleanJSON strips markdown code fences and any prose around the outermost
// JSON object in a model reply. A reply whose top level is an array is
// returned unwrapped so callers reject it rather than read an inner object.
func CleanJSON(response string) string {
	s := strings.TrimSpace(response)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	if bracket := strings.Index(s, "["); bracket >= 0 && (start < 0 || bracket < start) {
		return s
	}
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

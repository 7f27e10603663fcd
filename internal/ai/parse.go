package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)

// ParseTags extracts tags from a model answer. It accepts a JSON array, an
// object with an "itemTags" array, or plain text with one tag per line or
// comma separated. Tags are trimmed and deduplicated case-insensitively,
// keeping the first spelling and the model's order.
func ParseTags(raw string) []string {
	raw = stripFence(strings.TrimSpace(raw))

	var candidates []string
	if tags, ok := parseJSONTags(raw); ok {
		candidates = tags
	} else {
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			// Skip common headers or non-item lines
			if line == "" || strings.HasPrefix(line, "Here") || strings.HasPrefix(line, "Based on") || strings.HasSuffix(line, ":") {
				continue
			}
			line = listMarker.ReplaceAllString(line, "")
			candidates = append(candidates, strings.Split(line, ",")...)
		}
	}

	seen := make(map[string]bool, len(candidates))
	tags := make([]string, 0, len(candidates))
	for _, c := range candidates {
		tag := strings.Trim(strings.TrimSpace(c), `"'`)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	return tags
}

func parseJSONTags(raw string) ([]string, bool) {
	if start, end := strings.Index(raw, "["), strings.LastIndex(raw, "]"); start >= 0 && end > start {
		var tags []string
		if err := json.Unmarshal([]byte(raw[start:end+1]), &tags); err == nil {
			return tags, true
		}
	}
	var obj struct {
		ItemTags []string `json:"itemTags"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err == nil && obj.ItemTags != nil {
		return obj.ItemTags, true
	}
	return nil, false
}

// ParseRoom reduces a model answer to a single room name: the first non-empty
// line with quotes, trailing punctuation and a "Room:" style prefix removed.
func ParseRoom(raw string) string {
	raw = stripFence(strings.TrimSpace(raw))

	var obj struct {
		SuggestedRoom string `json:"suggestedRoom"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err == nil && obj.SuggestedRoom != "" {
		raw = obj.SuggestedRoom
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, after, ok := strings.Cut(line, ":"); ok {
			line = strings.TrimSpace(after)
		}
		return strings.TrimSpace(strings.Trim(line, `"'.!*`))
	}
	return ""
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

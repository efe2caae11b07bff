package engine

import (
	"encoding/json"
	"regexp"
	"strings"
)

// JSON extraction from free-form LLM output. Providers wrap the requested
// object in narrative text or markdown fences often enough that a single
// regex is not reliable; extraction is an ordered chain of strategies, each
// pure, first match wins.

var (
	jsonFenceRE = regexp.MustCompile("(?s)```json\\s*\n(.*?)\n```")
	anyFenceRE  = regexp.MustCompile("(?s)```\\s*\n(.*?)\n```")
)

type extractor func(string) (string, bool)

// extractors are tried in order: labeled fence, any fence, first balanced
// brace span, then the whole text as-is.
var extractors = []extractor{
	func(s string) (string, bool) {
		if m := jsonFenceRE.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
		return "", false
	},
	func(s string) (string, bool) {
		if m := anyFenceRE.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
		return "", false
	},
	func(s string) (string, bool) {
		if span := braceSpan(s); span != "" {
			return span, true
		}
		return "", false
	},
	func(s string) (string, bool) { return s, true },
}

// braceSpan returns the first complete {...} object in s, tracking brace
// depth and string literals so nested objects are kept intact.
func braceSpan(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inStr := false
	var prev byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
		prev = c
	}
	return ""
}

// ExtractJSONObject pulls the most plausible JSON object out of raw LLM text.
func ExtractJSONObject(raw string) string {
	var content string
	for _, ex := range extractors {
		if got, ok := ex(raw); ok {
			content = got
			break
		}
	}
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "{") {
		if idx := strings.IndexByte(content, '{'); idx >= 0 {
			content = content[idx:]
		}
	}
	return content
}

// ParseResult is the outcome of parsing a provider response. Failure is data,
// never a panic or error crossing this boundary.
type ParseResult struct {
	Tasks              []RawOrganizedTask
	Err                string
	RawResponsePreview string
	RawResponse        string
}

// ParseOrganizeResponse extracts and strictly parses the organizedTasks
// envelope from raw provider text. On JSON failure the result carries the
// parse error and a short preview of the content that failed; on a missing
// or non-array organizedTasks field it carries the full raw response.
func ParseOrganizeResponse(raw string) ParseResult {
	content := ExtractJSONObject(raw)

	var envelope struct {
		OrganizedTasks json.RawMessage `json:"organizedTasks"`
	}
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		metricParseErrors.Add(1)
		return ParseResult{
			Err:                "Failed to parse AI response JSON: " + err.Error(),
			RawResponsePreview: TruncateRunes(content, 200, "..."),
		}
	}

	trimmed := strings.TrimSpace(string(envelope.OrganizedTasks))
	if trimmed == "" || !strings.HasPrefix(trimmed, "[") {
		metricParseErrors.Add(1)
		return ParseResult{
			Err:         "Invalid AI response format - missing tasks array",
			RawResponse: raw,
		}
	}

	var tasks []RawOrganizedTask
	if err := json.Unmarshal(envelope.OrganizedTasks, &tasks); err != nil {
		metricParseErrors.Add(1)
		return ParseResult{
			Err:                "Failed to parse AI response JSON: " + err.Error(),
			RawResponsePreview: TruncateRunes(content, 200, "..."),
		}
	}
	return ParseResult{Tasks: tasks}
}

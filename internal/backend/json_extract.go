package backend

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// codeBlockPattern matches markdown code blocks with optional language tag.
var codeBlockPattern = regexp.MustCompile(`(?s)` + "```" + `(\w*)\s*\n(.+?)\n` + "```")

// ExtractJSON pulls a JSON document out of an LLM reply that may be wrapped
// in markdown or surrounded by prose. Priority:
//  1. JSON inside ```json ... ``` or untagged ``` ... ``` fences
//  2. the first balanced {...} or [...] in the text
func ExtractJSON(response string) (string, error) {
	if jsonStr, found := extractFromCodeBlock(response); found {
		return jsonStr, nil
	}
	if jsonStr, found := extractBareJSON(response); found {
		return jsonStr, nil
	}
	return "", fmt.Errorf("no valid JSON found in response")
}

func extractFromCodeBlock(response string) (string, bool) {
	for _, match := range codeBlockPattern.FindAllStringSubmatch(response, -1) {
		if len(match) < 3 {
			continue
		}
		lang := strings.ToLower(match[1])
		if lang != "" && lang != "json" {
			continue
		}
		content := strings.TrimSpace(match[2])
		if (strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")) && json.Valid([]byte(content)) {
			return content, true
		}
	}
	return "", false
}

func extractBareJSON(response string) (string, bool) {
	start := -1
	for i := 0; i < len(response); i++ {
		if response[i] == '{' || response[i] == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	candidate := balancedPrefix(response[start:])
	if candidate != "" && json.Valid([]byte(candidate)) {
		return candidate, true
	}
	return "", false
}

// balancedPrefix returns the shortest prefix of s that closes the bracket
// it opens with, respecting strings and escapes. Empty if unbalanced.
func balancedPrefix(s string) string {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"geniusdesign/internal/storage"
)

// ErrNoJSON is returned when model text holds no parsable object.
var ErrNoJSON = errors.New("response contained no JSON object")

// ExtractJSON decodes the JSON object in content into v. Models sometimes
// wrap the object in prose or code fences, so when the whole text does not
// parse the span from the first "{" to the last "}" is tried.
func ExtractJSON(content string, v any) error {
	if err := json.Unmarshal([]byte(content), v); err == nil {
		return nil
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return nil
}

// ParseSuggestions reads the three suggestion lists out of model text.
func ParseSuggestions(content string) (storage.Suggestions, error) {
	var s storage.Suggestions
	if err := ExtractJSON(content, &s); err != nil {
		return storage.Suggestions{}, fmt.Errorf("gemini: parse suggestions: %w", err)
	}
	s.General = compact(s.General)
	s.LowBudget = compact(s.LowBudget)
	s.DIY = compact(s.DIY)
	return s, nil
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

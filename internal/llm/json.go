package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON strips an optional fenced code block from a completion and
// returns the inner payload. Models asked for JSON frequently wrap the reply
// in ```json fences.
func ExtractJSON(reply string) string {
	s := strings.TrimSpace(reply)

	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}

	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// UnmarshalReply extracts the JSON payload from a completion and decodes it
// into v. This is the single designated parse path for JSON-shaped replies;
// any failure is reported to the caller as one error.
func UnmarshalReply(reply string, v interface{}) error {
	payload := ExtractJSON(reply)
	if payload == "" {
		return fmt.Errorf("empty completion")
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("unparsable completion: %w", err)
	}
	return nil
}

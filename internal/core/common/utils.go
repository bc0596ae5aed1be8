package common

import (
	"encoding/json"
	"fmt"
)

// ParseJSON extracts and unmarshals the JSON object embedded in a model
// reply. Suggestion generators often wrap their payload in markdown
// fences or prose; everything outside the outermost braces is dropped.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	payload := response

	start := -1
	end := -1
	for i, c := range payload {
		if c == '{' {
			start = i
			break
		}
	}
	for i := len(payload) - 1; i >= 0; i-- {
		if payload[i] == '}' {
			end = i + 1
			break
		}
	}

	if start != -1 && end != -1 && start < end {
		payload = payload[start:end]
	} else if start == -1 {
		return zero, fmt.Errorf("reply contains no JSON object")
	}

	var result T
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return zero, fmt.Errorf("unmarshal model reply: %w\nData: %s", err, payload)
	}

	return result, nil
}

package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/intercept/internal/ir"
)

// marshalFailures converts assertion failure messages to canonical JSON TEXT.
func marshalFailures(failures []string) (string, error) {
	if failures == nil {
		failures = []string{}
	}
	data, err := ir.MarshalCanonical(failures)
	if err != nil {
		return "", fmt.Errorf("marshal failures: %w", err)
	}
	return string(data), nil
}

// unmarshalFailures parses failure messages, returning an empty slice (not
// nil) for an empty list.
func unmarshalFailures(data string) ([]string, error) {
	failures := []string{}
	if data == "" || data == "[]" {
		return failures, nil
	}
	if err := json.Unmarshal([]byte(data), &failures); err != nil {
		return nil, fmt.Errorf("unmarshal failures: %w", err)
	}
	return failures, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: onion
description: "Outer interceptor wraps the body"
interceptors:
  - { name: foo, behavior: wrap }
  - { name: bar, behavior: wrap }
assertions:
  - type: trace_equals
    events: ["before:foo", "before:bar", "test", "after:bar", "after:foo"]
`

const failingScenario = `name: wrong_order
interceptors:
  - { name: foo, behavior: wrap }
  - { name: bar, behavior: wrap }
assertions:
  - type: trace_equals
    events: ["before:bar", "before:foo", "test", "after:foo", "after:bar"]
`

const skippingScenario = `name: skipped
interceptors:
  - { name: auth, behavior: skip }
assertions:
  - type: error_code
    code: NEVER_INVOKED
`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeResponse decodes a CLIResponse and its data payload into data.
func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
		RunID  string          `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error, RunID: raw.RunID}
}

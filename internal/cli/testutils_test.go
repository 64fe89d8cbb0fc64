package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/peterldowns/testy/assert"
)

const twoAgentRequestYAML = `type: auction_request
auction_id: cli_two_agents
epsilon: 0.01
goods:
  - id: A
  - id: B
agents:
  - id: Agent1
    endowment: [A]
    preferences:
      - bundle: [A, B]
        value: 10
      - bundle: [A]
        value: 5
  - id: Agent2
    endowment: [B]
    preferences:
      - bundle: [A, B]
        value: 8
      - bundle: [B]
        value: 4
`

const unknownGoodRequestYAML = `auction_id: cli_unknown_good
epsilon: 0.01
goods:
  - id: A
agents:
  - id: Agent1
    endowment: [Z]
    preferences: []
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// execute runs the root command with args and returns stdout and the command error
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

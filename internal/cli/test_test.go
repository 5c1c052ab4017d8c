package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: ready_deeplink
description: deep link on a ready runtime
initial_state: ready
steps:
  - event:
      pinpoint.deeplink: "myapp://x"
assertions:
  - type: deliveries
    count: 1
`

const failingScenario = `
name: wrong_count
description: expects two deliveries from one event
initial_state: ready
steps:
  - event: {}
assertions:
  - type: deliveries
    count: 2
`

func TestTest_AllPass(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ready_deeplink.yaml", passingScenario)

	stdout, _, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ ready_deeplink")
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
}

func TestTest_Failure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ready_deeplink.yaml", passingScenario)
	writeFile(t, dir, "wrong_count.yaml", failingScenario)

	stdout, _, err := execute(t, "--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
}

func TestTest_Filter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ready_deeplink.yaml", passingScenario)
	writeFile(t, dir, "wrong_count.yaml", failingScenario)

	stdout, _, err := execute(t, "test", dir, "--filter", "ready_*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
}

func TestTest_UpdateThenCompareGolden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ready_deeplink.yaml", passingScenario)

	stdout, _, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "golden updated")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "ready_deeplink.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"ready_deeplink"`)

	_, _, err = execute(t, "test", dir)
	require.NoError(t, err, "trace matches the golden file it just wrote")

	writeFile(t, dir, "golden/ready_deeplink.golden", `{"scenario_name":"ready_deeplink","trace":[]}`)
	stdout, _, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "trace does not match golden file")
}

func TestTest_LoadError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\n")

	stdout, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestTest_NoScenarios(t *testing.T) {
	stdout, _, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestTest_MissingDir(t *testing.T) {
	_, _, err := execute(t, "test", filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

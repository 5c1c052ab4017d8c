package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
name: minimal
description: one event
steps:
  - event: {}
assertions:
  - type: pending
    count: 1
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.Nil(t, s.Config)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, StepEvent, s.Steps[0].Kind())
	assert.NotNil(t, s.Steps[0].Event, "empty mapping still counts as an event")
}

func TestParseScenario_ConfigDefaults(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: c
description: d
config:
  package_name: com.acme.shop
steps:
  - ready: true
assertions:
  - type: pending
`))
	require.NoError(t, err)
	require.NotNil(t, s.Config)
	assert.Equal(t, "notification", s.Config.PayloadKey)
	assert.Equal(t, "remoteNotificationOpened", s.Config.EventName)
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: minimal + "flow_token: x\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: "description: d\nsteps: [{ready: true}]\nassertions: [{type: pending}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\nsteps: [{ready: true}]\nassertions: [{type: pending}]\n",
			want: "description is required",
		},
		{
			name: "no steps",
			yaml: "name: n\ndescription: d\nassertions: [{type: pending}]\n",
			want: "steps list is required",
		},
		{
			name: "no assertions",
			yaml: "name: n\ndescription: d\nsteps: [{ready: true}]\n",
			want: "assertions list is required",
		},
		{
			name: "two actions in one step",
			yaml: "name: n\ndescription: d\nsteps: [{ready: true, missing_payload: true}]\nassertions: [{type: pending}]\n",
			want: "steps[0]: exactly one action",
		},
		{
			name: "empty step",
			yaml: "name: n\ndescription: d\nsteps: [{}]\nassertions: [{type: pending}]\n",
			want: "steps[0]: exactly one action",
		},
		{
			name: "bad state",
			yaml: "name: n\ndescription: d\ninitial_state: booting\nsteps: [{ready: true}]\nassertions: [{type: pending}]\n",
			want: "initial_state",
		},
		{
			name: "bad config",
			yaml: "name: n\ndescription: d\nconfig: {log_level: loud}\nsteps: [{ready: true}]\nassertions: [{type: pending}]\n",
			want: "config:",
		},
		{
			name: "unknown assertion",
			yaml: "name: n\ndescription: d\nsteps: [{ready: true}]\nassertions: [{type: trace_order}]\n",
			want: `unknown assertion type "trace_order"`,
		},
		{
			name: "intent without kind",
			yaml: "name: n\ndescription: d\nsteps: [{ready: true}]\nassertions: [{type: intent, invocation: inv-1}]\n",
			want: "kind is required for intent",
		},
		{
			name: "error without code",
			yaml: "name: n\ndescription: d\nsteps: [{ready: true}]\nassertions: [{type: error, invocation: inv-1}]\n",
			want: "code is required for error",
		},
		{
			name: "negative count",
			yaml: "name: n\ndescription: d\nsteps: [{ready: true}]\nassertions: [{type: deliveries, count: -1}]\n",
			want: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestStep_Kinds(t *testing.T) {
	assert.Equal(t, StepFailDelivery, Step{FailDelivery: "x"}.Kind())
	assert.Equal(t, StepFailForeground, Step{FailForeground: "x"}.Kind())
	assert.Equal(t, StepMissingPayload, Step{MissingPayload: true}.Kind())
	assert.Equal(t, "", Step{}.Kind())
	assert.Equal(t, []string{StepEvent, StepReady}, Step{Event: map[string]any{}, Ready: true}.Kinds())
}

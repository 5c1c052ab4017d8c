package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pushopen/internal/pipeline"
)

func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name, "golden file is named after the scenario")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
		})
	}
}

func TestRun_ColdStart(t *testing.T) {
	result, err := Run(&Scenario{
		Name:         "cold",
		Description:  "cold start",
		InitialState: "uninitialized",
		Steps: []Step{
			{Event: map[string]any{"pinpoint.deeplink": "myapp://promo/42"}},
			{Event: map[string]any{}},
		},
		Assertions: []Assertion{{Type: AssertPending, Count: 2}},
	})
	require.NoError(t, err)
	require.True(t, result.Pass, result.Errors)

	assert.Equal(t, 1, result.InitRequests, "second invocation sees Initializing")
	assert.Equal(t, 0, result.Deliveries)
	assert.Equal(t, 2, result.ForegroundCount)

	first := result.Reports["inv-1"]
	require.NotNil(t, first)
	assert.True(t, first.InitRequested)
	assert.Equal(t, pipeline.DeliveryDeferred, first.Delivery)
	assert.False(t, result.Reports["inv-2"].InitRequested)
}

func TestRun_FailingAssertion(t *testing.T) {
	result, err := Run(&Scenario{
		Name:         "wrong",
		Description:  "expects a delivery that never happens",
		InitialState: "initializing",
		Steps:        []Step{{Event: map[string]any{}}},
		Assertions: []Assertion{
			{Type: AssertDeliveries, Count: 1},
			{Type: AssertIntent, Invocation: "inv-1", Kind: "DeepLinkView"},
			{Type: AssertError, Invocation: "inv-9", Code: "DELIVERY_FAILED"},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "Assertion failed: deliveries")
	assert.Contains(t, result.Errors[1], "DefaultEntry")
	assert.Contains(t, result.Errors[2], "no such invocation")
}

func TestRun_ReadyTwice(t *testing.T) {
	_, err := Run(&Scenario{
		Name:         "twice",
		Description:  "ready host cannot become ready again",
		InitialState: "ready",
		Steps:        []Step{{Ready: true}},
		Assertions:   []Assertion{{Type: AssertPending}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0] (ready)")
}

func TestRun_CustomPayloadKey(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: custom_key
description: payload under a configured key
initial_state: ready
config:
  package_name: com.acme.shop
  launch_components:
    com.acme.shop: com.acme.shop.Splash
  payload_key: push
steps:
  - event: {}
assertions:
  - type: intent
    invocation: inv-1
    kind: DefaultEntry
    target: com.acme.shop.Splash
  - type: deliveries
    count: 1
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_DeferredDeliveryFailure(t *testing.T) {
	result, err := Run(&Scenario{
		Name:         "deferred_fail",
		Description:  "deferred delivery rejected by the app layer",
		InitialState: "initializing",
		Steps: []Step{
			{Event: map[string]any{}},
			{FailDelivery: "bridge torn down"},
			{Ready: true},
		},
		Assertions: []Assertion{
			{Type: AssertError, Invocation: "inv-1", Code: "DELIVERY_FAILED"},
			{Type: AssertDeliveries, Count: 0},
			{Type: AssertPending, Count: 0},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, TraceDelivered, last.Type)
	assert.Equal(t, "DELIVERY_FAILED", last.Status)
}

func TestSnapshot(t *testing.T) {
	data, err := Snapshot("s", []TraceEvent{
		{Seq: 1, Type: TraceReady},
		{Seq: 2, Type: TraceDelivered, Invocation: "inv-1", Status: "ok"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"s","trace":[{"seq":1,"type":"ready"},{"invocation":"inv-1","seq":2,"status":"ok","type":"delivered"}]}`,
		string(data),
	)
}

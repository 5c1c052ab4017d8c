package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pushopen/internal/payload"
)

// Snapshot renders a scenario trace as canonical JSON for golden comparison.
// Entries keep only the fields that are set, so the bytes are stable.
func Snapshot(scenarioName string, trace []TraceEvent) ([]byte, error) {
	entries := make([]any, len(trace))
	for i, ev := range trace {
		m := map[string]any{
			"seq":  ev.Seq,
			"type": ev.Type,
		}
		if ev.Invocation != "" {
			m["invocation"] = ev.Invocation
		}
		if ev.Delivery != "" {
			m["delivery"] = ev.Delivery
			m["init_requested"] = ev.InitRequested
		}
		if ev.Intent != nil {
			m["intent"] = map[string]any{
				"kind":   ev.Intent.Kind,
				"target": ev.Intent.Target,
				"flags":  ev.Intent.Flags,
			}
		}
		if len(ev.Errors) > 0 {
			m["errors"] = ev.Errors
		}
		if ev.Status != "" {
			m["status"] = ev.Status
		}
		if ev.Reason != "" {
			m["reason"] = ev.Reason
		}
		entries[i] = m
	}

	v, _ := payload.FromAny(map[string]any{
		"scenario_name": scenarioName,
		"trace":         entries,
	})
	return payload.MarshalCanonical(v)
}

// RunWithGolden runs a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's trace against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result.Trace)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}

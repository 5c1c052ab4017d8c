package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/pushopen/internal/pipeline"
)

// AssertionError is a failed assertion with the trace for context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s", ev.Seq, ev.Type)
		if ev.Invocation != "" {
			fmt.Fprintf(&buf, " %s", ev.Invocation)
		}
		if ev.Status != "" {
			fmt.Fprintf(&buf, " %s", ev.Status)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertIntent:
		return assertIntent(result, a)
	case AssertDeliveries:
		return assertCount(result, a, result.Deliveries)
	case AssertInitRequests:
		return assertCount(result, a, result.InitRequests)
	case AssertForegroundCount:
		return assertCount(result, a, result.ForegroundCount)
	case AssertPending:
		return assertCount(result, a, result.Pending)
	case AssertError:
		return assertError(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertCount(result *Result, a Assertion, actual int) error {
	if actual == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d", a.Count),
		Actual:   fmt.Sprintf("%d", actual),
		Trace:    result.Trace,
	}
}

func assertIntent(result *Result, a Assertion) error {
	r, ok := result.Reports[a.Invocation]
	if !ok {
		return &AssertionError{
			Type:     AssertIntent,
			Expected: fmt.Sprintf("invocation %s", a.Invocation),
			Actual:   "no such invocation",
			Trace:    result.Trace,
		}
	}

	if r.PayloadErr != nil || r.LaunchErr != nil {
		return &AssertionError{
			Type:     AssertIntent,
			Expected: fmt.Sprintf("%s intent", a.Kind),
			Actual:   fmt.Sprintf("no intent: %v", r.Err()),
			Trace:    result.Trace,
		}
	}

	kind := r.Intent.Kind.String()
	target := r.Intent.Target()
	if kind != a.Kind || (a.Target != "" && target != a.Target) {
		return &AssertionError{
			Type:     AssertIntent,
			Expected: fmt.Sprintf("%s %s", a.Kind, a.Target),
			Actual:   fmt.Sprintf("%s %s", kind, target),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertError(result *Result, a Assertion) error {
	r, ok := result.Reports[a.Invocation]
	if !ok {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("invocation %s with %s", a.Invocation, a.Code),
			Actual:   "no such invocation",
			Trace:    result.Trace,
		}
	}

	var codes []string
	for _, err := range []error{r.PayloadErr, r.LaunchErr, r.ForegroundErr, r.DeliveryErr} {
		if code := pipeline.CodeOf(err); code != "" {
			if string(code) == a.Code {
				return nil
			}
			codes = append(codes, string(code))
		}
	}
	// Deferred delivery outcomes only appear in the trace.
	for _, ev := range result.Trace {
		if ev.Type == TraceDelivered && ev.Invocation == a.Invocation && ev.Status == a.Code {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertError,
		Expected: a.Code,
		Actual:   fmt.Sprintf("%v", codes),
		Trace:    result.Trace,
	}
}

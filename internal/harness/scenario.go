package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pushopen/internal/appctx"
	"github.com/roach88/pushopen/internal/config"
)

// Scenario is one notification-open test case.
type Scenario struct {
	// Name identifies the scenario and its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Config is the pipeline configuration. Nil means config.Default().
	Config *config.Config `yaml:"config,omitempty"`

	// InitialState is the runtime state before the first step.
	// Default: uninitialized.
	InitialState string `yaml:"initial_state,omitempty"`

	Steps []Step `yaml:"steps"`

	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scenario action. Exactly one field is set.
type Step struct {
	// Event is the payload mapping of a system event.
	Event map[string]any `yaml:"event,omitempty"`

	// MissingPayload sends a system event with no payload container.
	MissingPayload bool `yaml:"missing_payload,omitempty"`

	// Ready completes runtime initialization.
	Ready bool `yaml:"ready,omitempty"`

	// FailDelivery makes the application layer reject later events.
	FailDelivery string `yaml:"fail_delivery,omitempty"`

	// FailForeground makes the activation collaborator reject later intents.
	FailForeground string `yaml:"fail_foreground,omitempty"`
}

// Step kinds.
const (
	StepEvent          = "event"
	StepMissingPayload = "missing_payload"
	StepReady          = "ready"
	StepFailDelivery   = "fail_delivery"
	StepFailForeground = "fail_foreground"
)

// Kinds returns the kinds set on the step.
func (s Step) Kinds() []string {
	var kinds []string
	if s.Event != nil {
		kinds = append(kinds, StepEvent)
	}
	if s.MissingPayload {
		kinds = append(kinds, StepMissingPayload)
	}
	if s.Ready {
		kinds = append(kinds, StepReady)
	}
	if s.FailDelivery != "" {
		kinds = append(kinds, StepFailDelivery)
	}
	if s.FailForeground != "" {
		kinds = append(kinds, StepFailForeground)
	}
	return kinds
}

// Kind returns the step's single kind, or "" when not exactly one is set.
func (s Step) Kind() string {
	kinds := s.Kinds()
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Assertion is one expected outcome.
type Assertion struct {
	// Type selects the check (intent, deliveries, init_requests,
	// foreground_count, pending, error).
	Type string `yaml:"type"`

	// Invocation names the invocation (intent, error).
	Invocation string `yaml:"invocation,omitempty"`

	// Kind is the expected intent kind (intent).
	Kind string `yaml:"kind,omitempty"`

	// Target is the expected intent target, URI or component (intent).
	Target string `yaml:"target,omitempty"`

	// Count is the expected number (deliveries, init_requests,
	// foreground_count, pending).
	Count int `yaml:"count,omitempty"`

	// Code is the expected pipeline error code (error).
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertIntent          = "intent"
	AssertDeliveries      = "deliveries"
	AssertInitRequests    = "init_requests"
	AssertForegroundCount = "foreground_count"
	AssertPending         = "pending"
	AssertError           = "error"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.InitialState != "" {
		if _, err := appctx.ParseState(s.InitialState); err != nil {
			return fmt.Errorf("initial_state: %w", err)
		}
	}

	if s.Config != nil {
		s.Config.ApplyDefaults()
		if err := s.Config.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	for i, step := range s.Steps {
		if kinds := step.Kinds(); len(kinds) != 1 {
			return fmt.Errorf("steps[%d]: exactly one action required, got %v", i, kinds)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertIntent:
		if a.Invocation == "" {
			return fmt.Errorf("assertions[%d]: invocation is required for intent", index)
		}
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for intent", index)
		}
	case AssertDeliveries, AssertInitRequests, AssertForegroundCount, AssertPending:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertError:
		if a.Invocation == "" {
			return fmt.Errorf("assertions[%d]: invocation is required for error", index)
		}
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

package harness

import "github.com/roach88/pushopen/internal/pipeline"

// Trace entry types.
const (
	TraceInvocation    = "invocation"
	TraceDelivered     = "delivered"
	TraceReady         = "ready"
	TraceInitStarted   = "init_started"
	TraceFailDelivery  = "fail_delivery"
	TraceFailForeground = "fail_foreground"
)

// TraceEvent is one observable step of a scenario run.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Type string `json:"type"`

	// Invocation is set for invocation and delivered entries.
	Invocation string `json:"invocation,omitempty"`

	// Delivery is the delivery mode (invocation entries).
	Delivery string `json:"delivery,omitempty"`

	// InitRequested is set on invocation entries.
	InitRequested bool `json:"init_requested,omitempty"`

	// Intent is the resolved intent (invocation entries), nil when none.
	Intent *TraceIntent `json:"intent,omitempty"`

	// Errors are the pipeline error codes known when Handle returned.
	Errors []string `json:"errors,omitempty"`

	// Status is "ok" or a pipeline error code (delivered entries).
	Status string `json:"status,omitempty"`

	// Reason is the injected failure reason (fail_* entries).
	Reason string `json:"reason,omitempty"`
}

// TraceIntent is the traced form of a launch intent.
type TraceIntent struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
	Flags  string `json:"flags"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	Trace []TraceEvent `json:"trace"`

	// Errors are assertion failure messages. Empty when Pass.
	Errors []string `json:"errors,omitempty"`

	// Reports holds the pipeline report of every invocation, by ID.
	Reports map[string]*pipeline.Report `json:"-"`

	// Counters observed after the last step.
	Deliveries      int `json:"deliveries"`
	InitRequests    int `json:"init_requests"`
	ForegroundCount int `json:"foreground_count"`
	Pending         int `json:"pending"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Reports: make(map[string]*pipeline.Report),
	}
}

// AddError records an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

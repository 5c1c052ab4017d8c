// Package harness runs notification-open scenarios against the real pipeline.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: cold_start_default_entry
//	description: "Empty payload while the runtime is uninitialized"
//	initial_state: uninitialized
//	config:
//	  package_name: com.acme.shop
//	  launch_components:
//	    com.acme.shop: com.acme.shop.MainActivity
//	steps:
//	  - event: {}
//	  - ready: true
//	assertions:
//	  - type: intent
//	    invocation: inv-1
//	    kind: DefaultEntry
//	    target: com.acme.shop.MainActivity
//	  - type: deliveries
//	    count: 1
//
// Steps, each naming exactly one action:
//
//   - event: payload mapping attached under the configured payload key
//   - missing_payload: a system event with no payload container
//   - ready: complete runtime initialization
//   - fail_delivery: make later deliveries fail with the given reason
//   - fail_foreground: make later foreground requests fail with the given reason
//
// # Assertion Types
//
//   - intent: the resolved launch intent of one invocation
//   - deliveries: number of events the application layer accepted
//   - init_requests: number of times initialization began
//   - foreground_count: number of foreground requests made
//   - pending: number of deliveries still waiting for the runtime
//   - error: an invocation reported the given error code
//
// # Deterministic Testing
//
// Invocation IDs are sequential (inv-1, inv-2, ...) and every trace entry is
// stamped by testutil.DeterministicClock, so a scenario's trace is identical
// across runs and can be compared against a golden file.
package harness

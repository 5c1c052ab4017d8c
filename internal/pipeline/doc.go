// Package pipeline wires the notification-open path together.
//
// For each system event the Orchestrator extracts the payload, then runs two
// independent paths over it:
//
//   - gate + deliver: hand the payload to the application layer exactly once,
//     deferring until the runtime is Ready
//   - resolve + foreground: build a launch Intent and pass it to the OS
//     activation collaborator
//
// A failure on one path never suppresses the other. Every failure is
// contained, logged here and reported on the returned Report; none is fatal
// to the host.
//
// Handle spawns no goroutines. A deferred delivery runs on whichever
// goroutine drives the runtime's Ready transition.
package pipeline

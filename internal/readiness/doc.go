// Package readiness guarantees that a delivery callback runs exactly once,
// and only after the application runtime is Ready.
//
// Per invocation the Gate behaves as a small state machine:
//
//   - Runtime already Ready: the callback runs synchronously and no
//     registration is created.
//   - Runtime Uninitialized or Initializing: one Registration is bound to the
//     became-Ready transition. If the runtime was Uninitialized the host is
//     also asked to begin initialization.
//   - On the transition the Registration fires its callback and then removes
//     itself, so no later transition can trigger it again.
//
// The wait is a continuation, not a blocking call: Await always returns
// immediately. Registrations of concurrent invocations are independent and
// may be outstanding at the same time. A registration whose host process dies
// before Ready is simply abandoned.
package readiness

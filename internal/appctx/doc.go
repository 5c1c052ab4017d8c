// Package appctx models the application runtime context that notification
// events are delivered into.
//
// The runtime is owned by the host process. The pipeline only observes it:
// it reads the current State, subscribes once to the became-Ready transition
// and may ask the host to begin initialization. Its lifecycle is monotonic:
//
//	Uninitialized → Initializing → Ready
//
// There is no regression to an earlier state within one process lifetime.
//
// Host is an in-process Runtime used by the developer CLI and the scenario
// harness. Real embedders implement Runtime over their own application layer.
package appctx

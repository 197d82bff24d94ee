// Package scheduler decides which build nodes are ready to run.
//
// The scheduler keeps one counter of unmet dependencies per node. Completing
// a node decrements the counters of its dependents and returns the ones that
// reached zero. Failing a node marks its transitive dependents as skipped
// so they are never handed to a worker.
//
// The scheduler does not run anything: "what can run" lives here, "how to run
// it" lives in the executor.
package scheduler

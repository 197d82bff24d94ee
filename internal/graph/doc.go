// Package graph is a facade over the two stores that make up a build graph:
// the static topology (topologystore) and the per-node execution state
// (nodestore).
//
//	┌─────────────────────────────────────┐
//	│           Graph Facade              │
//	└──────────┬────────────┬─────────────┘
//	           ▼            ▼
//	  ┌────────────┐  ┌────────────┐
//	  │  Topology  │  │ Node State │
//	  │ (Structure)│  │  (Status)  │
//	  └────────────┘  └────────────┘
//
// The pipeline populates the topology directly. The scheduler and the
// executor only talk to the Graph: they query nodes and edges and record
// status transitions, outputs and errors.
package graph

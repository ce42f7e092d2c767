// Package flow is a minimal directed-graph execution engine. Stages
// implement a three-phase contract (prepare, execute, finalize) or its
// batch fan-out variant; edges are keyed by the outcome label finalize
// returns. The engine retries only the execute phase, with a fixed wait
// per node policy, and ends a run successfully when a stage finishes
// with an outcome that has no registered successor.
package flow

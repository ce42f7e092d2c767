// Package workflow composes the distillation pipeline: it wires the
// node graph, drives a run through the flow engine, and records the
// outcome in the ledger and via notifications.
package workflow

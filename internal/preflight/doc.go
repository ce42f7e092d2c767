// Package preflight runs pre-run readiness checks: output directories
// writable and the generation backend reachable.
package preflight

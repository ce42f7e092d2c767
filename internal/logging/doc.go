// Package logging centralizes slog construction and the structured field
// vocabulary shared by the pipeline. Console output uses a compact single-line
// handler; JSON output is available for machine consumption.
package logging

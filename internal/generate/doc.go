// Package generate provides the OpenAI-compatible chat-completions
// client the layer nodes use to produce derivative text. Calls are
// single-attempt: retry policy lives in the flow engine.
package generate

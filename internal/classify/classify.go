// Package classify detects what kind of content source a run was given.
// It is the flow's only branch point: the outcome label it returns is
// the detected input type.
package classify

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"distill/internal/flow"
	"distill/internal/state"
)

var documentExtensions = map[string]struct{}{
	".pdf":  {},
	".docx": {},
	".doc":  {},
	".rtf":  {},
	".odt":  {},
}

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
	".tiff": {},
}

// Detect returns the input type for a raw source argument. Detection
// never fails; anything unrecognized is treated as plain text.
func Detect(source string) state.InputType {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return state.InputText
	}
	if u, err := url.Parse(trimmed); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return state.InputURL
		}
	}
	ext := strings.ToLower(filepath.Ext(trimmed))
	if _, ok := documentExtensions[ext]; ok {
		return state.InputDocument
	}
	if _, ok := imageExtensions[ext]; ok {
		return state.InputImage
	}
	return state.InputText
}

// Node classifies the run's source and records the result.
type Node struct{}

// NewNode returns the classification node.
func NewNode() *Node { return &Node{} }

func (n *Node) Name() string { return "classify" }

func (n *Node) Prepare(ctx context.Context, st *state.State) (any, error) {
	return st.Source(), nil
}

func (n *Node) Execute(ctx context.Context, prepared any) (any, error) {
	source, _ := prepared.(string)
	return Detect(source), nil
}

func (n *Node) Finalize(ctx context.Context, st *state.State, prepared, result any) (flow.Outcome, error) {
	inputType, ok := result.(state.InputType)
	if !ok {
		inputType = state.InputText
	}
	if err := st.SetInputType(inputType); err != nil {
		return "", err
	}
	return flow.Outcome(inputType), nil
}

func (n *Node) RetryPolicy() flow.RetryPolicy { return flow.NoRetry() }

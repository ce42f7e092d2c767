package workflow

import (
	"log/slog"
	"time"

	"distill/internal/artifacts"
	"distill/internal/classify"
	"distill/internal/extract"
	"distill/internal/flow"
	"distill/internal/generate"
	"distill/internal/layers"
	"distill/internal/state"
)

// buildFlow wires the diamond: classify branches on the four input
// types, all converging on extract, then the five layer nodes in
// ascending order, then the terminal save stage.
func (r *Runner) buildFlow(logger *slog.Logger) *flow.Flow {
	retry := flow.RetryPolicy{
		MaxAttempts: r.cfg.Workflow.MaxAttempts,
		Wait:        time.Duration(r.cfg.Workflow.RetryWaitSeconds) * time.Second,
	}
	genOpts := generate.Options{
		Temperature: r.cfg.Generation.Temperature,
		MaxTokens:   r.cfg.Generation.MaxTokens,
	}

	classifyNode := classify.NewNode()
	extractNode := extract.NewNode(r.extractor, retry,
		extract.WithClock(r.now),
		extract.WithNodeLogger(logger))
	saveNode := artifacts.NewSaveNode(r.cfg.Paths.OutputDir, r.writer,
		artifacts.WithSaveLogger(logger))

	opts := []flow.Option{
		flow.WithLogger(logger),
		flow.WithMaxSteps(r.cfg.Workflow.MaxSteps),
		flow.WithBatchWorkers(r.cfg.Workflow.SaveWorkers),
	}
	if r.sleep != nil {
		opts = append(opts, flow.WithSleeper(r.sleep))
	}
	f := flow.New(classifyNode, opts...)

	for _, inputType := range []state.InputType{
		state.InputText, state.InputDocument, state.InputImage, state.InputURL,
	} {
		f.Route(classifyNode, flow.Outcome(inputType), extractNode)
	}

	var previous flow.Stage = extractNode
	for level := 1; level <= state.LayerCount; level++ {
		// Construction cannot fail for levels 1..5.
		node, _ := layers.NewNode(level, r.generator, genOpts, retry,
			layers.WithNodeLogger(logger))
		f.Route(previous, flow.DefaultOutcome, node)
		previous = node
	}
	f.Route(previous, flow.DefaultOutcome, saveNode)
	return f
}

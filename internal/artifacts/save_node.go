package artifacts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"distill/internal/flow"
	"distill/internal/layers"
	"distill/internal/logging"
	"distill/internal/services"
	"distill/internal/state"
)

type renderInput struct {
	meta     Meta
	body     string
	filename string
}

type renderedArtifact struct {
	filename string
	data     []byte
}

// SaveNode is the terminal batch stage: one item per populated layer
// slot in ascending level order. Items render concurrently; all disk
// writes happen sequentially in finalize so a partial failure leaves
// the already-saved prefix recorded in state.
type SaveNode struct {
	directory string
	writer    Writer
	logger    *slog.Logger
}

// SaveOption customizes the save stage.
type SaveOption func(*SaveNode)

// WithSaveLogger attaches a logger for per-artifact write events.
func WithSaveLogger(logger *slog.Logger) SaveOption {
	return func(n *SaveNode) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewSaveNode builds the save stage for the given output directory.
func NewSaveNode(directory string, writer Writer, opts ...SaveOption) *SaveNode {
	if writer == nil {
		writer = FileWriter{}
	}
	n := &SaveNode{directory: directory, writer: writer, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *SaveNode) Name() string { return "save" }

func (n *SaveNode) PrepareBatch(ctx context.Context, st *state.State) ([]flow.Item, error) {
	doc := st.Document()
	timestamp := st.Timestamp()
	slug := st.Slug()
	if slug == "" {
		return nil, services.Wrap(services.ErrValidation, "save", "prepare", "no slug recorded", nil)
	}

	items := make([]flow.Item, 0, state.LayerCount)
	for _, level := range layers.Levels() {
		body, err := st.Layer(level.Number)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(body) == "" {
			continue
		}
		items = append(items, flow.Item{
			Name: fmt.Sprintf("level-%d %s", level.Number, level.Name),
			Payload: renderInput{
				meta: Meta{
					Title:      doc.Title,
					Level:      level.Number,
					LevelName:  level.Name,
					SourceType: string(st.InputType()),
					Created:    timestamp,
					WordCount:  doc.WordCount,
					Author:     doc.Author,
				},
				body:     body,
				filename: Filename(timestamp, slug, level.Number),
			},
		})
	}
	return items, nil
}

func (n *SaveNode) ExecuteItem(ctx context.Context, item flow.Item) (any, error) {
	in, ok := item.Payload.(renderInput)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "save", "execute", "unexpected item payload", nil)
	}
	return renderedArtifact{
		filename: in.filename,
		data:     Render(in.meta, in.body),
	}, nil
}

func (n *SaveNode) FinalizeBatch(ctx context.Context, st *state.State, items []flow.Item, results []any) (flow.Outcome, error) {
	logger := logging.WithContext(ctx, n.logger)
	saved := make([]string, 0, len(results))
	record := func() error { return st.SetSavedPaths(saved) }

	for i, result := range results {
		rendered, ok := result.(renderedArtifact)
		if !ok {
			if err := record(); err != nil {
				return "", err
			}
			return "", services.Wrap(services.ErrValidation, "save", "finalize",
				fmt.Sprintf("unexpected result for %s", items[i].Name), nil)
		}
		path, err := n.writer.Save(n.directory, rendered.filename, rendered.data)
		if err != nil {
			// Earlier artifacts stay visible through the saved-path list.
			if recErr := record(); recErr != nil {
				return "", recErr
			}
			return "", services.Wrap(nil, "save", "finalize",
				fmt.Sprintf("write %s", items[i].Name), err)
		}
		saved = append(saved, path)
		logger.Info("artifact saved", logging.String(logging.FieldArtifact, path))
	}
	if err := record(); err != nil {
		return "", err
	}
	return flow.DefaultOutcome, nil
}

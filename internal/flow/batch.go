package flow

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"distill/internal/logging"
	"distill/internal/services"
	"distill/internal/state"
)

func (f *Flow) runBatch(ctx context.Context, logger *slog.Logger, node BatchNode, st *state.State) (Outcome, error) {
	items, err := node.PrepareBatch(ctx, st)
	if err != nil {
		return "", services.Wrap(nil, node.Name(), "prepare", "", err)
	}
	if len(items) == 0 {
		return node.FinalizeBatch(ctx, st, nil, nil)
	}

	results := make([]any, len(items))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(f.batchWorkers)
	for i, item := range items {
		group.Go(func() error {
			result, err := node.ExecuteItem(groupCtx, item)
			if err != nil {
				return services.Wrap(nil, node.Name(), "execute",
					"item "+item.Name, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return "", err
	}

	logger.Debug("batch items executed", logging.Int("items", len(items)))

	outcome, err := node.FinalizeBatch(ctx, st, items, results)
	if err != nil {
		return "", services.Wrap(nil, node.Name(), "finalize", "", err)
	}
	return outcome, nil
}

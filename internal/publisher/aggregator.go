package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/solodevhq/megaphone/internal/platform"
)

// FetchSpec is one connected account to pull comments from.
type FetchSpec struct {
	Platform    string
	Credentials platform.Credentials
	Target      platform.Target
}

// Aggregator fans comment fetches out across adapters and merges the results
// into one feed ordered newest-first. It does not de-duplicate against
// previously synced comments; that is persisted state and belongs to the
// sync runner.
type Aggregator struct {
	registry *platform.Registry
}

func NewAggregator(registry *platform.Registry) *Aggregator {
	return &Aggregator{registry: registry}
}

// Aggregate fetches from every spec concurrently. A spec whose addressing
// metadata is insufficient is skipped, and a failing account degrades to
// zero comments instead of aborting the merge.
func (a *Aggregator) Aggregate(ctx context.Context, specs []FetchSpec) []platform.Comment {
	batches := make(chan []platform.Comment, len(specs))

	for _, spec := range specs {
		go func(spec FetchSpec) {
			batches <- a.fetchOne(ctx, spec)
		}(spec)
	}

	var all []platform.Comment
	for range specs {
		all = append(all, <-batches...)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return all
}

func (a *Aggregator) fetchOne(ctx context.Context, spec FetchSpec) (comments []platform.Comment) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("comment fetch panicked", "platform", spec.Platform, "panic", p)
			comments = nil
		}
	}()

	adapter, ok := a.registry.Get(spec.Platform)
	if !ok {
		slog.Info("skipping unknown platform", "platform", spec.Platform)
		return nil
	}

	comments, err := adapter.FetchComments(ctx, spec.Credentials, spec.Target)
	if err != nil {
		if errors.Is(err, platform.ErrMissingTarget) || errors.Is(err, platform.ErrFetchUnsupported) {
			return nil
		}
		slog.Info("comment fetch failed", "platform", spec.Platform, "error", err.Error())
		return nil
	}

	return comments
}

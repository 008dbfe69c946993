package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/adapters/logger"
	"go.trai.ch/mason/internal/core/ports"
)

const (
	CacheNodeID   graft.ID = "adapter.fs.step_cache"
	CleanerNodeID graft.ID = "adapter.fs.cleaner"
)

func init() {
	// The ledger is run-scoped, so the cache node is not cacheable: every
	// resolve yields a fresh ledger.
	graft.Register(graft.Node[ports.StepCache]{
		ID:        CacheNodeID,
		Cacheable: false,
		Run: func(ctx context.Context) (ports.StepCache, error) {
			return NewCache(), nil
		},
	})

	graft.Register(graft.Node[ports.Cleaner]{
		ID:        CleanerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Cleaner, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewCleaner(log), nil
		},
	})
}

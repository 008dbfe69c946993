package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mason/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mason/internal/adapters/shell"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mason/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			fs.CacheNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			runner, err := graft.Dep[ports.Runner](ctx)
			if err != nil {
				return nil, err
			}

			cache, err := graft.Dep[ports.StepCache](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(runner, cache, log), nil
		},
	})
}

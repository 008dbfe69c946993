package app

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/mason/internal/adapters/fs"     //nolint:depguard // Wired in app layer
	"go.trai.ch/mason/internal/adapters/logger" //nolint:depguard // Wired in app layer
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/engine/scheduler"
)

// NodeID is the unique identifier for the main App Graft node.
const NodeID graft.ID = "app.main"

func init() {
	graft.Register(graft.Node[*App]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.CleanerNodeID,
			scheduler.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}

			cleaner, err := graft.Dep[ports.Cleaner](ctx)
			if err != nil {
				return nil, err
			}

			sched, err := graft.Dep[*scheduler.Scheduler](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, cleaner, sched, log, os.Stdout), nil
		},
	})
}

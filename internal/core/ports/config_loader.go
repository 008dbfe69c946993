package ports

import "go.trai.ch/mason/internal/core/domain"

// ConfigLoader defines the interface for loading the build configuration.
type ConfigLoader interface {
	// Load reads the descriptor tree rooted at path and returns the unified
	// project. When warnDuplicates is set, discarded duplicate target
	// declarations are reported through the logger.
	Load(path string, warnDuplicates bool) (*domain.Project, error)
}

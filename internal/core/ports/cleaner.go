package ports

import "go.trai.ch/mason/internal/core/domain"

// Cleaner removes build outputs.
type Cleaner interface {
	// Clean deletes every given target's output directory recursively and
	// returns the directories it removed. Directories shared by several
	// targets are removed once; the first hard I/O error aborts.
	Clean(targets []domain.Target) ([]string, error)
}

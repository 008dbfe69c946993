package fs

import (
	"os"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

// Cleaner implements ports.Cleaner by deleting output directories.
type Cleaner struct {
	log ports.Logger
}

// NewCleaner creates a new Cleaner.
func NewCleaner(log ports.Logger) *Cleaner {
	return &Cleaner{log: log}
}

// Clean removes every target's output directory recursively and returns the
// removed directories. Directories shared by several targets are removed
// once. The first hard I/O error aborts the clean phase.
func (c *Cleaner) Clean(targets []domain.Target) ([]string, error) {
	done := make(map[string]bool, len(targets))
	var removed []string
	for _, t := range targets {
		dir := t.OutputDir
		if dir == "" || done[dir] {
			continue
		}
		done[dir] = true

		c.log.Debug("removing output directory", "target", t.Name, "dir", dir)
		if err := os.RemoveAll(dir); err != nil {
			return removed, zerr.With(zerr.With(zerr.Wrap(err, "clean failed"), "target", t.Name), "dir", dir)
		}
		removed = append(removed, dir)
	}
	return removed, nil
}

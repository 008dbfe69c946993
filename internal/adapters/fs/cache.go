// Package fs provides filesystem-backed build state adapters.
package fs

import (
	"os"
	"sync"
	"time"
)

// Cache implements ports.StepCache. Skip decisions compare on-disk mtimes;
// a run-scoped ledger of command digests additionally forces a rebuild when
// the command that would produce an output differs from the one already
// recorded for it in this run. Nothing is persisted.
type Cache struct {
	mu     sync.Mutex
	ledger map[string]uint64
}

// NewCache creates a Cache with an empty ledger.
func NewCache() *Cache {
	return &Cache{ledger: make(map[string]uint64)}
}

// NeedCompile reports whether source must be recompiled into object.
// Rebuild when the object is missing, the source is newer, or the recorded
// digest for the object differs from digest.
func (c *Cache) NeedCompile(source, object string, digest uint64) bool {
	if c.digestChanged(object, digest) {
		return true
	}
	objTime, ok := mtime(object)
	if !ok {
		return true
	}
	srcTime, ok := mtime(source)
	if !ok {
		// Missing source: run the compiler and let it report.
		return true
	}
	return srcTime.After(objTime)
}

// NeedLink reports whether artifact must be relinked. Relink when the
// artifact is missing, any object or direct dependency artifact is newer,
// or the recorded digest differs.
func (c *Cache) NeedLink(artifact string, objects, depArtifacts []string, digest uint64) bool {
	if c.digestChanged(artifact, digest) {
		return true
	}
	artTime, ok := mtime(artifact)
	if !ok {
		return true
	}
	for _, input := range objects {
		if t, ok := mtime(input); !ok || t.After(artTime) {
			return true
		}
	}
	for _, input := range depArtifacts {
		if t, ok := mtime(input); !ok || t.After(artTime) {
			return true
		}
	}
	return false
}

// digestChanged records digest for output and reports whether a different
// digest was already recorded in this run.
func (c *Cache) digestChanged(output string, digest uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, seen := c.ledger[output]
	c.ledger[output] = digest
	return seen && prev != digest
}

func mtime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

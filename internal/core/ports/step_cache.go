package ports

// StepCache decides per step whether work may be skipped. Decisions are a
// pure function of on-disk mtimes plus a run-scoped ledger of command
// digests; nothing is persisted by the cache itself.
type StepCache interface {
	// NeedCompile reports whether source must be recompiled into object.
	// digest identifies the command line that would produce object.
	NeedCompile(source, object string, digest uint64) bool
	// NeedLink reports whether artifact must be relinked from objects and
	// the direct dependency artifacts.
	NeedLink(artifact string, objects, depArtifacts []string, digest uint64) bool
}

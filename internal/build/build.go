// Package build holds build-time metadata stamped into the binary.
package build

// Version is the mason version. It defaults to "dev" and is overwritten by
// linker flags at release time.
var Version = "dev"

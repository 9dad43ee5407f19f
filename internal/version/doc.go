// Package version exposes build metadata for the findme binaries.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. Full also reports the Go toolchain and platform.
package version

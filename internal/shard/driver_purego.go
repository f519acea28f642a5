//go:build !cindex_cgo
// +build !cindex_cgo

package shard

// This file is compiled when building without CGO. It uses the pure Go
// SQLite implementation, which requires no C compiler and cross-compiles
// cleanly at some cost in raw throughput.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)

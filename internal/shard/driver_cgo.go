//go:build cindex_cgo
// +build cindex_cgo

package shard

// This file is compiled when building with CGO and the cindex_cgo tag. It
// uses the C SQLite driver, which is faster on large shard sets and is the
// recommended configuration for production deployments.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "cindex_cgo" ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)

//go:build !cgo_sqlite

package store

import (
	_ "modernc.org/sqlite"
)

// Default build: pure Go SQLite, no CGO required.
const (
	driverName = "sqlite"
	driverType = "purego"
)

//go:build cgo_sqlite

package store

import (
	_ "github.com/mattn/go-sqlite3"
)

// CGO build (-tags cgo_sqlite): links the system SQLite via mattn/go-sqlite3.
const (
	driverName = "sqlite3"
	driverType = "cgo"
)

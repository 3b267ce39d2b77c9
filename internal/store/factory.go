package store

import "fmt"

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open creates the configured Store backend. dataDir is the file
// backend's document directory, dbPath the sqlite database location.
func Open(backend, dataDir, dbPath string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(dataDir)
	case BackendSQLite:
		return NewSQLiteStore(dbPath)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}

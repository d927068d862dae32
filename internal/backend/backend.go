// Package backend constructs the configured persistence layer behind
// the store interfaces.
package backend

import (
	"context"
	"fmt"

	"rentledger/internal/config"
	"rentledger/internal/log"
	"rentledger/internal/storage"
	"rentledger/internal/store"
	"rentledger/internal/store/firestore"
	"rentledger/internal/store/memory"
)

// Type identifies a persistence backend
type Type string

const (
	Memory    Type = "memory"
	SQLite    Type = "sqlite"
	Firestore Type = "firestore"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Firestore:
		return true
	default:
		return false
	}
}

// CleanupFunc releases the resources a backend holds
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function
type Result struct {
	Stores  store.Stores
	Cleanup CleanupFunc
}

// Factory creates backends from the application configuration
type Factory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Create builds the backend the configuration selects
func (f *Factory) Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLite:
		return f.createSQLite(cfg)
	case Firestore:
		return f.createFirestore(ctx, cfg)
	default:
		return f.createMemory()
	}
}

func (f *Factory) createSQLite(cfg *config.Config) (*Result, error) {
	stores, err := storage.NewSQLiteStores(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite stores: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)

	return &Result{
		Stores:  stores,
		Cleanup: stores.Close,
	}, nil
}

func (f *Factory) createFirestore(ctx context.Context, cfg *config.Config) (*Result, error) {
	client, err := firestore.New(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentials)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firestore client: %w", err)
	}

	f.logger.Info("Initialized Firestore backend", "project_id", cfg.FirestoreProjectID)

	return &Result{
		Stores:  client,
		Cleanup: client.Close,
	}, nil
}

func (f *Factory) createMemory() (*Result, error) {
	f.logger.Info("Initialized memory backend")

	return &Result{
		Stores:  memory.New(),
		Cleanup: nil,
	}, nil
}

package store

import (
	"context"

	"github.com/juju/errors"

	"statesapi/internal/config"
)

// Open builds the Store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendMongo:
		s, err = NewMongoStore(cfg.MongoURL, cfg.MongoDB)
	case config.BackendPostgres:
		s, err = OpenPostgresStore(ctx, cfg.DatabaseURL)
	case config.BackendSQLite:
		s, err = OpenSQLiteStore(cfg.SQLitePath)
	case config.BackendMemory, "":
		return NewMemoryStore(), nil
	default:
		return nil, errors.NotSupportedf("store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return s, nil
}

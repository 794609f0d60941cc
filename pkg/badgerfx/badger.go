package badgerfx

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Open opens the journal store described by cfg. Badger's own output goes to
// logger, with its startup chatter demoted to debug.
func Open(cfg Config, logger *zap.Logger) (*badger.DB, error) {
	location := cfg.Dir
	if cfg.InMemory {
		location = "memory"
	}

	db, err := badger.Open(cfg.Build().WithLogger(newLogger(logger)))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal store at %s: %w", location, err)
	}

	logger.Debug("journal store opened", zap.String("location", location))
	return db, nil
}

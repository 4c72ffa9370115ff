package storage

import (
	"fmt"

	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/config"
)

// New builds the store selected by STORAGE_BACKEND.
func New(cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.DBType {
	case "postgres":
		return NewPostgresStorage(cfg.DBDSN, logger)
	case "file":
		return NewFileStorage(cfg.DataDir, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.DBType)
	}
}

// Package factory opens the index store selected by configuration.
package factory

import (
	"fmt"

	"github.com/kailas-cloud/questsearch/internal/db"
	dbBleve "github.com/kailas-cloud/questsearch/internal/db/bleve"
	dbRedis "github.com/kailas-cloud/questsearch/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/questsearch/internal/db/sqlite"
)

// Supported drivers.
const (
	DriverRedis  = "redis"
	DriverBleve  = "bleve"
	DriverSQLite = "sqlite"
)

// Config selects and parameterizes a driver.
type Config struct {
	Driver   string
	Addrs    []string // redis
	Username string   // redis
	Password string   // redis
	Path     string   // bleve directory or sqlite file, empty = in-memory
}

// Open creates the store. It does not wait for readiness.
func Open(cfg Config) (db.Store, error) {
	switch cfg.Driver {
	case DriverRedis, "":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		return s, nil
	case DriverBleve:
		s, err := dbBleve.NewStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("create bleve store: %w", err)
		}
		return s, nil
	case DriverSQLite:
		s, err := dbSQLite.NewStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("create sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}

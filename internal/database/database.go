// Package database opens the question bank database and applies its
// migrations. SQLite (modernc, pure Go) is the default; Oracle is reached
// through go-ora.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bloomforge/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // Oracle driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	DriverSQLite = "sqlite"
	DriverOracle = "oracle"
)

func init() {
	// sqlx does not know these driver names; without a bind type Rebind
	// would leave ? placeholders that go-ora cannot bind.
	sqlx.BindDriver(DriverOracle, sqlx.NAMED)
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// DataSourceName returns the driver specific DSN for cfg.
func DataSourceName(cfg *config.Config) (string, error) {
	switch cfg.DB.Driver {
	case DriverOracle:
		return cfg.GetDSN(), nil
	case "", DriverSQLite:
		path := cfg.GetDSN()
		if path == "" {
			return "", fmt.Errorf("db.path is required for sqlite")
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return "file:" + path + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}
}

// Connect opens and pings the configured database.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sqlx.DB, error) {
	driver := cfg.DB.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	dsn, err := DataSourceName(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One writer at a time; WAL still allows concurrent readers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	logger.Info("Connected to database", zap.String("driver", driver))
	return db, nil
}

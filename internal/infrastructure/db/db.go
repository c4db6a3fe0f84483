package db

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/schuttebj/linc-print-gateway/internal/config"
)

// Manager holds the archive database handle. The gateway persists only
// submitted issue reports; everything else lives in the LINC backend.
type Manager struct {
	DB *sqlx.DB
}

// Connect establishes the sqlx connection based on configuration.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Manager, error) {
	// sqlx driver name mapping: allow "postgres" in config but use the
	// compiled pgx stdlib driver which registers under "pgx".
	driverName := cfg.Driver
	if driverName == "postgres" {
		driverName = "pgx"
	}

	conn, err := sqlx.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if logger != nil {
		logger.Info("archive db connected", zap.String("driver", cfg.Driver))
	}
	return &Manager{DB: conn}, nil
}

// EnsureSchema creates the reports table when missing. The DDL sticks
// to types both supported drivers accept.
func (m *Manager) EnsureSchema(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS reports (
		id VARCHAR(36) PRIMARY KEY,
		description TEXT NOT NULL,
		page_url TEXT NOT NULL,
		browser_info TEXT,
		screenshot TEXT,
		console_logs TEXT,
		status VARCHAR(32) NOT NULL,
		backend_ref VARCHAR(64),
		submitted_by VARCHAR(36),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	_, err := m.DB.ExecContext(ctx, ddl)
	return err
}

// Close closes the DB handle.
func (m *Manager) Close() error {
	if m == nil || m.DB == nil {
		return nil
	}
	return m.DB.Close()
}

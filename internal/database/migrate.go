package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrate applies all pending migrations for the handle's dialect and
// returns the resulting schema version.
func Migrate(ctx context.Context, db *DB, logger *zap.Logger) (int64, error) {
	dir := "migrations/mysql"
	dialect := goose.DialectMySQL
	if db.Dialect == SQLite {
		dir = "migrations/sqlite"
		dialect = goose.DialectSQLite3
	}
	sub, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return 0, fmt.Errorf("migrations fs: %w", err)
	}
	p, err := goose.NewProvider(dialect, db.DB, sub)
	if err != nil {
		return 0, fmt.Errorf("goose provider: %w", err)
	}
	results, err := p.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		logger.Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.Duration("took", r.Duration))
	}
	version, err := p.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

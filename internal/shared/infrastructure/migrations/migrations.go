package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql
var sqliteFS embed.FS

//go:embed postgres/*.sql
var postgresFS embed.FS

// Run applies all migrations for the connection's driver in order.
// Migrations use CREATE IF NOT EXISTS and are safe to re-run.
func Run(ctx context.Context, conn database.Connection) error {
	fsys, dir := sqliteFS, "sqlite"
	if conn.Driver() == database.DriverPostgres {
		fsys, dir = postgresFS, "postgres"
	}

	files, err := upFiles(fsys, dir)
	if err != nil {
		return err
	}
	for _, file := range files {
		migration, err := fsys.ReadFile(dir + "/" + file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := conn.Exec(ctx, string(migration)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

// RunSQLite applies the SQLite migrations to a raw handle.
// Tests use this against in-memory databases.
func RunSQLite(ctx context.Context, db *sql.DB) error {
	files, err := upFiles(sqliteFS, "sqlite")
	if err != nil {
		return err
	}
	for _, file := range files {
		migration, err := sqliteFS.ReadFile("sqlite/" + file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

func upFiles(fsys embed.FS, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

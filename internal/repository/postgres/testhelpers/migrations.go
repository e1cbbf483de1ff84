package testhelpers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

// MigrationsDir - путь к миграциям относительно пакета postgres
const MigrationsDir = "../../../migrations"

// ApplyMigrations применяет все *.up.sql по порядку имён.
// Миграции идемпотентны (IF NOT EXISTS), повторный запуск безопасен.
func ApplyMigrations(ctx context.Context, db *sqlx.DB, migrationsPath string) error {
	entries, err := os.ReadDir(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	upFiles := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), strings.HasSuffix(e.Name(), ".up.sql")
	})
	slices.Sort(upFiles)

	for _, file := range upFiles {
		content, err := os.ReadFile(filepath.Join(migrationsPath, file))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}

	return nil
}

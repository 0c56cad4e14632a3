package database

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every embedded migration in the given direction ("up" or "down").
// Up migrations are idempotent.
func Migrate(db *sql.DB, direction string) error {
	var suffix string
	switch direction {
	case "up":
		suffix = ".up.sql"
	case "down":
		suffix = ".down.sql"
	default:
		return fmt.Errorf("invalid migration direction %q: must be 'up' or 'down'", direction)
	}

	names, err := fs.Glob(migrations, "migrations/*"+suffix)
	if err != nil {
		return err
	}
	sort.Strings(names)
	if direction == "down" {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}

	for _, name := range names {
		content, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		log.Debug().Str("migration", strings.TrimPrefix(name, "migrations/")).Msg("Applying migration")
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}
	return nil
}

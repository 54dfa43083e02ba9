package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"streetkitchen/db"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// The schema for vendors, the catalog, combo rules, custom combos, orders
// and Telegram card pointers. Every file is idempotent (IF NOT EXISTS).
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationNames lists the embedded schema files in apply order.
func migrationNames() ([]string, error) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// applyMigrations runs every schema file in one transaction, so a broken
// file leaves the database as it was.
func applyMigrations(ctx context.Context) error {
	names, err := migrationNames()
	if err != nil {
		return err
	}
	err = db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, name := range names {
			sqlBytes, err := migrationsFS.ReadFile(name)
			if err != nil {
				return fmt.Errorf("read migration %s: %w", name, err)
			}
			if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.WithField("migrations", names).Info("Schema up to date")
	return nil
}

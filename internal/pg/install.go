package pg

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"skylark/internal/entity"
)

// Install creates the table of every type in the model, in declaration
// order. Existing tables are tolerated so a restart against an installed
// database is a no-op.
func Install(db *DB, m *entity.Model) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, t := range m.Types() {
		if _, err := db.Exec(ctx, t.CreateTableStatement(), nil); err != nil {
			// pgx/stdlib returns *pgconn.PgError
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && (pgErr.Code == "42P07" || pgErr.Code == "42710") {
				log.Printf("DDL skipped (already exists): %s", t.Table())
				continue
			}
			e := strings.ToLower(err.Error())
			if strings.Contains(e, "already exists") || strings.Contains(e, "duplicate") {
				log.Printf("DDL skipped (already exists): %v", err)
				continue
			}
			return err
		}
	}
	return nil
}

// Uninstall drops every table of the model. Brutal; meant for tests and
// teardown.
func Uninstall(db *DB, m *entity.Model) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	return m.Uninstall(ctx, db)
}

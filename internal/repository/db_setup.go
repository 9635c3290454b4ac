package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects SQL flavour differences between the supported drivers.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

var schema = map[Dialect][]string{
	SQLite: {
		`CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    done BOOLEAN
)`,
	},
	Postgres: {
		`CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS tasks (
    id SERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    done BOOLEAN
)`,
	},
}

// CreateTableIfNotExists creates the users and tasks tables.
func CreateTableIfNotExists(ctx context.Context, db *sql.DB, dialect Dialect) error {
	stmts, ok := schema[dialect]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", dialect)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// DeleteAllTable drops both tables. Tests and the drop command use it.
func DeleteAllTable(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{"DROP TABLE IF EXISTS tasks", "DROP TABLE IF EXISTS users"} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
	}
	return nil
}

// Rebind rewrites ? placeholders to $1, $2, ... for postgres.
// Queries in this package never contain a literal '?'.
func Rebind(dialect Dialect, query string) string {
	if dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"taskmanager/internal/models"
)

// SQLStore implements Store on database/sql for SQLite and PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	hasher  *PasswordHasher
}

func NewSQLStore(db *sql.DB, dialect Dialect, hasher *PasswordHasher) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, hasher: hasher}
}

func (s *SQLStore) q(query string) string {
	return Rebind(s.dialect, query)
}

// withTx commits fn's work as one unit, or rolls it back.
func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) CreateUser(ctx context.Context, username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("create user: username and password are required: %w", ErrValidation)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	user := models.User{Username: username}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, s.q("SELECT COUNT(*) FROM users WHERE username = ?"), username).Scan(&count); err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("username %q: %w", username, ErrConflict)
		}
		return tx.QueryRowContext(ctx,
			s.q("INSERT INTO users (username, password_hash) VALUES (?, ?) RETURNING id"),
			username, hash,
		).Scan(&user.ID)
	})
	if err != nil {
		// a concurrent insert can still trip the UNIQUE constraint
		if isUniqueViolation(err) {
			return models.User{}, fmt.Errorf("create user: username %q: %w", username, ErrConflict)
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *SQLStore) VerifyCredentials(ctx context.Context, username, password string) (models.Principal, bool, error) {
	var (
		p    models.Principal
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		s.q("SELECT id, username, password_hash FROM users WHERE username = ?"),
		username,
	).Scan(&p.ID, &p.Username, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		s.hasher.Burn(password)
		return models.Principal{}, false, nil
	}
	if err != nil {
		return models.Principal{}, false, fmt.Errorf("verify credentials: %w", err)
	}
	if !s.hasher.Verify(hash, password) {
		return models.Principal{}, false, nil
	}
	return p, true, nil
}

func (s *SQLStore) GetUser(ctx context.Context, id int) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, s.q("SELECT id, username FROM users WHERE id = ?"), id).Scan(&u.ID, &u.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *SQLStore) CreateTask(ctx context.Context, title, description string, done *bool) (models.Task, error) {
	if title == "" || description == "" || done == nil {
		return models.Task{}, fmt.Errorf("create task: title, description and done are required: %w", ErrValidation)
	}

	d := *done
	task := models.Task{Title: title, Description: description, Done: &d}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.lockTitles(ctx, tx); err != nil {
			return err
		}
		var count int
		if err := tx.QueryRowContext(ctx, s.q("SELECT COUNT(*) FROM tasks WHERE title = ?"), title).Scan(&count); err != nil {
			return fmt.Errorf("check title: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("title %q: %w", title, ErrConflict)
		}
		return tx.QueryRowContext(ctx,
			s.q("INSERT INTO tasks (title, description, done) VALUES (?, ?, ?) RETURNING id"),
			title, description, d,
		).Scan(&task.ID)
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (s *SQLStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, description, done FROM tasks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("list tasks: %w", ErrNotFound)
	}
	return tasks, nil
}

func (s *SQLStore) GetTask(ctx context.Context, id int) (models.Task, error) {
	return s.getTask(ctx, s.db, id)
}

func (s *SQLStore) UpdateTask(ctx context.Context, id int, patch models.TaskPatch) (models.Task, error) {
	if err := checkPatch(patch); err != nil {
		return models.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	var task models.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		task, err = s.getTask(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(&task)
		_, err = tx.ExecContext(ctx,
			s.q("UPDATE tasks SET title = ?, description = ?, done = ? WHERE id = ?"),
			task.Title, task.Description, nullBool(task.Done), id,
		)
		return err
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	return task, nil
}

func (s *SQLStore) DeleteTask(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, s.q("DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

// titleLockKey names the postgres advisory lock taken around the
// duplicate-title check.
const titleLockKey = 7345001

// lockTitles serializes CreateTask transactions on postgres, where READ
// COMMITTED would let two inserts pass the COUNT check together. SQLite
// already runs one writer at a time.
func (s *SQLStore) lockTitles(ctx context.Context, tx *sql.Tx) error {
	if s.dialect != Postgres {
		return nil
	}
	if _, err := tx.ExecContext(ctx, s.q("SELECT pg_advisory_xact_lock(?)"), titleLockKey); err != nil {
		return fmt.Errorf("lock task titles: %w", err)
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) getTask(ctx context.Context, db queryRower, id int) (models.Task, error) {
	row := db.QueryRowContext(ctx, s.q("SELECT id, title, description, done FROM tasks WHERE id = ?"), id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (models.Task, error) {
	var (
		t    models.Task
		done sql.NullBool
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &done); err != nil {
		return models.Task{}, err
	}
	if done.Valid {
		d := done.Bool
		t.Done = &d
	}
	return t, nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

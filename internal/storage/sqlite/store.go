// Package sqlite is an embedded storage.Store for local development and tests.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hongminglow/tasks-be/internal/models"
	"github.com/hongminglow/tasks-be/internal/storage"

	_ "modernc.org/sqlite"
)

var _ storage.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    avatar TEXT NOT NULL DEFAULT '',
    roles TEXT NOT NULL DEFAULT '["User"]',
    active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS tasks (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    owner TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    completed INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS tasks_owner_idx ON tasks (owner);
`

// Store provides SQLite-backed persistence.
type Store struct {
	db *sql.DB
}

// NewStore opens dsn (e.g. "file:tasks.db" or "file:test?mode=memory&cache=shared")
// and applies the schema. A single connection is used so in-memory databases
// are shared by every caller.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	roles, err := json.Marshal(user.Roles)
	if err != nil {
		return models.User{}, fmt.Errorf("encode roles: %w", err)
	}
	user.ID = uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, avatar, roles, active) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, user.Avatar, string(roles), user.Active)
	if err != nil {
		return models.User{}, mapError(err)
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, avatar, roles, active FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, avatar, roles, active FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, '', avatar, roles, active FROM users ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	roles, err := json.Marshal(user.Roles)
	if err != nil {
		return models.User{}, fmt.Errorf("encode roles: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = ?, password_hash = ?, avatar = ?, roles = ?, active = ? WHERE id = ?`,
		user.Username, user.PasswordHash, user.Avatar, string(roles), user.Active, user.ID)
	if err := affected(res, err); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id))
}

func (s *Store) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	task.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, owner, title, description, completed) VALUES (?, ?, ?, ?, ?)`,
		task.ID, task.Owner, task.Title, task.Description, task.Completed)
	if err != nil {
		return models.Task{}, mapError(err)
	}
	return task, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, title, description, completed FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

func (s *Store) ListTasksByOwner(ctx context.Context, owner string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, title, description, completed FROM tasks WHERE owner = ? ORDER BY seq`, owner)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTask(ctx context.Context, task models.Task) (models.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET owner = ?, title = ?, description = ?, completed = ? WHERE id = ?`,
		task.Owner, task.Title, task.Description, task.Completed, task.ID)
	if err := affected(res, err); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (models.User, error) {
	var (
		user  models.User
		roles string
	)
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Avatar, &roles, &user.Active); err != nil {
		return models.User{}, mapError(err)
	}
	if err := json.Unmarshal([]byte(roles), &user.Roles); err != nil {
		return models.User{}, fmt.Errorf("decode roles for user %s: %w", user.ID, err)
	}
	return user, nil
}

func scanTask(row scanner) (models.Task, error) {
	var task models.Task
	if err := row.Scan(&task.ID, &task.Owner, &task.Title, &task.Description, &task.Completed); err != nil {
		return models.Task{}, mapError(err)
	}
	return task, nil
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return storage.ErrAlreadyExists
	}
	return err
}

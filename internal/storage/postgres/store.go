package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hongminglow/tasks-be/internal/models"
	"github.com/hongminglow/tasks-be/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

const uniqueViolation = "23505"

// Store provides Postgres-backed persistence for users and tasks.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store and ensures the schema exists.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			avatar TEXT NOT NULL DEFAULT '',
			roles TEXT[] NOT NULL DEFAULT ARRAY['User'],
			active BOOLEAN NOT NULL DEFAULT TRUE,
			seq BIGSERIAL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			seq BIGSERIAL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS tasks_owner_idx ON tasks (owner);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (id, username, password_hash, avatar, roles, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, username, password_hash, avatar, roles, active;
	`
	row := s.pool.QueryRow(ctx, query, uuid.NewString(), user.Username, user.PasswordHash, user.Avatar, user.Roles, user.Active)
	return scanUser(row)
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT id, username, password_hash, avatar, roles, active FROM users WHERE id = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `SELECT id, username, password_hash, avatar, roles, active FROM users WHERE username = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, username))
}

// ListUsers returns all users oldest first. Password hashes are not selected.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	const query = `SELECT id, username, '', avatar, roles, active FROM users ORDER BY seq;`
	rows, err := s.pool.Query(ctx, query)
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

// UpdateUser overwrites the mutable columns of an existing user.
func (s *Store) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		UPDATE users SET username = $2, password_hash = $3, avatar = $4, roles = $5, active = $6
		WHERE id = $1
		RETURNING id, username, password_hash, avatar, roles, active;
	`
	row := s.pool.QueryRow(ctx, query, user.ID, user.Username, user.PasswordHash, user.Avatar, user.Roles, user.Active)
	return scanUser(row)
}

// DeleteUser removes a single user row.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM users WHERE id = $1;`, id)
}

func (s *Store) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	const query = `
		INSERT INTO tasks (id, owner, title, description, completed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, owner, title, description, completed;
	`
	row := s.pool.QueryRow(ctx, query, uuid.NewString(), task.Owner, task.Title, task.Description, task.Completed)
	return scanTask(row)
}

func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	const query = `SELECT id, owner, title, description, completed FROM tasks WHERE id = $1;`
	return scanTask(s.pool.QueryRow(ctx, query, id))
}

func (s *Store) ListTasksByOwner(ctx context.Context, owner string) ([]models.Task, error) {
	const query = `SELECT id, owner, title, description, completed FROM tasks WHERE owner = $1 ORDER BY seq;`
	rows, err := s.pool.Query(ctx, query, owner)
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
	const query = `
		UPDATE tasks SET owner = $2, title = $3, description = $4, completed = $5
		WHERE id = $1
		RETURNING id, owner, title, description, completed;
	`
	row := s.pool.QueryRow(ctx, query, task.ID, task.Owner, task.Title, task.Description, task.Completed)
	return scanTask(row)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM tasks WHERE id = $1;`, id)
}

func (s *Store) deleteByID(ctx context.Context, stmt, id string) error {
	tag, err := s.pool.Exec(ctx, stmt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Avatar, &user.Roles, &user.Active); err != nil {
		return models.User{}, mapError(err)
	}
	return user, nil
}

func scanTask(row pgx.Row) (models.Task, error) {
	var task models.Task
	if err := row.Scan(&task.ID, &task.Owner, &task.Title, &task.Description, &task.Completed); err != nil {
		return models.Task{}, mapError(err)
	}
	return task, nil
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrAlreadyExists
	}
	return err
}

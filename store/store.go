package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

type (
	// S wraps the sqlite database that holds users and todos.
	S struct {
		db        *sql.DB
		writeable bool
	}

	User struct {
		ID           int64
		Username     string
		PasswordHash string
	}

	Todo struct {
		ID          int64   `json:"id"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Completed   bool    `json:"completed"`
	}

	// TodoPatch carries the fields of a partial update, nil fields
	// are left untouched.
	TodoPatch struct {
		Title       *string
		Description *string
		Completed   *bool
	}
)

func openDatabase(ctx context.Context, path string, readwrite bool) (*sql.DB, error) {
	var connstr string
	if readwrite {
		connstr = fmt.Sprintf("file:%v?_journal=wal&_fk=true&mode=rwc", path)
	} else {
		connstr = fmt.Sprintf("file:%v?_fk=true&mode=r", path)
	}
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %v", path, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to ping database %v, cause %v", path, err)
	}
	return conn, nil
}

// Open loads the database at path, creating it and its schema when
// readwrite is set.
func Open(ctx context.Context, path string, readwrite bool) (*S, error) {
	conn, err := openDatabase(ctx, path, readwrite)
	if err != nil {
		return nil, err
	}
	s := &S{db: conn, writeable: readwrite}
	if readwrite {
		err = s.init(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to init database %v, cause %v", path, err)
		}
	}
	return s, nil
}

// CreateUser inserts a new user record. Uniqueness of the username is
// delegated to the schema, a violation surfaces as UsernameTaken even
// under concurrent registration of the same name.
func (s *S) CreateUser(ctx context.Context, username string, passwordHash string) (*User, error) {
	res, err := s.db.ExecContext(ctx, `insert into users (username, password_hash) values (?, ?)`,
		username, passwordHash)
	if isUniqueViolation(err) {
		return nil, UsernameTaken{Username: username}
	} else if err != nil {
		return nil, fmt.Errorf("unable to store user %v, cause %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("unable to read id of user %v, cause %w", username, err)
	}
	return &User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

// FindUserByUsername returns the user with the given name, or nil when
// no such user exists. Absence is not an error.
func (s *S) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `select user_id, username, password_hash from users where username = ?`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to lookup user %v, cause %w", username, err)
	}
	return &u, nil
}

func (s *S) CreateTodo(ctx context.Context, title string, description *string, completed bool) (*Todo, error) {
	res, err := s.db.ExecContext(ctx, `insert into todos (title, description, completed) values (?, ?, ?)`,
		title, description, completed)
	if err != nil {
		return nil, fmt.Errorf("unable to store todo, cause %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("unable to read id of new todo, cause %w", err)
	}
	return &Todo{ID: id, Title: title, Description: description, Completed: completed}, nil
}

func (s *S) ListTodos(ctx context.Context) ([]Todo, error) {
	rows, err := s.db.QueryContext(ctx, `select todo_id, title, description, completed from todos order by todo_id asc`)
	if err != nil {
		return nil, fmt.Errorf("unable to list todos, cause %w", err)
	}
	defer rows.Close()
	out := []Todo{}
	for rows.Next() {
		var t Todo
		err = rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed)
		if err != nil {
			return nil, fmt.Errorf("unable to scan todo, cause %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to list todos, cause %w", err)
	}
	return out, nil
}

// GetTodo returns the todo with the given id, or nil when the id is
// unknown.
func (s *S) GetTodo(ctx context.Context, id int64) (*Todo, error) {
	var t Todo
	err := s.db.QueryRowContext(ctx, `select todo_id, title, description, completed from todos where todo_id = ?`,
		id).Scan(&t.ID, &t.Title, &t.Description, &t.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to lookup todo %v, cause %w", id, err)
	}
	return &t, nil
}

// UpdateTodo overlays the non-nil fields of patch on top of the stored
// record. Unknown ids return nil without touching the store.
func (s *S) UpdateTodo(ctx context.Context, id int64, patch TodoPatch) (*Todo, error) {
	t, err := s.GetTodo(ctx, id)
	if err != nil || t == nil {
		return nil, err
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = patch.Description
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	_, err = s.db.ExecContext(ctx, `update todos set title = ?, description = ?, completed = ? where todo_id = ?`,
		t.Title, t.Description, t.Completed, id)
	if err != nil {
		return nil, fmt.Errorf("unable to update todo %v, cause %w", id, err)
	}
	return t, nil
}

// DeleteTodo removes the todo with the given id and returns the removed
// record, or nil when the id is unknown.
func (s *S) DeleteTodo(ctx context.Context, id int64) (*Todo, error) {
	t, err := s.GetTodo(ctx, id)
	if err != nil || t == nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx, `delete from todos where todo_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("unable to delete todo %v, cause %w", id, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func (s *S) init(ctx context.Context) error {
	for _, cmd := range []string{
		`create table if not exists users(
			user_id integer not null primary key autoincrement,
			username text not null unique,
			password_hash text not null
		)`,
		`create table if not exists todos(
			todo_id integer not null primary key autoincrement,
			title text not null,
			description text,
			completed integer not null default 0
		)`,
	} {
		_, err := s.db.ExecContext(ctx, cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *S) Close() error {
	return s.db.Close()
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/conorfennell/todoagenda/internal/domain"
	"github.com/conorfennell/todoagenda/internal/metrics"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// DSN builds a modernc sqlite data source name for a database file with the
// given busy timeout. The path is percent-escaped so ? and # stay part of it.
func DSN(path string, busyTimeout time.Duration) string {
	escaped := (&url.URL{Path: path}).EscapedPath()
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", escaped, busyTimeout.Milliseconds())
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Single connection: statements queue in database/sql rather than in SQLite.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection is still usable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Filter narrows ListTodos. A nil or empty field is not applied.
type Filter struct {
	Search   *string // substring of the todo text
	Priority *string
	Status   *string
	Category *string
}

// Column is an updatable todo column.
type Column string

const (
	ColumnTodo     Column = "todo"
	ColumnPriority Column = "priority"
	ColumnStatus   Column = "status"
	ColumnCategory Column = "category"
	ColumnDueDate  Column = "due_date"
)

const selectTodo = `
	SELECT COALESCE(id, 0), COALESCE(todo, ''), COALESCE(priority, ''), COALESCE(status, ''),
	       COALESCE(category, ''), COALESCE(due_date, '')
	FROM todo`

// ListTodos returns every todo matching all set filters, in insertion order.
func (db *DB) ListTodos(ctx context.Context, f Filter) (todos []domain.Todo, err error) {
	defer observe("list_todos", time.Now(), &err)

	var (
		where []string
		args  []any
	)
	if set(f.Search) {
		where = append(where, `todo LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(*f.Search)+"%")
	}
	if set(f.Priority) {
		where = append(where, "priority = ?")
		args = append(args, strings.ToUpper(*f.Priority))
	}
	if set(f.Status) {
		where = append(where, "status = ?")
		args = append(args, strings.ToUpper(*f.Status))
	}
	if set(f.Category) {
		where = append(where, "category = ?")
		args = append(args, strings.ToUpper(*f.Category))
	}

	query := selectTodo
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid"

	todos, err = db.queryTodos(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// FindTodoByID retrieves the first todo with the given id.
// It returns nil, nil when no row matches.
func (db *DB) FindTodoByID(ctx context.Context, id int64) (t *domain.Todo, err error) {
	defer observe("find_todo", time.Now(), &err)

	row := db.conn.QueryRowContext(ctx, selectTodo+" WHERE id = ? ORDER BY rowid LIMIT 1", id)
	var todo domain.Todo
	if err := scanTodo(row, &todo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Todo not found
		}
		return nil, fmt.Errorf("failed to find todo %d: %w", id, err)
	}
	return &todo, nil
}

// FindTodosByDueDate returns the agenda for a YYYY-MM-DD date.
func (db *DB) FindTodosByDueDate(ctx context.Context, dueDate string) (todos []domain.Todo, err error) {
	defer observe("find_agenda", time.Now(), &err)

	todos, err = db.queryTodos(ctx, selectTodo+" WHERE due_date = ? ORDER BY rowid", dueDate)
	if err != nil {
		return nil, fmt.Errorf("failed to find todos due %s: %w", dueDate, err)
	}
	return todos, nil
}

// InsertTodo inserts a new todo. Duplicate ids are not rejected.
func (db *DB) InsertTodo(ctx context.Context, t domain.Todo) (err error) {
	defer observe("insert_todo", time.Now(), &err)

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO todo (id, todo, priority, status, category, due_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.Text,
		string(t.Priority),
		string(t.Status),
		string(t.Category),
		t.DueDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert todo %d: %w", t.ID, err)
	}
	return nil
}

// UpdateTodoField sets one column on every row with the given id and reports
// how many rows changed. Zero rows is not an error.
func (db *DB) UpdateTodoField(ctx context.Context, id int64, col Column, value string) (n int64, err error) {
	defer observe("update_todo", time.Now(), &err)

	switch col {
	case ColumnTodo, ColumnPriority, ColumnStatus, ColumnCategory, ColumnDueDate:
	default:
		return 0, fmt.Errorf("failed to update todo %d: unknown column %q", id, col)
	}

	res, err := db.conn.ExecContext(ctx, "UPDATE todo SET "+string(col)+" = ? WHERE id = ?", value, id)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s for todo %d: %w", col, id, err)
	}
	n, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for todo %d: %w", id, err)
	}
	return n, nil
}

// DeleteTodo removes every row with the given id and reports how many were removed.
func (db *DB) DeleteTodo(ctx context.Context, id int64) (n int64, err error) {
	defer observe("delete_todo", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM todo
		WHERE id = ?
	`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete todo %d: %w", id, err)
	}
	n, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for todo %d: %w", id, err)
	}
	return n, nil
}

func (db *DB) queryTodos(ctx context.Context, query string, args ...any) ([]domain.Todo, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []domain.Todo
	for rows.Next() {
		var t domain.Todo
		if err := scanTodo(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan todo row: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner, t *domain.Todo) error {
	var priority, status, category string
	if err := s.Scan(&t.ID, &t.Text, &priority, &status, &category, &t.DueDate); err != nil {
		return err
	}
	t.Priority = domain.Priority(priority)
	t.Status = domain.Status(status)
	t.Category = domain.Category(category)
	return nil
}

func observe(operation string, start time.Time, err *error) {
	metrics.ObserveQuery(operation, start, *err)
}

func set(s *string) bool {
	return s != nil && *s != ""
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern using '\' as escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

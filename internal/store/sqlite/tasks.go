package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Kzeezee/Pomodoko/internal/store"
)

// taskRow mirrors the tasks table; name and completed are nullable.
type taskRow struct {
	ID        int64          `db:"id"`
	Name      sql.NullString `db:"name"`
	Completed sql.NullBool   `db:"completed"`
}

func (r taskRow) task() store.Task {
	return store.Task{
		ID:        r.ID,
		Name:      r.Name.String,
		Completed: r.Completed.Valid && r.Completed.Bool,
	}
}

// CreateTask inserts a new, uncompleted task. A blank name is replaced
// by store.DefaultTaskName.
func (s *SQLiteStore) CreateTask(ctx context.Context, name string) (store.Task, error) {
	if s.db == nil {
		return store.Task{}, store.ErrNotOpen
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = store.DefaultTaskName
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks (name, completed) VALUES (?, ?)`, name, false)
	if err != nil {
		return store.Task{}, fmt.Errorf("creating task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return store.Task{}, fmt.Errorf("reading new task id: %w", err)
	}
	return store.Task{ID: id, Name: name}, nil
}

// GetTask returns the task with the given id.
func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (store.Task, error) {
	if s.db == nil {
		return store.Task{}, store.ErrNotOpen
	}
	var row taskRow
	err := s.db.GetContext(ctx, &row, `SELECT id, name, completed FROM tasks WHERE id = ?`, id)
	if isNoRows(err) {
		return store.Task{}, fmt.Errorf("%w: %d", store.ErrTaskNotFound, id)
	}
	if err != nil {
		return store.Task{}, fmt.Errorf("getting task %d: %w", id, err)
	}
	return row.task(), nil
}

// ListTasks returns every task in creation order.
func (s *SQLiteStore) ListTasks(ctx context.Context) ([]store.Task, error) {
	if s.db == nil {
		return nil, store.ErrNotOpen
	}
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name, completed FROM tasks ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	tasks := make([]store.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.task())
	}
	return tasks, nil
}

// SetTaskCompleted marks a task done or not done.
func (s *SQLiteStore) SetTaskCompleted(ctx context.Context, id int64, completed bool) error {
	return s.updateTask(ctx, id, `UPDATE tasks SET completed = ? WHERE id = ?`, completed, id)
}

// RenameTask changes a task's name. A blank name is replaced by
// store.DefaultTaskName.
func (s *SQLiteStore) RenameTask(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = store.DefaultTaskName
	}
	return s.updateTask(ctx, id, `UPDATE tasks SET name = ? WHERE id = ?`, name, id)
}

// DeleteTask removes a task.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	return s.updateTask(ctx, id, `DELETE FROM tasks WHERE id = ?`, id)
}

func (s *SQLiteStore) updateTask(ctx context.Context, id int64, query string, args ...any) error {
	if s.db == nil {
		return store.ErrNotOpen
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", store.ErrTaskNotFound, id)
	}
	return nil
}

package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/Kzeezee/Pomodoko/internal/store"
)

func newMigratedStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s := newTestStore(t)
	if _, err := s.Migrate(context.Background(), Migrations()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newMigratedStore(t)

	first, err := s.CreateTask(ctx, "write report")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	second, err := s.CreateTask(ctx, "  ")
	if err != nil {
		t.Fatalf("CreateTask blank: %v", err)
	}
	if second.Name != store.DefaultTaskName {
		t.Errorf("blank name: got %q, want %q", second.Name, store.DefaultTaskName)
	}
	if first.ID == second.ID {
		t.Fatalf("tasks share id %d", first.ID)
	}

	if err := s.SetTaskCompleted(ctx, first.ID, true); err != nil {
		t.Fatalf("SetTaskCompleted: %v", err)
	}
	if err := s.RenameTask(ctx, second.ID, "review"); err != nil {
		t.Fatalf("RenameTask: %v", err)
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	want := []store.Task{
		{ID: first.ID, Name: "write report", Completed: true},
		{ID: second.ID, Name: "review", Completed: false},
	}
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(want))
	}
	for i := range want {
		if tasks[i] != want[i] {
			t.Errorf("task %d: got %+v, want %+v", i, tasks[i], want[i])
		}
	}

	if err := s.DeleteTask(ctx, first.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := s.GetTask(ctx, first.ID); !errors.Is(err, store.ErrTaskNotFound) {
		t.Errorf("GetTask after delete: got %v, want ErrTaskNotFound", err)
	}
}

func TestTaskNullColumns(t *testing.T) {
	ctx := context.Background()
	s := newMigratedStore(t)

	// Rows written by older frontends may leave both columns NULL.
	res, err := s.db.Exec(`INSERT INTO tasks (name, completed) VALUES (NULL, NULL)`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	id, _ := res.LastInsertId()

	task, err := s.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task.Name != "" || task.Completed {
		t.Errorf("got %+v, want empty name and not completed", task)
	}
}

func TestTaskNotFound(t *testing.T) {
	ctx := context.Background()
	s := newMigratedStore(t)

	tests := []struct {
		name string
		fn   func() error
	}{
		{"complete", func() error { return s.SetTaskCompleted(ctx, 42, true) }},
		{"rename", func() error { return s.RenameTask(ctx, 42, "x") }},
		{"delete", func() error { return s.DeleteTask(ctx, 42) }},
		{"get", func() error { _, err := s.GetTask(ctx, 42); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, store.ErrTaskNotFound) {
				t.Errorf("got %v, want ErrTaskNotFound", err)
			}
		})
	}
}

package store

// DefaultTaskName is used when a task is created without a name.
const DefaultTaskName = "Your new task"

// Task is a to-do entry worked on during pomodoro sessions.
type Task struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

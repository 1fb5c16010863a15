package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Kzeezee/Pomodoko/internal/store/sqlite"
)

func newTasksCmd() *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage the task list",
	}

	tasksCmd.AddCommand(
		&cobra.Command{
			Use:   "add [NAME...]",
			Short: "Add a task",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, _, app, err := initApp(cmd.Context())
				if err != nil {
					return err
				}
				defer app.Close()

				task, err := app.DB.CreateTask(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added task %d: %s\n", task.ID, task.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List tasks",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, _, app, err := initApp(cmd.Context())
				if err != nil {
					return err
				}
				defer app.Close()

				tasks, err := app.DB.ListTasks(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "ID\tDONE\tNAME")
				for _, t := range tasks {
					done := " "
					if t.Completed {
						done = "x"
					}
					fmt.Fprintf(w, "%d\t[%s]\t%s\n", t.ID, done, t.Name)
				}
				return w.Flush()
			},
		},
		taskIDCmd("done ID", "Mark a task completed", func(c *cobra.Command, db *sqlite.SQLiteStore, id int64) error {
			return db.SetTaskCompleted(c.Context(), id, true)
		}),
		taskIDCmd("undo ID", "Mark a task not completed", func(c *cobra.Command, db *sqlite.SQLiteStore, id int64) error {
			return db.SetTaskCompleted(c.Context(), id, false)
		}),
		taskIDCmd("rm ID", "Delete a task", func(c *cobra.Command, db *sqlite.SQLiteStore, id int64) error {
			return db.DeleteTask(c.Context(), id)
		}),
	)
	return tasksCmd
}

// taskIDCmd builds a subcommand that acts on one task id.
func taskIDCmd(use, short string, fn func(*cobra.Command, *sqlite.SQLiteStore, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("task id must be an integer: %q", args[0])
			}
			_, _, app, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			return fn(cmd, app.DB, id)
		},
	}
}

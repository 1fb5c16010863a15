package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Kzeezee/Pomodoko/internal/config"
	"github.com/Kzeezee/Pomodoko/internal/logger"
	"github.com/Kzeezee/Pomodoko/internal/store"
	"github.com/Kzeezee/Pomodoko/internal/store/sqlite"
)

var rollbackTarget int

func newDBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		RunE:  runDBMigrate,
	}
	rollbackCmd := &cobra.Command{
		Use:   "rollback",
		Short: "Revert applied migrations above a version",
		RunE:  runDBRollback,
	}
	rollbackCmd.Flags().IntVar(&rollbackTarget, "to", 0, "version to roll back to (0 reverts everything)")
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE:  runDBStatus,
	}
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify schema state against this build",
		RunE:  runDBVerify,
	}

	dbCmd.AddCommand(migrateCmd, rollbackCmd, statusCmd, verifyCmd)
	return dbCmd
}

// openDB opens the database without migrating it.
func openDB(ctx context.Context) (*sqlite.SQLiteStore, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openConfiguredDB(ctx, cfg, log)
}

func openConfiguredDB(ctx context.Context, cfg *config.Config, log logger.Logger) (*sqlite.SQLiteStore, error) {
	if err := store.EnsureDir(cfg.DataDir); err != nil {
		return nil, err
	}
	db := sqlite.New(cfg.DBPath(), log)
	if err := db.Open(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

func runDBMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Migrate(ctx, sqlite.Migrations())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations.")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", n)
	}
	return nil
}

func runDBRollback(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Rollback(ctx, sqlite.Migrations(), rollbackTarget)
	if err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reverted %d migration(s).\n", n)
	return nil
}

func runDBStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	statuses, err := db.Status(ctx, sqlite.Migrations())
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "VERSION\tDESCRIPTION\tSTATUS\tAPPLIED AT")
	for _, st := range statuses {
		appliedAt := "-"
		if st.AppliedAt != nil {
			appliedAt = st.AppliedAt.Format("2006-01-02 15:04:05")
		}
		status := "pending"
		switch {
		case st.Unknown:
			status = "unknown"
		case st.Applied:
			status = "applied"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", st.Version, st.Description, status, appliedAt)
	}
	return w.Flush()
}

func runDBVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	presence, err := store.CheckExists(cfg.DBPath(), cfg.PreferencesPath())
	if err != nil {
		return err
	}
	if !presence.Preferences {
		fmt.Fprintf(out, "preferences: %s is missing\n", cfg.PreferencesPath())
	}
	if !presence.Database {
		fmt.Fprintf(out, "state: %s (%s)\n", store.StateMissing, cfg.DBPath())
		return fmt.Errorf("database is not ready: %s", store.StateMissing)
	}

	db, err := openConfiguredDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	ms := sqlite.Migrations()
	state, err := db.CheckState(ctx, ms)
	if err != nil {
		return err
	}
	current, err := db.GetSchemaVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "state: %s (%s: database version %d, build version %d)\n", state, db.Path(), current, ms.Latest())
	if state != store.StateReady {
		return fmt.Errorf("database is not ready: %s", state)
	}
	return nil
}

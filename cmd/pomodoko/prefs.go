package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Kzeezee/Pomodoko/internal/prefs"
)

func newPrefsCmd() *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Read and change preferences",
	}

	prefsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every preference",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, _, app, err := initApp(cmd.Context())
				if err != nil {
					return err
				}
				defer app.Close()

				snap := app.Prefs.Snapshot()
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "KEY\tVALUE")
				for _, k := range app.Prefs.Keys() {
					fmt.Fprintf(w, "%s\t%s\n", k, snap[k])
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print one preference",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, _, app, err := initApp(cmd.Context())
				if err != nil {
					return err
				}
				defer app.Close()

				v, ok := app.Prefs.Get(args[0])
				if !ok {
					return fmt.Errorf("preference %s is not set", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(v))
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Set a preference; VALUE is JSON, or a plain string",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, _, app, err := initApp(cmd.Context())
				if err != nil {
					return err
				}
				defer app.Close()

				return app.Prefs.Set(args[0], parseValue(args[1]))
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Write any missing default preferences",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, err := loadConfig()
				if err != nil {
					return err
				}
				doc, err := prefs.Load(cfg.PreferencesPath())
				if err != nil {
					return err
				}

				seeded, err := prefs.Seed(doc, prefs.Defaults())
				for _, k := range seeded {
					log.Info("seeded preference %s", k)
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				if err != nil {
					return err
				}
				if len(seeded) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "All defaults already set.")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "durations",
			Short: "Show the timer lengths",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, _, app, err := initApp(cmd.Context())
				if err != nil {
					return err
				}
				defer app.Close()

				d, err := prefs.ReadDurations(app.Prefs)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "pomodoro    %s\n", prefs.FormatClock(d.Pomodoro))
				fmt.Fprintf(out, "short rest  %s\n", prefs.FormatClock(d.ShortRest))
				fmt.Fprintf(out, "long rest   %s\n", prefs.FormatClock(d.LongRest))
				return nil
			},
		},
	)
	return prefsCmd
}

// parseValue accepts any JSON literal and falls back to a string.
func parseValue(s string) any {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err == nil {
		return raw
	}
	return s
}

package main

import (
	"bytes"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()

	// Steps share dir and run in order.
	steps := []struct {
		args    []string
		want    []string
		wantErr bool
	}{
		{args: []string{"db", "verify"}, want: []string{"preferences:", "state: missing"}, wantErr: true},
		{args: []string{"prefs", "seed"}, want: []string{"pomodoro\nshort_rest\nlong_rest\n"}},
		{args: []string{"prefs", "seed"}, want: []string{"All defaults already set."}},
		{args: []string{"prefs", "get", "pomodoro"}, want: []string{"1500\n"}},
		{args: []string{"prefs", "set", "pomodoro", "600"}},
		{args: []string{"prefs", "get", "pomodoro"}, want: []string{"600\n"}},
		{args: []string{"prefs", "get", "missing"}, wantErr: true},
		{args: []string{"prefs", "durations"}, want: []string{"pomodoro    10:00", "long rest   15:00"}},
		{args: []string{"db", "verify"}, want: []string{"state: ready", "database version 1, build version 1"}},
		{args: []string{"tasks", "add", "write report"}},
		{args: []string{"tasks", "list"}, want: []string{"write report"}},
		{args: []string{"greet", "Ada"}, want: []string{"Hello, Ada! You've been greeted from Go!"}},
	}

	for _, st := range steps {
		args := append([]string{"--data-dir", dir, "--log-level", "error"}, st.args...)
		out, err := execute(t, args...)
		if st.wantErr != (err != nil) {
			t.Fatalf("%v: err = %v, wantErr %v (output %q)", st.args, err, st.wantErr, out)
		}
		for _, w := range st.want {
			if !strings.Contains(out, w) {
				t.Errorf("%v: output %q does not contain %q", st.args, out, w)
			}
		}
	}
}

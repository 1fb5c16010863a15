package startup

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Kzeezee/Pomodoko/internal/config"
	"github.com/Kzeezee/Pomodoko/internal/logger"
	"github.com/Kzeezee/Pomodoko/internal/prefs"
	"github.com/Kzeezee/Pomodoko/internal/store"
	"github.com/Kzeezee/Pomodoko/internal/store/sqlite"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:         filepath.Join(t.TempDir(), "data"),
		DBFile:          store.DefaultDBFile,
		PreferencesFile: store.DefaultPreferencesFile,
	}
}

func initApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := NewInitializer(cfg, logger.Discard).Init(context.Background())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	var ran []string
	step := func(name string, err error) Step {
		return Step{Name: name, Run: func(context.Context) error {
			ran = append(ran, name)
			return err
		}}
	}
	boom := errors.New("boom")

	err := Run(context.Background(), logger.Discard,
		step("one", nil),
		step("two", boom),
		step("three", nil),
	)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
	if want := []string{"one", "two"}; !reflect.DeepEqual(ran, want) {
		t.Errorf("ran %v, want %v", ran, want)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := Run(ctx, logger.Discard, Step{Name: "never", Run: func(context.Context) error {
		called = true
		return nil
	}})
	if !errors.Is(err, context.Canceled) || called {
		t.Errorf("got err=%v called=%v", err, called)
	}
}

func TestInitFreshEnvironment(t *testing.T) {
	cfg := testConfig(t)
	app := initApp(t, cfg)

	state, err := app.DB.CheckState(context.Background(), sqlite.Migrations())
	if err != nil || state != store.StateReady {
		t.Errorf("database state: %s, %v", state, err)
	}

	want := map[string]int{"pomodoro": 1500, "short_rest": 300, "long_rest": 900}
	for k, v := range want {
		if n, ok, err := app.Prefs.GetInt(k); err != nil || !ok || n != v {
			t.Errorf("%s = %d, %v, %v; want %d", k, n, ok, err, v)
		}
	}

	data, err := os.ReadFile(cfg.PreferencesPath())
	if err != nil {
		t.Fatalf("reading preferences: %v", err)
	}
	var doc map[string]int
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parsing preferences: %v", err)
	}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("persisted document: got %v, want %v", doc, want)
	}
}

func TestInitKeepsUserPreference(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.PreferencesPath(), []byte(`{"pomodoro": 600}`), 0o644); err != nil {
		t.Fatal(err)
	}

	app := initApp(t, cfg)

	want := map[string]int{"pomodoro": 600, "short_rest": 300, "long_rest": 900}
	for k, v := range want {
		if n, _, _ := app.Prefs.GetInt(k); n != v {
			t.Errorf("%s = %d, want %d", k, n, v)
		}
	}
}

func TestInitRunsOnce(t *testing.T) {
	in := NewInitializer(testConfig(t), logger.Discard)
	first, err := in.Init(context.Background())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer first.Close()

	second, err := in.Init(context.Background())
	if err != nil || second != first {
		t.Errorf("second Init returned %p, %v; want %p", second, err, first)
	}
}

func TestInitRestartIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	app := initApp(t, cfg)
	if err := app.Prefs.Set(prefs.KeyLongRest, 1800); err != nil {
		t.Fatalf("Set: %v", err)
	}
	app.Close()

	again := initApp(t, cfg)
	if n, _, _ := again.Prefs.GetInt(prefs.KeyLongRest); n != 1800 {
		t.Errorf("long_rest after restart: got %d, want 1800", n)
	}
	if v, _ := again.DB.GetSchemaVersion(context.Background()); v != 1 {
		t.Errorf("schema version after restart: got %d, want 1", v)
	}
}

func TestInitFailsOnVersionSkew(t *testing.T) {
	cfg := testConfig(t)

	newer := NewInitializer(cfg, logger.Discard)
	newer.Migrations = append(sqlite.Migrations(), store.Migration{Version: 2, SQL: "CREATE TABLE later (x INTEGER);"})
	app, err := newer.Init(context.Background())
	if err != nil {
		t.Fatalf("Init with newer binary: %v", err)
	}
	app.Close()

	_, err = NewInitializer(cfg, logger.Discard).Init(context.Background())
	if !errors.Is(err, store.ErrVersionSkew) {
		t.Fatalf("got %v, want ErrVersionSkew", err)
	}
}

func TestInitFailsOnCorruptPreferences(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.PreferencesPath(), []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewInitializer(cfg, logger.Discard).Init(context.Background())
	if !errors.Is(err, store.ErrStoreOpen) {
		t.Fatalf("got %v, want ErrStoreOpen", err)
	}
}

// brokenKV accepts one write and then fails, like a disk filling up.
type brokenKV struct {
	entries map[string]json.RawMessage
}

func (b *brokenKV) Get(key string) (json.RawMessage, bool) {
	v, ok := b.entries[key]
	return v, ok
}

func (b *brokenKV) Set(key string, value any) error {
	if len(b.entries) >= 1 {
		return store.ErrPersistenceWrite
	}
	b.entries[key] = json.RawMessage(`0`)
	return nil
}

func TestSeedWriteFailureIsFatal(t *testing.T) {
	kv := &brokenKV{entries: map[string]json.RawMessage{}}
	served := false

	err := Run(context.Background(), logger.Discard,
		Step{Name: "seed default preferences", Run: func(context.Context) error {
			_, err := prefs.Seed(kv, prefs.Defaults())
			return err
		}},
		Step{Name: "serve", Run: func(context.Context) error {
			served = true
			return nil
		}},
	)
	if !errors.Is(err, store.ErrPersistenceWrite) {
		t.Fatalf("got %v, want ErrPersistenceWrite", err)
	}
	if served {
		t.Error("startup continued after a failed seed write")
	}
}

func TestInitWithoutConfig(t *testing.T) {
	if _, err := (&Initializer{Log: logger.Discard}).Init(context.Background()); err == nil {
		t.Error("expected error without configuration")
	}
}

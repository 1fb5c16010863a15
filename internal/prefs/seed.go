package prefs

import (
	"encoding/json"
	"fmt"
	"time"
)

// Preference keys every install must have.
const (
	KeyPomodoro  = "pomodoro"
	KeyShortRest = "short_rest"
	KeyLongRest  = "long_rest"
)

// Default is a required key and its canonical value.
type Default struct {
	Key   string
	Value any
}

var defaults = []Default{
	{Key: KeyPomodoro, Value: int((25 * time.Minute).Seconds())},
	{Key: KeyShortRest, Value: int((5 * time.Minute).Seconds())},
	{Key: KeyLongRest, Value: int((15 * time.Minute).Seconds())},
}

// Defaults returns a copy of the required-defaults table.
func Defaults() []Default {
	return append([]Default(nil), defaults...)
}

// Getter reads raw preference values.
type Getter interface {
	Get(key string) (json.RawMessage, bool)
}

// KV is the part of the preference store the seeder needs.
type KV interface {
	Getter
	Set(key string, value any) error
}

// Seed writes the default value for every key in table that is absent
// from kv. Present keys are never touched, including ones holding null.
// It stops at the first failed write and returns the keys seeded so far.
func Seed(kv KV, table []Default) ([]string, error) {
	var seeded []string
	for _, d := range table {
		if _, ok := kv.Get(d.Key); ok {
			continue
		}
		if err := kv.Set(d.Key, d.Value); err != nil {
			return seeded, fmt.Errorf("seeding %s: %w", d.Key, err)
		}
		seeded = append(seeded, d.Key)
	}
	return seeded, nil
}

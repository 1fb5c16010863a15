package prefs

import (
	"fmt"
	"time"
)

// Durations are the timer lengths read from the preference store.
type Durations struct {
	Pomodoro  time.Duration
	ShortRest time.Duration
	LongRest  time.Duration
}

// ReadDurations reads the three timer lengths, falling back to the default
// for any key that is absent.
func ReadDurations(g Getter) (Durations, error) {
	var d Durations
	fields := map[string]*time.Duration{
		KeyPomodoro:  &d.Pomodoro,
		KeyShortRest: &d.ShortRest,
		KeyLongRest:  &d.LongRest,
	}
	for _, def := range defaults {
		secs, ok, err := getInt(g, def.Key)
		if err != nil {
			return Durations{}, err
		}
		if !ok {
			secs = def.Value.(int)
		}
		*fields[def.Key] = time.Duration(secs) * time.Second
	}
	return d, nil
}

// FormatClock renders d as MM:SS, the way the timer face shows it.
func FormatClock(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

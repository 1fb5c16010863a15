// Package startup runs the fixed, ordered initialization sequence that must
// succeed before Pomodoko serves anything.
package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/Kzeezee/Pomodoko/internal/logger"
)

// Step is one named stage of the startup sequence.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Run executes steps in order and stops at the first failure. The returned
// error names the failing step and wraps its cause.
func Run(ctx context.Context, log logger.Logger, steps ...Step) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("startup: %s: %w", step.Name, err)
		}
		started := time.Now()
		if err := step.Run(ctx); err != nil {
			log.Error("startup step %q failed: %v", step.Name, err)
			return fmt.Errorf("startup: %s: %w", step.Name, err)
		}
		log.Debug("startup step %q done in %s", step.Name, time.Since(started).Round(time.Millisecond))
	}
	return nil
}

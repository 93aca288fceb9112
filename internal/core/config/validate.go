package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/marksync/internal/core/styles"
)

const (
	maxDebounce   = 10 * time.Second
	maxUndoDepth  = 1000
	minWeekWindow = 2
)

// Validate checks that the configuration is valid. Errors are reported per
// field as criterio.FieldErrors.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("sync.debounce", c.Sync.Debounce, debounceInRange),
		criterio.Run("history.max_entries", c.History.MaxEntries, undoDepthInRange),
		criterio.Run("due.week_horizon_days", c.Due.WeekHorizonDays, weekHorizonInRange),
		criterio.Run("theme", c.Theme, knownTheme),
	)
}

func debounceInRange(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	if d > maxDebounce {
		return fmt.Errorf("must be at most %s", maxDebounce)
	}
	return nil
}

func undoDepthInRange(n int) error {
	if n < 1 || n > maxUndoDepth {
		return fmt.Errorf("must be between 1 and %d", maxUndoDepth)
	}
	return nil
}

func weekHorizonInRange(n int) error {
	if n < minWeekWindow {
		return fmt.Errorf("must be at least %d so tomorrow stays distinct", minWeekWindow)
	}
	return nil
}

func knownTheme(name string) error {
	names := styles.ThemeNames()
	if !slices.Contains(names, name) {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(names, ", "))
	}
	return nil
}

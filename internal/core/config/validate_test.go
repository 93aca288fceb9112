package config

import (
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{
			name:      "zero debounce",
			mutate:    func(c *Config) { c.Sync.Debounce = 0 },
			wantField: "sync.debounce",
		},
		{
			name:      "debounce too long",
			mutate:    func(c *Config) { c.Sync.Debounce = time.Minute },
			wantField: "sync.debounce",
		},
		{
			name:      "undo depth too large",
			mutate:    func(c *Config) { c.History.MaxEntries = 5000 },
			wantField: "history.max_entries",
		},
		{
			name:      "week horizon collapses into tomorrow",
			mutate:    func(c *Config) { c.Due.WeekHorizonDays = 1 },
			wantField: "due.week_horizon_days",
		},
		{
			name:      "unknown theme",
			mutate:    func(c *Config) { c.Theme = "solarized" },
			wantField: "theme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, tt.wantField, fieldErrs[0].Field)
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sync.Debounce = -1
	cfg.History.MaxEntries = -1
	cfg.Due.WeekHorizonDays = 0

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, cfg.Validate(), &fieldErrs)
	assert.Len(t, fieldErrs, 3)
}

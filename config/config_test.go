package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `log:
  level: debug
extract:
  header_scan_lines: 8
schedule:
  min_hours: 8
  max_hours: 10
optimizer:
  time_budget_seconds: 2.5
  enforce_driver_class: true
store:
  path: plan.db
journal:
  backend: sqlite
  path: runs.db
metrics:
  sinks:
    - type: prometheus
      conf:
        job: shiftplan
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"level", cfg.Log.Level, "debug"},
		{"header", cfg.Extract.HeaderScanLines, 8},
		{"min row default", cfg.Extract.MinRowFields, 8},
		{"concurrency default", cfg.Extract.MaxConcurrency, 4},
		{"min", cfg.Schedule.MinHours, 8.0},
		{"max", cfg.Schedule.MaxHours, 10.0},
		{"budget", cfg.Optimizer.TimeBudgetSeconds, 2.5},
		{"class", cfg.Optimizer.EnforceDriverClass, true},
		{"store", cfg.Store.Path, "plan.db"},
		{"journal backend", cfg.Journal.Backend, "sqlite"},
		{"journal path", cfg.Journal.Path, "runs.db"},
		{"sinks", len(cfg.Metrics.Sinks), 1},
		{"sink type", cfg.Metrics.Sinks[0].Type, "prometheus"},
		{"sink job", cfg.Metrics.Sinks[0].Conf["job"], "shiftplan"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10.0, cfg.Schedule.MinHours)
	assert.Equal(t, 12.0, cfg.Schedule.MaxHours)
	assert.Equal(t, 10.0, cfg.Optimizer.TimeBudgetSeconds)
	assert.Equal(t, "shiftplan.db", cfg.Store.Path)
	assert.Equal(t, "jsonl", cfg.Journal.Backend)
	assert.Empty(t, cfg.Metrics.Sinks)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"schedule": {"min_hours": 6, "max_hours": 9}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6.0, cfg.Schedule.MinHours)
	assert.Equal(t, 9.0, cfg.Schedule.MaxHours)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", "schedule:\n  min_hours: 8\n  max_hours: 10\n")
	t.Setenv("SHIFTPLAN_SCHEDULE__MAX_HOURS", "11")
	t.Setenv("SHIFTPLAN_OPTIMIZER__ENFORCE_DRIVER_CLASS", "true")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8.0, cfg.Schedule.MinHours)
	assert.Equal(t, 11.0, cfg.Schedule.MaxHours)
	assert.True(t, cfg.Optimizer.EnforceDriverClass)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"bounds":  "schedule:\n  min_hours: 12\n  max_hours: 10\n",
		"level":   "log:\n  level: loud\n",
		"budget":  "optimizer:\n  time_budget_seconds: -1\n",
		"journal": "journal:\n  backend: kafka\n",
		"rows":    "extract:\n  min_row_fields: 3\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", data))
			assert.Error(t, err)
		})
	}
	_, err := Load(writeFile(t, "config.toml", ""))
	assert.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `app:
  name: "RallyDesk"
  environment: "test"
  port: 8080

database:
  driver: "sqlite"
  filename: "data/rallydesk.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Scheduling.WindowStart != "08:00" || cfg.Scheduling.WindowEnd != "22:00" {
		t.Errorf("window defaults = %s-%s", cfg.Scheduling.WindowStart, cfg.Scheduling.WindowEnd)
	}
	if cfg.Scheduling.SlotMinutes != 30 {
		t.Errorf("slot_minutes = %d, want 30", cfg.Scheduling.SlotMinutes)
	}
	if cfg.Scheduling.GameDurationMinutes != 60 {
		t.Errorf("game_duration_minutes = %d, want 60", cfg.Scheduling.GameDurationMinutes)
	}
	if cfg.Audit.CronExpression != "0 3 * * *" {
		t.Errorf("audit cron = %s", cfg.Audit.CronExpression)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `app:
  name: "RallyDesk"
  environment: "test"
  port: 9090

database:
  driver: "sqlite"
  filename: "data/rallydesk.db"

scheduling:
  window_start: "09:00"
  window_end: "18:00"
  game_duration_minutes: 45
  min_rest_minutes: 15

audit:
  enabled: true
  cron_expression: "30 2 * * *"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Scheduling.WindowStart != "09:00" || cfg.Scheduling.WindowEnd != "18:00" {
		t.Errorf("window = %s-%s", cfg.Scheduling.WindowStart, cfg.Scheduling.WindowEnd)
	}
	if cfg.Scheduling.GameDurationMinutes != 45 || cfg.Scheduling.MinRestMinutes != 15 {
		t.Errorf("durations = %d/%d", cfg.Scheduling.GameDurationMinutes, cfg.Scheduling.MinRestMinutes)
	}
	if !cfg.Audit.Enabled || cfg.Audit.CronExpression != "30 2 * * *" {
		t.Errorf("audit = %+v", cfg.Audit)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			"missing app name",
			"app:\n  port: 8080\ndatabase:\n  driver: \"sqlite\"\n  filename: \"x.db\"\n",
		},
		{
			"unsupported driver",
			"app:\n  name: \"RallyDesk\"\n  port: 8080\ndatabase:\n  driver: \"postgres\"\n",
		},
		{
			"bad window clock",
			"app:\n  name: \"RallyDesk\"\n  port: 8080\ndatabase:\n  driver: \"sqlite\"\n  filename: \"x.db\"\nscheduling:\n  window_start: \"8am\"\n",
		},
		{
			"negative rest",
			"app:\n  name: \"RallyDesk\"\n  port: 8080\ndatabase:\n  driver: \"sqlite\"\n  filename: \"x.db\"\nscheduling:\n  min_rest_minutes: -5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

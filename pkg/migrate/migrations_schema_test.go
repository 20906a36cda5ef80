package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUsersMigrationEnforcesPhoneConstraints(t *testing.T) {
	content := readMigration(t, "*_create_users.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CONSTRAINT users_phone_key UNIQUE (phone)",
		`CHECK (phone ~ '^0[689][0-9]{8}$')`,
		"DROP TABLE IF EXISTS users",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestUserPointsMigrationForbidsNegativeBalance(t *testing.T) {
	content := readMigration(t, "*_create_user_points.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS user_points",
		"FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE",
		"CHECK (points >= 0)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSettingsMigrationSeedsSingleton(t *testing.T) {
	content := readMigration(t, "*_create_machine_settings.sql")

	checks := []string{
		"CHECK (id = 1)",
		`'{"glass": 5, "plastic": 3, "can": 4}'::jsonb`,
		"ON CONFLICT (id) DO NOTHING",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMachineStatusMigrationCarriesTelemetryColumns(t *testing.T) {
	content := readMigration(t, "*_create_machine_status.sql")

	checks := []string{
		"max_bottles INTEGER NOT NULL DEFAULT 500",
		"cpu_temp DOUBLE PRECISION",
		"storage_used DOUBLE PRECISION",
		"CHECK (max_bottles > 0)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValid(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected migration files")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "priced.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-priced
providers:
  bulk:
    url: https://bulk.example.com/v1/items
  single:
    url: https://single.example.com/priceoverview/
database:
  postgres:
    host: localhost
    port: 5432
    name: test_db
    user: testuser
    password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-priced" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-priced")
	}
	if cfg.Providers.Bulk.URL != "https://bulk.example.com/v1/items" {
		t.Errorf("Providers.Bulk.URL = %q, want %q", cfg.Providers.Bulk.URL, "https://bulk.example.com/v1/items")
	}
	if cfg.Database.Postgres.Host != "localhost" {
		t.Errorf("Database.Postgres.Host = %q, want %q", cfg.Database.Postgres.Host, "localhost")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")
	t.Setenv("TEST_BULK_TOKEN", "tok-abc")

	yaml := `
instance:
  id: test-priced
providers:
  bulk:
    token: ${TEST_BULK_TOKEN}
database:
  postgres:
    host: localhost
    name: test_db
    user: testuser
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Postgres.Password != "secret123" {
		t.Errorf("Password = %q, want %q", cfg.Database.Postgres.Password, "secret123")
	}
	if cfg.Providers.Bulk.Token != "tok-abc" {
		t.Errorf("Bulk.Token = %q, want %q", cfg.Providers.Bulk.Token, "tok-abc")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: test-priced
database:
  postgres:
    host: localhost
    name: test_db
    user: testuser
    password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("Cache.TTL = %v, want %v", cfg.Cache.TTL, 24*time.Hour)
	}
	if cfg.Cache.Backend != "postgres" {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, "postgres")
	}
	if cfg.Providers.Bulk.SnapshotTTL != 10*time.Minute {
		t.Errorf("SnapshotTTL = %v, want %v", cfg.Providers.Bulk.SnapshotTTL, 10*time.Minute)
	}
	if cfg.Providers.Single.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Providers.Single.MaxAttempts)
	}
	if cfg.Limiter.Cooldown != time.Second {
		t.Errorf("Cooldown = %v, want %v", cfg.Limiter.Cooldown, time.Second)
	}
	if cfg.Refresher.ItemDelay != 350*time.Millisecond {
		t.Errorf("ItemDelay = %v, want %v", cfg.Refresher.ItemDelay, 350*time.Millisecond)
	}
	if cfg.Database.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want 5432", cfg.Database.Postgres.Port)
	}
}

func TestLoadAndValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		yaml := `
instance:
  id: test-priced
database:
  postgres:
    host: localhost
    name: test_db
    user: testuser
    password: testpass
`
		path := writeTempFile(t, yaml)
		if _, err := LoadAndValidate(path); err != nil {
			t.Fatalf("LoadAndValidate failed: %v", err)
		}
	})

	t.Run("missing instance id", func(t *testing.T) {
		yaml := `
database:
  postgres:
    host: localhost
    name: test_db
    user: testuser
    password: testpass
`
		path := writeTempFile(t, yaml)
		_, err := LoadAndValidate(path)
		if err == nil {
			t.Fatal("expected error for missing instance.id")
		}
		if !strings.Contains(err.Error(), "instance.id") {
			t.Errorf("error = %v, want mention of instance.id", err)
		}
	})

	t.Run("bad cache backend", func(t *testing.T) {
		yaml := `
instance:
  id: test-priced
cache:
  backend: memcached
database:
  postgres:
    host: localhost
    name: test_db
    user: testuser
    password: testpass
`
		path := writeTempFile(t, yaml)
		_, err := LoadAndValidate(path)
		if err == nil {
			t.Fatal("expected error for unknown cache backend")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadAndValidate(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}

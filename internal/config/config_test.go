package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	content := `
server:
  port: ":9090"
database:
  url: "postgres://u:p@localhost/db"
telegram:
  api_id: 12345
  api_hash: "abc"
  phone: "+100000000"
collector:
  poll_interval_seconds: 60
classifier:
  strong_credential_score: 3
auth:
  jwt_secret: "test-secret"
`
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != ":9090" {
		t.Errorf("port = %q, want :9090", cfg.Server.Port)
	}
	if cfg.Telegram.APIID != 12345 {
		t.Errorf("api_id = %d, want 12345", cfg.Telegram.APIID)
	}
	if cfg.Collector.PollInterval != 60 {
		t.Errorf("poll interval = %d, want 60", cfg.Collector.PollInterval)
	}
	if cfg.Classifier.StrongCredentialScore != 3 {
		t.Errorf("strong_credential_score = %d, want 3", cfg.Classifier.StrongCredentialScore)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("database:\n  url: \"postgres://localhost/db\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != ":8080" {
		t.Errorf("default port = %q, want :8080", cfg.Server.Port)
	}
	if cfg.Telegram.SessionFile != "session.json" {
		t.Errorf("default session file = %q", cfg.Telegram.SessionFile)
	}
	if cfg.Collector.PollInterval != 300 {
		t.Errorf("default poll interval = %d, want 300", cfg.Collector.PollInterval)
	}
	if cfg.Collector.FetchLimit != 100 {
		t.Errorf("default fetch limit = %d, want 100", cfg.Collector.FetchLimit)
	}
	if cfg.OpenSearch.MessageIndex != "telegram-extracted-data" {
		t.Errorf("default message index = %q", cfg.OpenSearch.MessageIndex)
	}
	if cfg.OpenSearch.LeakIndex != "credential-leaks" {
		t.Errorf("default leak index = %q", cfg.OpenSearch.LeakIndex)
	}
	if cfg.Minio.Bucket != "leaks" {
		t.Errorf("default bucket = %q", cfg.Minio.Bucket)
	}
	if cfg.Classifier.StrongCredentialScore != 2 {
		t.Errorf("default strong_credential_score = %d, want 2", cfg.Classifier.StrongCredentialScore)
	}
	if cfg.Alerts.MinSeverity != "high" {
		t.Errorf("default min severity = %q, want high", cfg.Alerts.MinSeverity)
	}
	if cfg.Auth.TokenTTLMinutes != 60 {
		t.Errorf("default token ttl = %d, want 60", cfg.Auth.TokenTTLMinutes)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

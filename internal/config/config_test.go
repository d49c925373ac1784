package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("CONFIGFILE", "")
	t.Setenv("STORAGE", "")
	t.Setenv("AUTH", "")
	t.Setenv("DEFAULTROLE", "")
	t.Setenv("ASSISTANTTIMEOUT", "")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AssistantTimeout != 60*time.Second {
		t.Fatalf("expected 60s assistant timeout, got %v", cfg.AssistantTimeout)
	}
	if cfg.Storage != StorageFirestore || cfg.Auth != AuthFirebase || cfg.DefaultRole != "editor" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestNewFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riskbi.yaml")
	body := "storage: memory\nauth: none\nport: \"9000\"\nassistantTimeout: 5s\nsessionCacheSize: 16\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIGFILE", path)
	t.Setenv("STORAGE", "")
	t.Setenv("AUTH", "")
	t.Setenv("PORT", "9100")
	t.Setenv("ASSISTANTTIMEOUT", "")
	t.Setenv("SESSIONCACHESIZE", "")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage != StorageMemory || cfg.Auth != AuthNone {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Port != "9100" {
		t.Fatalf("expected env to override file port, got %q", cfg.Port)
	}
	if cfg.AssistantTimeout != 5*time.Second || cfg.SessionCacheSize != 16 {
		t.Fatalf("unexpected file values: %+v", cfg)
	}
}

func TestNewRejectsBadValues(t *testing.T) {
	t.Setenv("CONFIGFILE", "")
	t.Setenv("STORAGE", "postgres")
	if _, err := New(); err == nil {
		t.Fatal("expected error for unknown storage")
	}

	t.Setenv("STORAGE", "")
	t.Setenv("ASSISTANTTIMEOUT", "soon")
	if _, err := New(); err == nil {
		t.Fatal("expected error for bad duration")
	}
}

func TestNewRejectsNonPositiveAssistantTimeout(t *testing.T) {
	t.Setenv("CONFIGFILE", "")
	t.Setenv("STORAGE", "")
	t.Setenv("AUTH", "")
	for _, v := range []string{"0s", "-5s"} {
		t.Setenv("ASSISTANTTIMEOUT", v)
		if _, err := New(); err == nil {
			t.Fatalf("expected error for ASSISTANTTIMEOUT=%s", v)
		}
	}

	t.Setenv("ASSISTANTTIMEOUT", "")
	path := filepath.Join(t.TempDir(), "riskbi.yaml")
	if err := os.WriteFile(path, []byte("assistantTimeout: 0s\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIGFILE", path)
	if _, err := New(); err == nil {
		t.Fatal("expected error for zero timeout from file")
	}
}

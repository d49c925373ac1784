package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageFirestore = "firestore"
	StorageMemory    = "memory"

	AuthFirebase = "firebase"
	AuthNone     = "none"
)

type Config struct {
	ProjectID           string        `yaml:"projectId"`
	Region              string        `yaml:"region"`
	LogLevel            string        `yaml:"logLevel"`
	LogFormat           string        `yaml:"logFormat"`
	Port                string        `yaml:"port"`
	Storage             string        `yaml:"storage"`
	Auth                string        `yaml:"auth"`
	KMSKeyName          string        `yaml:"kmsKeyName"`
	AssistantURL        string        `yaml:"assistantUrl"`
	AssistantTimeout    time.Duration `yaml:"assistantTimeout"`
	AssistantRetries    int           `yaml:"assistantRetries"`
	AssistantHistoryTTL time.Duration `yaml:"assistantHistoryTtl"`
	SessionCacheSize    int           `yaml:"sessionCacheSize"`
	DefaultRole         string        `yaml:"defaultRole"`
}

func defaults() *Config {
	return &Config{
		LogLevel:            "info",
		Port:                "8080",
		Storage:             StorageFirestore,
		Auth:                AuthFirebase,
		AssistantURL:        "http://localhost:8000",
		AssistantTimeout:    60 * time.Second,
		AssistantRetries:    2,
		AssistantHistoryTTL: 30 * 24 * time.Hour,
		SessionCacheSize:    1024,
		DefaultRole:         "editor",
	}
}

// New builds the configuration from defaults, then the YAML file named by
// CONFIGFILE (if any), then non-empty environment variables.
func New() (*Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIGFILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	setString(&cfg.ProjectID, "PROJECTID")
	setString(&cfg.Region, "REGION")
	setString(&cfg.LogLevel, "LOGLEVEL")
	setString(&cfg.LogFormat, "LOGFORMAT")
	setString(&cfg.Port, "PORT")
	setString(&cfg.Storage, "STORAGE")
	setString(&cfg.Auth, "AUTH")
	setString(&cfg.KMSKeyName, "KMSKEYNAME")
	setString(&cfg.AssistantURL, "ASSISTANTURL")
	setString(&cfg.DefaultRole, "DEFAULTROLE")
	if err := setDuration(&cfg.AssistantTimeout, "ASSISTANTTIMEOUT"); err != nil {
		return nil, err
	}
	if err := setDuration(&cfg.AssistantHistoryTTL, "ASSISTANTHISTORYTTL"); err != nil {
		return nil, err
	}
	if err := setInt(&cfg.AssistantRetries, "ASSISTANTRETRIES"); err != nil {
		return nil, err
	}
	if err := setInt(&cfg.SessionCacheSize, "SESSIONCACHESIZE"); err != nil {
		return nil, err
	}

	switch cfg.Storage {
	case StorageFirestore, StorageMemory:
	default:
		return nil, fmt.Errorf("config: unknown STORAGE %q", cfg.Storage)
	}
	switch cfg.Auth {
	case AuthFirebase, AuthNone:
	default:
		return nil, fmt.Errorf("config: unknown AUTH %q", cfg.Auth)
	}
	if cfg.AssistantTimeout <= 0 {
		return nil, fmt.Errorf("config: ASSISTANTTIMEOUT must be positive, got %s", cfg.AssistantTimeout)
	}
	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}

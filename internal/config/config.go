package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings of the contacts tool.
type Config struct {
	DBPath        string
	GraceWindow   time.Duration
	Debounce      time.Duration
	AccountTypes  []string
	RetryInterval time.Duration
	LogLevel      string
	LogFile       string
}

const (
	defaultConfigPath    = "~/.config/contacts/config.toml"
	defaultDataDir       = "~/.local/share/contacts"
	defaultGraceWindow   = 1500 * time.Millisecond
	defaultDebounce      = 300 * time.Millisecond
	defaultRetryInterval = 2 * time.Second
	defaultLogLevel      = "info"
)

var defaultAccountTypes = []string{"com.google", "vnd.sec.contact.phone"}

// Default returns the configuration used when no file exists.
func Default() Config {
	dataDir := mustExpand(defaultDataDir)
	return Config{
		DBPath:        filepath.Join(dataDir, "contacts.db"),
		GraceWindow:   defaultGraceWindow,
		Debounce:      defaultDebounce,
		AccountTypes:  append([]string(nil), defaultAccountTypes...),
		RetryInterval: defaultRetryInterval,
		LogLevel:      defaultLogLevel,
		LogFile:       filepath.Join(dataDir, "contacts.log"),
	}
}

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		DBPath        string   `toml:"db_path"`
		GraceWindow   string   `toml:"grace_window"`
		Debounce      string   `toml:"debounce"`
		AccountTypes  []string `toml:"account_types"`
		RetryInterval string   `toml:"retry_interval"`
		LogLevel      string   `toml:"log_level"`
		LogFile       string   `toml:"log_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if p := strings.TrimSpace(raw.DBPath); p != "" {
		cfg.DBPath = mustExpand(p)
	}
	if p := strings.TrimSpace(raw.LogFile); p != "" {
		cfg.LogFile = mustExpand(p)
	}
	if lvl := strings.ToLower(strings.TrimSpace(raw.LogLevel)); lvl != "" {
		cfg.LogLevel = lvl
	}

	for _, d := range []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"grace_window", raw.GraceWindow, &cfg.GraceWindow},
		{"debounce", raw.Debounce, &cfg.Debounce},
		{"retry_interval", raw.RetryInterval, &cfg.RetryInterval},
	} {
		if err := parseDuration(d.key, d.raw, d.dst); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if types := trimAll(raw.AccountTypes); len(types) > 0 {
		cfg.AccountTypes = types
	}

	return cfg, nil
}

// DataDir returns the directory holding the database.
func (c Config) DataDir() string {
	if strings.TrimSpace(c.DBPath) == "" {
		return mustExpand(defaultDataDir)
	}
	return filepath.Dir(c.DBPath)
}

// DefaultPath returns the config file used when no path is given.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

// parseDuration leaves dst untouched for an empty value.
func parseDuration(key, raw string, dst *time.Duration) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s: must be positive, got %s", key, raw)
	}
	*dst = d
	return nil
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

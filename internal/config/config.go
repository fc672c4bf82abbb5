package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SlotCount is the number of layout slots bound to hotkeys.
const SlotCount = 10

// StorageConfig selects where layouts are persisted.
type StorageConfig struct {
	// Backend is "json" (one file per layout) or "sqlite".
	Backend    string `yaml:"backend"`
	Dir        string `yaml:"dir,omitempty"`
	SQLitePath string `yaml:"sqlite_path,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	// SaveHotkey and RestoreHotkey are modifier prefixes; the slot key is
	// appended, e.g. "Mod4-Control" + "-KP_3".
	SaveHotkey      string        `yaml:"save_hotkey"`
	RestoreHotkey   string        `yaml:"restore_hotkey"`
	SlotKeys        []string      `yaml:"slot_keys"`
	WhitelistHotkey string        `yaml:"whitelist_hotkey"`
	Storage         StorageConfig `yaml:"storage"`
	LogLevel        string        `yaml:"log_level"`
	// IgnoreClasses lists WM_CLASS names that are never captured or restored.
	IgnoreClasses        []string `yaml:"ignore_classes"`
	ForegroundCorrection bool     `yaml:"foreground_correction"`
	MissingScreen        string   `yaml:"missing_screen"`
	// AutoRestoreSlot is restored when the display arrangement changes; -1
	// disables it.
	AutoRestoreSlot int `yaml:"auto_restore_slot"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		SaveHotkey:      "Mod4-Control",
		RestoreHotkey:   "Mod4",
		SlotKeys:        defaultSlotKeys(),
		WhitelistHotkey: "Mod4-Control-KP_Add",
		Storage: StorageConfig{
			Backend: "json",
		},
		LogLevel:             "info",
		IgnoreClasses:        []string{},
		ForegroundCorrection: true,
		MissingScreen:        "skip",
		AutoRestoreSlot:      -1,
	}
}

func defaultSlotKeys() []string {
	keys := make([]string, SlotCount)
	for i := range keys {
		keys[i] = fmt.Sprintf("KP_%d", i)
	}
	return keys
}

// DefaultConfigPath returns ~/.config/winsnap/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "winsnap", "config.yaml"), nil
}

// SlotHotkey returns the full key sequence for a slot under prefix.
func (c *Config) SlotHotkey(prefix string, slot int) string {
	if slot < 0 || slot >= len(c.SlotKeys) {
		return ""
	}
	if prefix == "" {
		return c.SlotKeys[slot]
	}
	return prefix + "-" + c.SlotKeys[slot]
}

// Ignored reports whether a WM_CLASS is excluded from layouts.
func (c *Config) Ignored(class string) bool {
	for _, ignored := range c.IgnoreClasses {
		if strings.EqualFold(ignored, class) {
			return true
		}
	}
	return false
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SaveHotkey) == "" {
		return &ValidationError{Path: "save_hotkey", Err: fmt.Errorf("save_hotkey is required")}
	}
	if strings.TrimSpace(c.RestoreHotkey) == "" {
		return &ValidationError{Path: "restore_hotkey", Err: fmt.Errorf("restore_hotkey is required")}
	}
	if c.SaveHotkey == c.RestoreHotkey {
		return &ValidationError{Path: "restore_hotkey", Err: fmt.Errorf("restore_hotkey must differ from save_hotkey")}
	}
	if len(c.SlotKeys) != SlotCount {
		return &ValidationError{Path: "slot_keys", Err: fmt.Errorf("slot_keys must list exactly %d keys", SlotCount)}
	}
	seen := make(map[string]bool, len(c.SlotKeys))
	for i, key := range c.SlotKeys {
		key = strings.TrimSpace(key)
		if key == "" {
			return &ValidationError{Path: fmt.Sprintf("slot_keys.%d", i), Err: fmt.Errorf("slot key must not be empty")}
		}
		if seen[key] {
			return &ValidationError{Path: fmt.Sprintf("slot_keys.%d", i), Err: fmt.Errorf("duplicate slot key %q", key)}
		}
		seen[key] = true
	}
	switch c.Storage.Backend {
	case "json", "sqlite":
	default:
		return &ValidationError{Path: "storage.backend", Err: fmt.Errorf("storage.backend must be one of: json, sqlite")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	for i, class := range c.IgnoreClasses {
		if strings.TrimSpace(class) == "" {
			return &ValidationError{Path: fmt.Sprintf("ignore_classes.%d", i), Err: fmt.Errorf("class name must not be empty")}
		}
	}
	switch c.MissingScreen {
	case "skip", "primary":
	default:
		return &ValidationError{Path: "missing_screen", Err: fmt.Errorf("missing_screen must be one of: skip, primary")}
	}
	if c.AutoRestoreSlot < -1 || c.AutoRestoreSlot >= SlotCount {
		return &ValidationError{Path: "auto_restore_slot", Err: fmt.Errorf("auto_restore_slot must be -1 or a slot between 0 and %d", SlotCount-1)}
	}
	return nil
}

// ValidationError reports an invalid setting, with the file position that
// set it when known.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

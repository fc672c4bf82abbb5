package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

type Source struct {
	Kind   SourceKind
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML-path -> file position
	File    string            // empty when no file exists
}

// RawConfig mirrors Config with optional fields so unset keys keep their
// defaults.
type RawConfig struct {
	SaveHotkey           *string           `yaml:"save_hotkey"`
	RestoreHotkey        *string           `yaml:"restore_hotkey"`
	SlotKeys             []string          `yaml:"slot_keys"`
	WhitelistHotkey      *string           `yaml:"whitelist_hotkey"`
	Storage              *RawStorageConfig `yaml:"storage"`
	LogLevel             *string           `yaml:"log_level"`
	IgnoreClasses        []string          `yaml:"ignore_classes"`
	ForegroundCorrection *bool             `yaml:"foreground_correction"`
	MissingScreen        *string           `yaml:"missing_screen"`
	AutoRestoreSlot      *int              `yaml:"auto_restore_slot"`
}

type RawStorageConfig struct {
	Backend    *string `yaml:"backend"`
	Dir        *string `yaml:"dir"`
	SQLitePath *string `yaml:"sqlite_path"`
}

// BuildEffectiveConfig applies raw settings on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.SaveHotkey != nil {
		cfg.SaveHotkey = *raw.SaveHotkey
	}
	if raw.RestoreHotkey != nil {
		cfg.RestoreHotkey = *raw.RestoreHotkey
	}
	if raw.SlotKeys != nil {
		cfg.SlotKeys = append([]string(nil), raw.SlotKeys...)
	}
	if raw.WhitelistHotkey != nil {
		cfg.WhitelistHotkey = *raw.WhitelistHotkey
	}
	if s := raw.Storage; s != nil {
		if s.Backend != nil {
			cfg.Storage.Backend = *s.Backend
		}
		if s.Dir != nil {
			cfg.Storage.Dir = expandHome(*s.Dir)
		}
		if s.SQLitePath != nil {
			cfg.Storage.SQLitePath = expandHome(*s.SQLitePath)
		}
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.IgnoreClasses != nil {
		cfg.IgnoreClasses = append([]string(nil), raw.IgnoreClasses...)
	}
	if raw.ForegroundCorrection != nil {
		cfg.ForegroundCorrection = *raw.ForegroundCorrection
	}
	if raw.MissingScreen != nil {
		cfg.MissingScreen = *raw.MissingScreen
	}
	if raw.AutoRestoreSlot != nil {
		cfg.AutoRestoreSlot = *raw.AutoRestoreSlot
	}
	return cfg
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources loads config and returns file-level sources for introspection.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the file at path over the defaults. A missing file
// yields the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	raw := RawConfig{}
	sources := map[string]Source{}
	file := ""

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%s: failed to parse yaml: %w", path, err)
		}
		if err := decodeStrictYAML(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		sources = collectSources(&doc, path)
		file = path
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	cfg := BuildEffectiveConfig(raw)
	if err := cfg.Validate(); err != nil {
		return nil, attachSourceContext(err, sources)
	}

	return &LoadResult{
		Config:  cfg,
		Sources: sources,
		File:    file,
	}, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + strings.TrimPrefix(path, "~")
}

func collectSources(doc *yaml.Node, file string) map[string]Source {
	out := make(map[string]Source)
	if doc == nil {
		return out
	}
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	collectSourcesRec(node, file, "", out)
	return out
}

func collectSourcesRec(node *yaml.Node, file string, prefix string, out map[string]Source) {
	if node == nil {
		return
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			val := node.Content[i+1]
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			out[path] = Source{Kind: SourceFile, File: file, Line: val.Line, Column: val.Column}
			collectSourcesRec(val, file, path, out)
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			path := fmt.Sprintf("%s.%d", prefix, i)
			out[path] = Source{Kind: SourceFile, File: file, Line: item.Line, Column: item.Column}
		}
	}
}

func attachSourceContext(err error, sources map[string]Source) error {
	verr, ok := err.(*ValidationError)
	if !ok || verr == nil || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return verr
}

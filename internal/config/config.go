// Package config loads the panel configuration from a single YAML file.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Data      DataConfig     `yaml:"data"`
	Classify  ClassifyConfig `yaml:"classify"`
	Outbound  OutboundConfig `yaml:"outbound"`
	Bridge    BridgeConfig   `yaml:"bridge"`
	UI        UIConfig       `yaml:"ui"`
	Log       LogConfig      `yaml:"log"`
	Demo      bool           `yaml:"demo"`
}

// DataConfig binds the logical message roles to source columns and sets the
// refresh cadence. Author and message are required; the panel shows a
// configuration prompt until both are set.
type DataConfig struct {
	AuthorColumn    string `yaml:"author_column"`
	MessageColumn   string `yaml:"message_column"`
	TimestampColumn string `yaml:"timestamp_column"`
	IDColumn        string `yaml:"id_column"`
	EmailColumn     string `yaml:"email_column"`

	RefreshIntervalMS int `yaml:"refresh_interval_ms"`
}

func (d DataConfig) RefreshInterval() time.Duration {
	return time.Duration(d.RefreshIntervalMS) * time.Millisecond
}

type ClassifyConfig struct {
	AssistantIdentifiers []string `yaml:"assistant_identifiers"`
	CurrentUser          string   `yaml:"current_user"`
}

type OutboundConfig struct {
	Variable   string `yaml:"variable"`
	TriggerURL string `yaml:"trigger_url"`
}

type BridgeConfig struct {
	Listen string `yaml:"listen"`
}

type UIConfig struct {
	Theme          string `yaml:"theme"`
	ShowTimestamps bool   `yaml:"show_timestamps"`
	Title          string `yaml:"title"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func DefaultConfig() Config {
	return Config{
		Data: DataConfig{
			AuthorColumn:      "author",
			MessageColumn:     "message",
			TimestampColumn:   "timestamp",
			RefreshIntervalMS: 1000,
		},
		Classify: ClassifyConfig{},
		Outbound: OutboundConfig{
			Variable: "chat_prompt",
		},
		Bridge: BridgeConfig{
			Listen: "127.0.0.1:8167",
		},
		UI: UIConfig{
			Theme:          "porcelain",
			ShowTimestamps: true,
			Title:          "Chat",
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(os.TempDir(), "chatbubble.log"),
		},
	}
}

// DefaultPath is the conventional config location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chatbubble.yaml"
	}
	return filepath.Join(home, ".config", "chatbubble", "config.yaml")
}

// Load reads the file at path on top of the defaults. A missing file is not
// an error; it just means defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Data.RefreshIntervalMS < 250 {
		cfg.Data.RefreshIntervalMS = 250
	}
	if cfg.Outbound.Variable == "" {
		cfg.Outbound.Variable = "chat_prompt"
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = "porcelain"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return cfg, nil
}

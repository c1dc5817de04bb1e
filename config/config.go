package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// MIDIConfig names the ports to open. Names are matched as
// case-insensitive substrings against the available ports.
type MIDIConfig struct {
	InputPort  string `json:"inputPort,omitempty"`
	OutputPort string `json:"outputPort,omitempty"`
}

// EngineConfig carries startup values for the sequencing core. Params is
// the flat key/value surface the engine exposes; anything set here is
// applied with SetParam before the first note. State, when present, is a
// full engine state blob saved on exit and restored on launch.
type EngineConfig struct {
	SampleRate int               `json:"sampleRate,omitempty"`
	BlockSize  int               `json:"blockSize,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
	State      string            `json:"state,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	MIDI   MIDIConfig   `json:"midi,omitempty"`
	Engine EngineConfig `json:"engine,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			SampleRate: 44100,
			BlockSize:  512,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "eucalypso"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Engine.SampleRate <= 0 {
		cfg.Engine.SampleRate = 44100
	}
	if cfg.Engine.BlockSize <= 0 {
		cfg.Engine.BlockSize = 512
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

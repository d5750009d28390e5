package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// UserConfig holds CLI preferences stored in ~/.shopfloor/config.yaml.
// Tokens never go here; they come from --token or SF_CLIENT_TOKEN.
type UserConfig struct {
	// Product used by board, reorder and plan commands when none is given
	DefaultProductID string `yaml:"default_product_id,omitempty"`

	// Server API URL overriding client.base_url
	ServerURL string `yaml:"server_url,omitempty"`
}

// UserConfigHandler loads and saves the user config. Writes hold an advisory
// lock and replace the file atomically, so a running 'watch' and a concurrent
// 'config set' never see a half-written file.
type UserConfigHandler struct {
	configPath string
	lock       *flock.Flock
}

// NewUserConfigHandler keeps the user config under ~/.shopfloor
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".shopfloor"))
}

// NewUserConfigHandlerAt keeps the user config in the given directory
func NewUserConfigHandlerAt(configDir string) (*UserConfigHandler, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	path := filepath.Join(configDir, "config.yaml")
	return &UserConfigHandler{
		configPath: path,
		lock:       flock.New(path + ".lock"),
	}, nil
}

// Load reads the user config; a missing file yields empty preferences
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	data, err := os.ReadFile(h.configPath)
	if os.IsNotExist(err) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config %s: %w", h.configPath, err)
	}
	return &cfg, nil
}

// Update applies change to the stored preferences under the file lock
func (h *UserConfigHandler) Update(change func(cfg *UserConfig)) error {
	if err := h.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock user config: %w", err)
	}
	defer func() { _ = h.lock.Unlock() }()

	cfg, err := h.Load()
	if err != nil {
		return err
	}
	change(cfg)
	return h.write(cfg)
}

func (h *UserConfigHandler) write(cfg *UserConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(h.configPath), ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write user config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}
	if err := os.Rename(tmp.Name(), h.configPath); err != nil {
		return fmt.Errorf("failed to replace user config: %w", err)
	}
	return nil
}

// SetDefaultProduct sets the default product scope
func (h *UserConfigHandler) SetDefaultProduct(productID string) error {
	return h.Update(func(cfg *UserConfig) { cfg.DefaultProductID = productID })
}

// SetServerURL sets the server API URL
func (h *UserConfigHandler) SetServerURL(url string) error {
	return h.Update(func(cfg *UserConfig) { cfg.ServerURL = url })
}

// Clear removes every preference
func (h *UserConfigHandler) Clear() error {
	return h.Update(func(cfg *UserConfig) { *cfg = UserConfig{} })
}

// GetConfigPath returns the path to the user config file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}

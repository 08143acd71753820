package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olegkotsar/yomins-upload/model"
)

// DefaultSettingsFile is the fixed name of the settings file in the working directory
const DefaultSettingsFile = "settings.json"

// Settings is the persisted connection record. Port is kept as entered.
type Settings struct {
	Host          string `json:"host"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	Port          string `json:"port"`
	LocalRootPath string `json:"local_root_path"`
}

// DefaultSettings returns the values used when no settings file exists
func DefaultSettings() *Settings {
	return &Settings{
		Host:     "localhost",
		Username: "user",
		Password: "password",
		Port:     "21",
	}
}

// ParsePort converts the stored port to an integer.
// Anything that does not parse yields 0; callers decide whether that is fatal.
func ParsePort(s string) int {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return port
}

// Connection converts the persisted record into the runner's connection settings
func (s *Settings) Connection() model.ConnectionSettings {
	return model.ConnectionSettings{
		Host:          s.Host,
		Username:      s.Username,
		Password:      s.Password,
		Port:          ParsePort(s.Port),
		LocalRootPath: s.LocalRootPath,
	}
}

// LoadSettings reads the settings file. It always returns usable settings:
// when the file is missing, empty or broken the defaults come back, together
// with an error describing why (nil for a missing file).
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return DefaultSettings(), fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return DefaultSettings(), nil
	}

	s := DefaultSettings()
	if err := json.Unmarshal(data, s); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes the settings file, replacing any previous content
func SaveSettings(path string, s *Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	return nil
}

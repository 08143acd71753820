package config

import "fmt"

// LogLevel represents the logging verbosity level
type LogLevel string

const (
	LogLevelSilent  LogLevel = "silent"  // No logging output
	LogLevelError   LogLevel = "error"   // Only errors
	LogLevelInfo    LogLevel = "info"    // Info, warnings, and errors
	LogLevelDebug   LogLevel = "debug"   // Debug info + all above
	LogLevelVerbose LogLevel = "verbose" // All details including trace
)

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level      LogLevel `json:"level"`
	AddSource  bool     `json:"add_source,omitempty"`  // Include source file and line number
	TimeFormat string   `json:"time_format,omitempty"` // Console timestamp layout
	NoColor    bool     `json:"no_color,omitempty"`
}

// Validate validates the logger configuration
func (lc *LoggerConfig) Validate() error {
	switch lc.Level {
	case LogLevelSilent, LogLevelError, LogLevelInfo, LogLevelDebug, LogLevelVerbose:
	case "":
		// set in ApplyDefaults
	default:
		return fmt.Errorf("invalid log level: %s (must be one of: silent, error, info, debug, verbose)", lc.Level)
	}
	return nil
}

// ApplyDefaults sets default values for logger configuration
func (lc *LoggerConfig) ApplyDefaults() {
	if lc.Level == "" {
		lc.Level = LogLevelInfo
	}
	if lc.TimeFormat == "" {
		lc.TimeFormat = "15:04:05"
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
)

// AppConfig represents the complete application configuration.
// Connection details are kept separately in Settings.
type AppConfig struct {
	SettingsFile string            `json:"settings_file"`
	Source       SourceConfig      `json:"source"`
	Destination  DestinationConfig `json:"destination"`
	Journal      JournalConfig     `json:"journal"`
	Logger       LoggerConfig      `json:"logger"`
	DryRun       bool              `json:"dry_run"` // If true, nothing is sent to the server
}

// Validate validates the entire configuration
func (ac *AppConfig) Validate() error {
	if ac.SettingsFile == "" {
		return fmt.Errorf("settings file is required")
	}
	if err := ac.Source.Validate(); err != nil {
		return fmt.Errorf("source config error: %w", err)
	}
	if err := ac.Destination.Validate(); err != nil {
		return fmt.Errorf("destination config error: %w", err)
	}
	if err := ac.Journal.Validate(); err != nil {
		return fmt.Errorf("journal config error: %w", err)
	}
	if err := ac.Logger.Validate(); err != nil {
		return fmt.Errorf("logger config error: %w", err)
	}
	return nil
}

// ApplyDefaults applies default values to all components
func (ac *AppConfig) ApplyDefaults() {
	if ac.SettingsFile == "" {
		ac.SettingsFile = DefaultSettingsFile
	}
	ac.Source.ApplyDefaults()
	if ac.Destination.DestinationType == "" {
		ac.Destination.DestinationType = DestinationTypeFTP
	}
	if ac.Destination.DestinationType == DestinationTypeFTP && ac.Destination.FTP == nil {
		ac.Destination.FTP = &FTPConfig{}
	}
	ac.Destination.Common.ApplyDefaults()
	ac.Journal.ApplyDefaults()
	ac.Logger.ApplyDefaults()
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.SettingsFile = getEnv("SETTINGS_FILE", DefaultSettingsFile)
	cfg.DryRun = getEnvBool("DRY_RUN", false)

	cfg.Logger.Level = LogLevel(getEnv("LOG_LEVEL", string(LogLevelInfo)))
	cfg.Logger.NoColor = getEnvBool("LOG_NO_COLOR", false)

	cfg.Journal.JournalType = JournalType(getEnv("JOURNAL_TYPE", string(JournalTypeNone)))
	cfg.Journal.Bbolt = &BboltConfig{
		Path:   getEnv("JOURNAL_BBOLT_PATH", "./uploads.db"),
		Bucket: getEnv("JOURNAL_BBOLT_BUCKET", "uploads"),
		Mode:   0600,
		NoSync: getEnvBool("JOURNAL_BBOLT_NO_SYNC", false),
	}

	cfg.Source.SourceType = SourceType(getEnv("SOURCE_TYPE", string(SourceTypeLocal)))
	cfg.Source.Common.TimeoutSeconds = getEnvInt("SOURCE_TIMEOUT_SECONDS", 30)
	cfg.Source.Common.MaxRPS = getEnvInt("SOURCE_MAX_RPS", 0)
	if cfg.Source.SourceType == SourceTypeS3 {
		cfg.Source.S3 = &S3Config{
			Region:          getEnv("S3_REGION", ""),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
		}
	}

	cfg.Destination.DestinationType = DestinationType(getEnv("DESTINATION_TYPE", string(DestinationTypeFTP)))
	cfg.Destination.Common.TimeoutSeconds = getEnvInt("DESTINATION_TIMEOUT_SECONDS", 30)
	cfg.Destination.FTP = &FTPConfig{
		BasePath:           getEnv("FTP_BASE_PATH", ""),
		KeepStructure:      getEnvBool("FTP_KEEP_STRUCTURE", false),
		UseTLS:             getEnvBool("FTP_USE_TLS", false),
		InsecureSkipVerify: getEnvBool("FTP_INSECURE_SKIP_VERIFY", false),
	}

	cfg.ApplyDefaults()

	return cfg, nil
}

// ApplySettingsEnv overrides persisted settings with FTP_* environment variables when set
func ApplySettingsEnv(s *Settings) {
	s.Host = getEnv("FTP_HOST", s.Host)
	s.Username = getEnv("FTP_USERNAME", s.Username)
	s.Password = getEnv("FTP_PASSWORD", s.Password)
	s.Port = getEnv("FTP_PORT", s.Port)
	s.LocalRootPath = getEnv("LOCAL_ROOT_PATH", s.LocalRootPath)
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

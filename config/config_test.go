package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePort(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"21", 21},
		{" 2121 ", 2121},
		{"", 0},
		{"abc", 0},
		{"21a", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ParsePort(tt.in))
		})
	}
}

func TestLoadSettings_MissingFileGivesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	require.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_BrokenFileGivesDefaultsAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s, err := LoadSettings(path)
	require.Error(t, err)
	require.Equal(t, DefaultSettings(), s)
}

func TestSaveAndLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	in := &Settings{
		Host:          "ftp.example.com",
		Username:      "bob",
		Password:      "secret",
		Port:          "2121",
		LocalRootPath: "/data",
	}
	require.NoError(t, SaveSettings(path, in))

	out, err := LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, in, out)

	conn := out.Connection()
	require.Equal(t, 2121, conn.Port)
	require.Equal(t, "/data", conn.LocalRootPath)
}

func TestLoadSettings_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"host":"example.org"}`), 0600))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, "example.org", s.Host)
	require.Equal(t, "21", s.Port)
}

func TestSettings_InvalidPortBecomesZero(t *testing.T) {
	s := DefaultSettings()
	s.Port = "twenty-one"
	require.Equal(t, 0, s.Connection().Port)
}

func TestApplySettingsEnv(t *testing.T) {
	t.Setenv("FTP_HOST", "env-host")
	t.Setenv("FTP_PORT", "990")

	s := DefaultSettings()
	ApplySettingsEnv(s)
	require.Equal(t, "env-host", s.Host)
	require.Equal(t, "990", s.Port)
	require.Equal(t, "user", s.Username)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, DefaultSettingsFile, cfg.SettingsFile)
	require.Equal(t, SourceTypeLocal, cfg.Source.SourceType)
	require.Equal(t, DestinationTypeFTP, cfg.Destination.DestinationType)
	require.Equal(t, 30, cfg.Destination.Common.TimeoutSeconds)
	require.False(t, cfg.Journal.Enabled())
	require.Equal(t, LogLevelInfo, cfg.Logger.Level)
}

func TestAppConfig_Validate(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(c *AppConfig)
		errorMessage string
	}{
		{
			name:         "unknown source",
			mutate:       func(c *AppConfig) { c.Source.SourceType = "webdav" },
			errorMessage: "unsupported source type",
		},
		{
			name:         "s3 without bucket",
			mutate:       func(c *AppConfig) { c.Source.SourceType = SourceTypeS3; c.Source.S3 = &S3Config{} },
			errorMessage: "bucket",
		},
		{
			name: "insecure without tls",
			mutate: func(c *AppConfig) {
				c.Destination.FTP.InsecureSkipVerify = true
			},
			errorMessage: "use_tls",
		},
		{
			name:         "bad log level",
			mutate:       func(c *AppConfig) { c.Logger.Level = "loud" },
			errorMessage: "invalid log level",
		},
		{
			name:         "bbolt without config",
			mutate:       func(c *AppConfig) { c.Journal.JournalType = JournalTypeBbolt; c.Journal.Bbolt = nil },
			errorMessage: "bbolt configuration is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &AppConfig{}
			cfg.ApplyDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errorMessage)
		})
	}
}

func TestJournalConfig_ApplyDefaults(t *testing.T) {
	jc := &JournalConfig{JournalType: JournalTypeBbolt}
	jc.ApplyDefaults()
	require.NotNil(t, jc.Bbolt)
	require.Equal(t, "./uploads.db", jc.Bbolt.Path)
	require.Equal(t, "uploads", jc.Bbolt.Bucket)
	require.Equal(t, os.FileMode(0600), jc.Bbolt.Mode)
	require.True(t, jc.Enabled())
}

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/olegkotsar/yomins-upload/config"
)

type flagValues struct {
	settingsFile string
	dryRun       bool
	logLevel     string
	noColor      bool

	journalPath string

	sourceType    string
	sourceTimeout int
	sourceMaxRPS  int

	s3Region    string
	s3Bucket    string
	s3AccessKey string
	s3SecretKey string
	s3Endpoint  string

	destTimeout           int
	ftpBasePath           string
	ftpKeepStructure      bool
	ftpUseTLS             bool
	ftpInsecureSkipVerify bool

	// persisted connection settings
	host     string
	username string
	password string
	port     string
	path     string
}

func registerFlags(cmd *cobra.Command, f *flagValues) {
	pf := cmd.PersistentFlags()

	// General flags
	pf.StringVar(&f.settingsFile, "settings", "", "Settings file (env: SETTINGS_FILE, default settings.json)")
	pf.BoolVar(&f.dryRun, "dry-run", false, "Report what would be uploaded without connecting (env: DRY_RUN)")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: silent, error, info, debug, verbose (env: LOG_LEVEL)")
	pf.BoolVar(&f.noColor, "no-color", false, "Disable colored log output (env: LOG_NO_COLOR)")

	// Journal flags
	pf.StringVar(&f.journalPath, "journal", "", "Record upload outcomes in this bbolt file (env: JOURNAL_TYPE=bbolt, JOURNAL_BBOLT_PATH)")

	// Source flags
	pf.StringVar(&f.sourceType, "source-type", "", "Source type: local, s3 (env: SOURCE_TYPE)")
	pf.IntVar(&f.sourceTimeout, "source-timeout", 0, "Source request timeout in seconds (env: SOURCE_TIMEOUT_SECONDS)")
	pf.IntVar(&f.sourceMaxRPS, "source-max-rps", 0, "Max requests per second to S3, 0 = no limit (env: SOURCE_MAX_RPS)")

	// S3 flags
	pf.StringVar(&f.s3Region, "s3-region", "", "S3 region (env: S3_REGION)")
	pf.StringVar(&f.s3Bucket, "s3-bucket", "", "S3 bucket name (env: S3_BUCKET)")
	pf.StringVar(&f.s3AccessKey, "s3-access-key", "", "S3 access key ID (env: S3_ACCESS_KEY_ID)")
	pf.StringVar(&f.s3SecretKey, "s3-secret-key", "", "S3 secret access key (env: S3_SECRET_ACCESS_KEY)")
	pf.StringVar(&f.s3Endpoint, "s3-endpoint", "", "S3 endpoint URL (env: S3_ENDPOINT)")

	// Destination flags
	pf.IntVar(&f.destTimeout, "dest-timeout", 0, "Connect timeout in seconds (env: DESTINATION_TIMEOUT_SECONDS)")
	pf.StringVar(&f.ftpBasePath, "ftp-base-path", "", "Remote directory to upload into (env: FTP_BASE_PATH)")
	pf.BoolVar(&f.ftpKeepStructure, "ftp-keep-structure", false, "Recreate the local directory structure remotely (env: FTP_KEEP_STRUCTURE)")
	pf.BoolVar(&f.ftpUseTLS, "ftp-use-tls", false, "Use explicit FTPS (env: FTP_USE_TLS)")
	pf.BoolVar(&f.ftpInsecureSkipVerify, "ftp-insecure-skip-verify", false, "Accept any server certificate (env: FTP_INSECURE_SKIP_VERIFY)")

	// Connection settings, saved to the settings file
	pf.StringVar(&f.host, "host", "", "FTP server host (env: FTP_HOST)")
	pf.StringVar(&f.username, "user", "", "FTP username (env: FTP_USERNAME)")
	pf.StringVar(&f.password, "password", "", "FTP password (env: FTP_PASSWORD)")
	pf.StringVar(&f.port, "port", "", "FTP server port (env: FTP_PORT)")
	pf.StringVar(&f.path, "path", "", "Local root directory, or key prefix for s3 (env: LOCAL_ROOT_PATH)")
}

// applyFlags overrides environment configuration with flags that were set explicitly
func applyFlags(flags *pflag.FlagSet, cfg *config.AppConfig, f *flagValues) {
	// General
	if flags.Changed("settings") {
		cfg.SettingsFile = f.settingsFile
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = f.dryRun
	}

	// Logger
	if f.logLevel != "" {
		cfg.Logger.Level = config.LogLevel(f.logLevel)
	}
	if flags.Changed("no-color") {
		cfg.Logger.NoColor = f.noColor
	}

	// Journal
	if f.journalPath != "" {
		cfg.Journal.JournalType = config.JournalTypeBbolt
		if cfg.Journal.Bbolt == nil {
			cfg.Journal.Bbolt = &config.BboltConfig{}
		}
		cfg.Journal.Bbolt.Path = f.journalPath
	}

	// Source
	if f.sourceType != "" {
		cfg.Source.SourceType = config.SourceType(f.sourceType)
	}
	if f.sourceTimeout > 0 {
		cfg.Source.Common.TimeoutSeconds = f.sourceTimeout
	}
	if flags.Changed("source-max-rps") {
		// Allow 0 (no limit) to be explicitly set
		cfg.Source.Common.MaxRPS = f.sourceMaxRPS
	}

	// S3
	if cfg.Source.SourceType == config.SourceTypeS3 && cfg.Source.S3 == nil {
		cfg.Source.S3 = &config.S3Config{}
	}
	if cfg.Source.S3 != nil {
		if f.s3Region != "" {
			cfg.Source.S3.Region = f.s3Region
		}
		if f.s3Bucket != "" {
			cfg.Source.S3.Bucket = f.s3Bucket
		}
		if f.s3AccessKey != "" {
			cfg.Source.S3.AccessKeyID = f.s3AccessKey
		}
		if f.s3SecretKey != "" {
			cfg.Source.S3.SecretAccessKey = f.s3SecretKey
		}
		if f.s3Endpoint != "" {
			cfg.Source.S3.Endpoint = f.s3Endpoint
		}
	}

	// Destination
	if f.destTimeout > 0 {
		cfg.Destination.Common.TimeoutSeconds = f.destTimeout
	}
	if cfg.Destination.FTP == nil {
		cfg.Destination.FTP = &config.FTPConfig{}
	}
	if f.ftpBasePath != "" {
		cfg.Destination.FTP.BasePath = f.ftpBasePath
	}
	if flags.Changed("ftp-keep-structure") {
		cfg.Destination.FTP.KeepStructure = f.ftpKeepStructure
	}
	if flags.Changed("ftp-use-tls") {
		cfg.Destination.FTP.UseTLS = f.ftpUseTLS
	}
	if flags.Changed("ftp-insecure-skip-verify") {
		cfg.Destination.FTP.InsecureSkipVerify = f.ftpInsecureSkipVerify
	}
}

// applySettingsFlags overrides persisted connection settings with flags that were set explicitly
func applySettingsFlags(flags *pflag.FlagSet, s *config.Settings, f *flagValues) {
	if flags.Changed("host") {
		s.Host = f.host
	}
	if flags.Changed("user") {
		s.Username = f.username
	}
	if flags.Changed("password") {
		s.Password = f.password
	}
	if flags.Changed("port") {
		s.Port = f.port
	}
	if flags.Changed("path") {
		s.LocalRootPath = f.path
	}
}

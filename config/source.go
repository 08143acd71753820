// Sources are selected by SourceType. Adding one means a new SourceType,
// a field in SourceConfig, and a case in Validate.
package config

import "fmt"

// SourceType represents where files are enumerated from
type SourceType string

const (
	SourceTypeLocal SourceType = "local"
	SourceTypeS3    SourceType = "s3"
)

// SourceConfig holds the configuration for the file source
type SourceConfig struct {
	SourceType SourceType         `json:"type"`
	Common     CommonSourceConfig `json:"common,omitempty"`
	S3         *S3Config          `json:"s3,omitempty"`
}

// CommonSourceConfig contains general settings applicable to all sources
type CommonSourceConfig struct {
	TimeoutSeconds int `json:"timeout_seconds,omitempty"` // optional: request timeout in seconds
	MaxRPS         int `json:"max_rps,omitempty"`         // optional: maximum requests per second to the backend (S3 API)
}

// S3Config holds S3-specific configuration.
// The local root path from Settings is used as the key prefix.
type S3Config struct {
	Region          string `json:"region"`
	Bucket          string `json:"bucket"`
	AccessKeyID     string `json:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty"`
	Endpoint        string `json:"endpoint,omitempty"` // For S3-compatible services
}

// Validate ensures the configuration is valid for the specified source type
func (sc *SourceConfig) Validate() error {
	if err := sc.Common.Validate(); err != nil {
		return err
	}

	switch sc.SourceType {
	case SourceTypeLocal:
		return nil
	case SourceTypeS3:
		if sc.S3 == nil {
			return fmt.Errorf("s3 configuration is required when type is 's3'")
		}
		return sc.S3.Validate()
	default:
		return fmt.Errorf("unsupported source type: %s", sc.SourceType)
	}
}

// Validate validates S3 configuration
func (s3c *S3Config) Validate() error {
	if s3c.Bucket == "" {
		return fmt.Errorf("s3 bucket is required")
	}
	if s3c.AccessKeyID == "" {
		return fmt.Errorf("s3 access key is required")
	}
	if s3c.SecretAccessKey == "" {
		return fmt.Errorf("s3 secret key is required")
	}
	if s3c.Endpoint == "" {
		return fmt.Errorf("s3 endpoint is required")
	}
	return nil
}

// ApplyDefaults sets default values if they are not provided
func (sc *SourceConfig) ApplyDefaults() {
	if sc.SourceType == "" {
		sc.SourceType = SourceTypeLocal
	}
	if sc.Common.TimeoutSeconds <= 0 {
		sc.Common.TimeoutSeconds = 30
	}
	// MaxRPS leave 0 (means no limit)
}

func (c *CommonSourceConfig) Validate() error {
	if c.MaxRPS < 0 {
		return fmt.Errorf("max_rps cannot be negative")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds cannot be negative")
	}
	return nil
}

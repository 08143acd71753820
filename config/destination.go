package config

import "fmt"

// DestinationType represents the type of destination backend
type DestinationType string

const (
	DestinationTypeFTP DestinationType = "ftp"
)

// DestinationConfig holds the transport configuration.
// Host and credentials live in Settings, not here.
type DestinationConfig struct {
	DestinationType DestinationType         `json:"type"`
	Common          CommonDestinationConfig `json:"common,omitempty"`
	FTP             *FTPConfig              `json:"ftp,omitempty"`
}

// CommonDestinationConfig contains general settings applicable to all destinations
type CommonDestinationConfig struct {
	TimeoutSeconds int `json:"timeout_seconds,omitempty"` // dial timeout in seconds
}

// FTPConfig holds FTP transport options
type FTPConfig struct {
	BasePath           string `json:"base_path,omitempty"`            // Remote directory, empty means the login directory
	KeepStructure      bool   `json:"keep_structure,omitempty"`       // Upload to the path relative to the scan root instead of the base name
	UseTLS             bool   `json:"use_tls,omitempty"`              // Explicit FTPS (AUTH TLS)
	InsecureSkipVerify bool   `json:"insecure_skip_verify,omitempty"` // Skip server certificate validation
}

// Validate ensures the configuration is valid for the specified destination type
func (dc *DestinationConfig) Validate() error {
	if err := dc.Common.Validate(); err != nil {
		return err
	}

	switch dc.DestinationType {
	case DestinationTypeFTP:
		if dc.FTP == nil {
			return fmt.Errorf("ftp configuration is required when type is 'ftp'")
		}
		return dc.FTP.Validate()
	default:
		return fmt.Errorf("unsupported destination type: %s", dc.DestinationType)
	}
}

// Validate validates FTP configuration
func (fc *FTPConfig) Validate() error {
	if fc.InsecureSkipVerify && !fc.UseTLS {
		return fmt.Errorf("insecure_skip_verify requires use_tls")
	}
	return nil
}

// ApplyDefaults sets default values for destination configuration
func (c *CommonDestinationConfig) ApplyDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
}

// Validate validates common destination configuration
func (c *CommonDestinationConfig) Validate() error {
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds cannot be negative")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
)

// JournalType represents the storage backend of the upload journal
type JournalType string

const (
	JournalTypeNone  JournalType = "none"
	JournalTypeBbolt JournalType = "bbolt"
)

// JournalConfig holds the configuration for the upload journal
type JournalConfig struct {
	JournalType JournalType  `json:"type"`
	Bbolt       *BboltConfig `json:"bbolt,omitempty"`
}

// BboltConfig holds bbolt-specific configuration
type BboltConfig struct {
	Path   string      `json:"path"`              // Path to bbolt DB file
	Bucket string      `json:"bucket"`            // Name of the bucket
	Mode   os.FileMode `json:"mode,omitempty"`    // File open mode: 0600, 0644
	NoSync bool        `json:"no_sync,omitempty"` // Disable fsync for better performance
}

// Validate validates the journal configuration
func (jc *JournalConfig) Validate() error {
	switch jc.JournalType {
	case JournalTypeNone, "":
		return nil
	case JournalTypeBbolt:
		if jc.Bbolt == nil {
			return fmt.Errorf("bbolt configuration is required when type is 'bbolt'")
		}
		return jc.Bbolt.Validate()
	default:
		return fmt.Errorf("unsupported journal type: %s", jc.JournalType)
	}
}

// Enabled reports whether uploads should be journaled
func (jc *JournalConfig) Enabled() bool {
	return jc.JournalType == JournalTypeBbolt
}

func (jc *JournalConfig) ApplyDefaults() {
	if jc.JournalType == "" {
		jc.JournalType = JournalTypeNone
	}
	if jc.JournalType == JournalTypeBbolt {
		if jc.Bbolt == nil {
			jc.Bbolt = &BboltConfig{}
		}
		jc.Bbolt.ApplyDefaults()
	}
}

func (bc *BboltConfig) Validate() error {
	if bc.Path == "" {
		return fmt.Errorf("bbolt path is required")
	}
	if bc.Bucket == "" {
		return fmt.Errorf("bbolt bucket is required")
	}
	return nil
}

// ApplyDefaults sets default values if not provided for bbolt
func (bc *BboltConfig) ApplyDefaults() {
	if bc.Path == "" {
		bc.Path = "./uploads.db"
	}
	if bc.Bucket == "" {
		bc.Bucket = "uploads"
	}
	if bc.Mode == 0 {
		bc.Mode = 0600
	}
	// NoSync remains false by default for data safety
}

package destination

import (
	"context"
	"fmt"
	"io"

	"github.com/olegkotsar/yomins-upload/config"
	"github.com/olegkotsar/yomins-upload/model"
)

// Dialer opens one authenticated session per call. Sessions are never pooled.
type Dialer interface {
	Dial(ctx context.Context, settings model.ConnectionSettings) (Session, error)
	// RemotePath is where entry ends up on the server
	RemotePath(entry model.FileEntry) string
}

// Session is a single logged-in connection
type Session interface {
	Store(remotePath string, content io.Reader) error
	Close() error
}

// ConnectionError is returned when connecting or authenticating fails
type ConnectionError struct {
	Op   string // "dial" or "login"
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("ftp %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// CreateDestination creates a dialer based on configuration
func CreateDestination(cfg *config.DestinationConfig) (Dialer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid destination configuration: %w", err)
	}

	switch cfg.DestinationType {
	case config.DestinationTypeFTP:
		return NewFTPDialer(cfg.FTP, &cfg.Common)
	default:
		return nil, fmt.Errorf("unsupported destination type: %s", cfg.DestinationType)
	}
}

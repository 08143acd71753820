package destination

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/olegkotsar/yomins-upload/config"
	"github.com/olegkotsar/yomins-upload/model"
)

var _ Dialer = (*FTPDialer)(nil)

// FTPDialer implements Dialer for FTP servers
type FTPDialer struct {
	config *config.FTPConfig
	common *config.CommonDestinationConfig
}

// NewFTPDialer creates a new FTP dialer. No connection is made until Dial.
func NewFTPDialer(cfg *config.FTPConfig, common *config.CommonDestinationConfig) (*FTPDialer, error) {
	common.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ftp config: %w", err)
	}
	if err := common.Validate(); err != nil {
		return nil, fmt.Errorf("invalid common config: %w", err)
	}

	return &FTPDialer{
		config: cfg,
		common: common,
	}, nil
}

// RemotePath returns the base name by default, so files with the same name
// from different subdirectories land on the same remote path.
func (f *FTPDialer) RemotePath(entry model.FileEntry) string {
	name := entry.Name
	if f.config.KeepStructure && entry.RelPath != "" {
		name = entry.RelPath
	}
	if f.config.BasePath != "" {
		return path.Join(f.config.BasePath, name)
	}
	return name
}

// Dial connects and logs in using settings
func (f *FTPDialer) Dial(ctx context.Context, settings model.ConnectionSettings) (Session, error) {
	addr := settings.Address()

	if settings.Host == "" {
		return nil, &ConnectionError{Op: "dial", Addr: addr, Err: errors.New("host is empty")}
	}
	if settings.Port <= 0 || settings.Port > 65535 {
		return nil, &ConnectionError{Op: "dial", Addr: addr, Err: fmt.Errorf("invalid port %d", settings.Port)}
	}

	opts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(time.Duration(f.common.TimeoutSeconds) * time.Second),
	}
	if f.config.UseTLS {
		opts = append(opts, ftp.DialWithExplicitTLS(&tls.Config{
			ServerName:         settings.Host,
			InsecureSkipVerify: f.config.InsecureSkipVerify,
		}))
	}

	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", Addr: addr, Err: err}
	}

	if err := conn.Login(settings.Username, settings.Password); err != nil {
		conn.Quit()
		return nil, &ConnectionError{Op: "login", Addr: addr, Err: err}
	}

	return &ftpSession{conn: conn}, nil
}

type ftpSession struct {
	conn *ftp.ServerConn
}

// Store uploads content to remotePath, creating parent directories when needed
func (s *ftpSession) Store(remotePath string, content io.Reader) error {
	dir := path.Dir(remotePath)
	if dir != "/" && dir != "." {
		if err := s.ensureDirectory(dir); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := s.conn.Stor(remotePath, content); err != nil {
		return fmt.Errorf("failed to upload %s: %w", remotePath, err)
	}
	return nil
}

// ensureDirectory creates directory structure recursively
func (s *ftpSession) ensureDirectory(dirPath string) error {
	dirPath = path.Clean(dirPath)
	if dirPath == "/" || dirPath == "." {
		return nil
	}

	currentDir, err := s.conn.CurrentDir()
	if err != nil {
		return err
	}

	if err := s.conn.ChangeDir(dirPath); err == nil {
		return s.conn.ChangeDir(currentDir)
	}

	parts := strings.Split(dirPath, "/")
	currentPath := ""
	if strings.HasPrefix(dirPath, "/") {
		currentPath = "/"
	}

	for _, part := range parts {
		if part == "" {
			continue
		}
		currentPath = path.Join(currentPath, part)

		// already existing directories fail here, which is fine
		s.conn.MakeDir(currentPath)
	}

	return s.conn.ChangeDir(currentDir)
}

func (s *ftpSession) Close() error {
	return s.conn.Quit()
}

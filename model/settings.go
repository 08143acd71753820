package model

import (
	"net"
	"strconv"
)

// ConnectionSettings is everything needed to open a connection to the FTP server.
// It is read before every transfer, connections are never reused between files.
type ConnectionSettings struct {
	Host          string
	Username      string
	Password      string
	Port          int
	LocalRootPath string
}

// Address returns host:port suitable for dialing
func (s ConnectionSettings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

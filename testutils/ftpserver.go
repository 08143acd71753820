package testutils

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// FTPServer is a minimal in-process FTP server. It speaks just enough of the
// protocol for the jlaffaye/ftp client to log in, create directories and
// STOR files over an extended passive data connection.
type FTPServer struct {
	User     string
	Password string

	ln net.Listener
	wg sync.WaitGroup

	mu        sync.Mutex
	files     map[string][]byte
	dirs      map[string]bool
	logins    int
	failStore map[string]bool
	conns     map[net.Conn]struct{}
}

// StartFTPServer listens on a random loopback port until the test ends
func StartFTPServer(t *testing.T, user, password string) *FTPServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &FTPServer{
		User:      user,
		Password:  password,
		ln:        ln,
		files:     make(map[string][]byte),
		dirs:      map[string]bool{"/": true},
		failStore: make(map[string]bool),
		conns:     make(map[net.Conn]struct{}),
	}

	s.wg.Add(1)
	go s.serve()

	t.Cleanup(func() {
		ln.Close()
		s.mu.Lock()
		for c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()
		s.wg.Wait()
	})
	return s
}

// Host returns the listening host
func (s *FTPServer) Host() string {
	return s.ln.Addr().(*net.TCPAddr).IP.String()
}

// Port returns the listening port
func (s *FTPServer) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// FailStore makes STOR of the given absolute remote path answer 550
func (s *FTPServer) FailStore(remotePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStore[remotePath] = true
}

// Files returns a copy of everything stored so far, keyed by absolute path
func (s *FTPServer) Files() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte, len(s.files))
	for k, v := range s.files {
		out[k] = v
	}
	return out
}

// HasDir reports whether the directory was created or pre-exists
func (s *FTPServer) HasDir(dir string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirs[dir]
}

// Logins returns the number of successful logins
func (s *FTPServer) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

func (s *FTPServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *FTPServer) handle(conn net.Conn) {
	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	r := bufio.NewReader(conn)
	reply := func(format string, args ...interface{}) {
		fmt.Fprintf(conn, format+"\r\n", args...)
	}

	var (
		user string
		cwd  = "/"
		pasv net.Listener
	)
	defer func() {
		if pasv != nil {
			pasv.Close()
		}
	}()

	resolve := func(p string) string {
		if strings.HasPrefix(p, "/") {
			return path.Clean(p)
		}
		return path.Join(cwd, p)
	}

	reply("220 ready")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		cmd, arg, _ := strings.Cut(line, " ")

		switch strings.ToUpper(cmd) {
		case "USER":
			user = arg
			reply("331 password required")
		case "PASS":
			if user != s.User || arg != s.Password {
				reply("530 login incorrect")
				continue
			}
			s.mu.Lock()
			s.logins++
			s.mu.Unlock()
			reply("230 logged in")
		case "TYPE":
			reply("200 type set")
		case "PWD":
			reply("257 \"%s\" is the current directory", cwd)
		case "CWD":
			dir := resolve(arg)
			if !s.HasDir(dir) {
				reply("550 no such directory")
				continue
			}
			cwd = dir
			reply("250 directory changed")
		case "MKD":
			dir := resolve(arg)
			s.mu.Lock()
			exists := s.dirs[dir]
			s.dirs[dir] = true
			s.mu.Unlock()
			if exists {
				reply("550 directory exists")
				continue
			}
			reply("257 \"%s\" created", dir)
		case "EPSV":
			if pasv != nil {
				pasv.Close()
			}
			pasv, err = net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				reply("425 cannot open data connection")
				continue
			}
			reply("229 Entering Extended Passive Mode (|||%d|)", pasv.Addr().(*net.TCPAddr).Port)
		case "PASV":
			if pasv != nil {
				pasv.Close()
			}
			pasv, err = net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				reply("425 cannot open data connection")
				continue
			}
			port := pasv.Addr().(*net.TCPAddr).Port
			reply("227 Entering Passive Mode (127,0,0,1,%d,%d)", port/256, port%256)
		case "STOR":
			s.stor(resolve(arg), pasv, reply)
			pasv = nil
		case "QUIT":
			reply("221 bye")
			return
		default:
			reply("502 command not implemented")
		}
	}
}

func (s *FTPServer) stor(remotePath string, pasv net.Listener, reply func(string, ...interface{})) {
	if pasv == nil {
		reply("425 use EPSV or PASV first")
		return
	}
	defer pasv.Close()

	s.mu.Lock()
	fail := s.failStore[remotePath]
	parentExists := s.dirs[path.Dir(remotePath)]
	s.mu.Unlock()

	if fail || !parentExists {
		reply("550 cannot store %s", remotePath)
		return
	}

	reply("150 opening data connection")
	dc, err := pasv.Accept()
	if err != nil {
		reply("425 data connection failed")
		return
	}
	data, err := io.ReadAll(dc)
	dc.Close()
	if err != nil {
		reply("426 transfer aborted")
		return
	}

	s.mu.Lock()
	s.files[remotePath] = data
	s.mu.Unlock()
	reply("226 transfer complete")
}

package testing

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// RedisServer speaks just enough RESP for the redis client and sink tests.
// It answers PING, MULTI and EXEC, queues commands inside a transaction and
// replies :1 to anything else. A silent server reads commands and never
// answers.
type RedisServer struct {
	ln     net.Listener
	silent atomic.Bool

	mu       sync.Mutex
	commands [][]string
	conns    []net.Conn
	closed   bool
	wg       sync.WaitGroup
}

// NewRedisServer listens on a loopback port until the test ends.
func NewRedisServer(t testing.TB) *RedisServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &RedisServer{ln: ln}
	s.wg.Add(1)
	go s.accept()
	t.Cleanup(s.Close)
	return s
}

// Addr returns host and port of the listener.
func (s *RedisServer) Addr() (host, port string) {
	host, port, _ = net.SplitHostPort(s.ln.Addr().String())
	return host, port
}

func (s *RedisServer) SetSilent(silent bool) {
	s.silent.Store(silent)
}

// Commands returns every command received, upper-cased name first.
func (s *RedisServer) Commands() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.commands))
	copy(out, s.commands)
	return out
}

// CommandNames returns just the command names, in arrival order.
func (s *RedisServer) CommandNames() []string {
	cmds := s.Commands()
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c[0]
	}
	return out
}

func (s *RedisServer) Close() {
	_ = s.ln.Close()
	s.mu.Lock()
	s.closed = true
	for _, c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *RedisServer) accept() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *RedisServer) serve(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	r := bufio.NewReader(conn)
	inTx := false
	queued := 0
	for {
		cmd, err := readCommand(r)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.commands = append(s.commands, cmd)
		s.mu.Unlock()

		if s.silent.Load() {
			continue
		}

		var reply string
		switch {
		case cmd[0] == "PING":
			reply = "+PONG\r\n"
		case cmd[0] == "MULTI":
			inTx, queued = true, 0
			reply = "+OK\r\n"
		case cmd[0] == "EXEC":
			reply = "*" + strconv.Itoa(queued) + "\r\n" + strings.Repeat(":1\r\n", queued)
			inTx, queued = false, 0
		case inTx:
			queued++
			reply = "+QUEUED\r\n"
		default:
			reply = ":1\r\n"
		}
		if _, err := io.WriteString(conn, reply); err != nil {
			return
		}
	}
}

// readCommand reads one RESP array of bulk strings.
func readCommand(r *bufio.Reader) ([]string, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(line, "*") {
		return nil, fmt.Errorf("unexpected line %q", line)
	}
	n, err := strconv.Atoi(line[1:])
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("bad array header %q", line)
	}

	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		header, err := readLine(r)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(header, "$") {
			return nil, fmt.Errorf("unexpected bulk header %q", header)
		}
		size, err := strconv.Atoi(header[1:])
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:size]))
	}
	args[0] = strings.ToUpper(args[0])
	return args, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

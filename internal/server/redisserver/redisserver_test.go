package redisserver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/tinykv/internal/storage/memory"
)

// ============================================================
// Test Helpers
// ============================================================

type recordingRecorder struct {
	mu       sync.Mutex
	commands []string
	opened   int
	closed   int
	protoErr int
}

func (r *recordingRecorder) ObserveCommand(command, result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, command+"/"+result)
}

func (r *recordingRecorder) ConnectionOpened() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened++
}

func (r *recordingRecorder) ConnectionClosed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
}

func (r *recordingRecorder) ProtocolError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.protoErr++
}

func (r *recordingRecorder) commandEvents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

func (r *recordingRecorder) counts() (opened, closed, protoErr int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opened, r.closed, r.protoErr
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startServer(t *testing.T, cfg *Config, store Store, opts ...Option) *Server {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Address = "127.0.0.1:0"

	srv := New(cfg, store, discardLogger(), opts...)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

type testConn struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dial(t *testing.T, srv *Server) *testConn {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &testConn{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (c *testConn) send(raw string) {
	c.t.Helper()
	_, err := c.conn.Write([]byte(raw))
	require.NoError(c.t, err)
}

// expect reads exactly len(want) bytes and compares them.
func (c *testConn) expect(want string) {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	got := make([]byte, len(want))
	_, err := io.ReadFull(c.r, got)
	require.NoError(c.t, err)
	assert.Equal(c.t, want, string(got))
}

// expectSilence asserts nothing arrives within d.
func (c *testConn) expectSilence(d time.Duration) {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(d)))
	_, err := c.r.ReadByte()
	var netErr net.Error
	require.ErrorAs(c.t, err, &netErr)
	assert.True(c.t, netErr.Timeout())
}

func command(args ...string) string {
	s := fmt.Sprintf("*%d\r\n", len(args))
	for _, a := range args {
		s += fmt.Sprintf("$%d\r\n%s\r\n", len(a), a)
	}
	return s
}

// ============================================================
// Server Tests
// ============================================================

func TestServer_Ping(t *testing.T) {
	srv := startServer(t, nil, memory.New())
	c := dial(t, srv)

	c.send("*1\r\n$4\r\nPING\r\n")
	c.expect("+PONG\r\n")
}

func TestServer_SetGet(t *testing.T) {
	srv := startServer(t, nil, memory.New())
	c := dial(t, srv)

	c.send("*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n")
	c.expect("+OK\r\n")
	c.send("*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n")
	c.expect("$3\r\nbar\r\n")
	c.send(command("GET", "missing"))
	c.expect("$-1\r\n")
}

func TestServer_SharedStoreAcrossConnections(t *testing.T) {
	srv := startServer(t, nil, memory.New())
	a := dial(t, srv)
	b := dial(t, srv)

	a.send(command("SET", "shared", "value"))
	a.expect("+OK\r\n")
	b.send(command("GET", "shared"))
	b.expect("$5\r\nvalue\r\n")
}

func TestServer_PassiveExpiry(t *testing.T) {
	clock := &testClock{now: time.Unix(1700000000, 0)}
	store := memory.New(memory.WithClock(clock.Now))
	srv := startServer(t, nil, store, WithClock(clock.Now))
	c := dial(t, srv)

	c.send(command("SET", "k", "v", "PX", "100"))
	c.expect("+OK\r\n")
	c.send(command("GET", "k"))
	c.expect("$1\r\nv\r\n")

	clock.Advance(101 * time.Millisecond)

	c.send(command("GET", "k"))
	c.expect("$-1\r\n")
	assert.Equal(t, 0, store.Len())
}

func TestServer_Pipelining(t *testing.T) {
	srv := startServer(t, nil, memory.New())
	c := dial(t, srv)

	c.send(command("SET", "a", "1") + command("GET", "a") + command("PING") + command("ECHO", "hi"))
	c.expect("+OK\r\n$1\r\n1\r\n+PONG\r\n$2\r\nhi\r\n")
}

func TestServer_PartialFrame(t *testing.T) {
	srv := startServer(t, nil, memory.New())
	c := dial(t, srv)

	c.send("*1\r\n$4\r\nPI")
	c.expectSilence(100 * time.Millisecond)

	c.send("NG\r\n")
	c.expect("+PONG\r\n")
}

func TestServer_ByteAtATime(t *testing.T) {
	srv := startServer(t, nil, memory.New())
	c := dial(t, srv)

	for _, b := range []byte(command("ECHO", "split")) {
		c.send(string(b))
	}
	c.expect("$5\r\nsplit\r\n")
}

func TestServer_ErrorsKeepConnectionOpen(t *testing.T) {
	rec := &recordingRecorder{}
	srv := startServer(t, nil, memory.New(), WithRecorder(rec))
	c := dial(t, srv)

	c.send("hello\r\n")
	c.expect("-ERR Protocol error\r\n")

	c.send(command("FOO"))
	c.expect("-ERR unknown command 'FOO'\r\n")

	c.send(command("ECHO"))
	c.expect("-ERR wrong number of arguments for 'echo' command\r\n")

	c.send(command("SET", "k", "v", "EX", "nope"))
	c.expect("-ERR invalid expire time in 'set' command\r\n")

	c.send(command("PING"))
	c.expect("+PONG\r\n")

	_, _, protoErr := rec.counts()
	assert.Equal(t, 1, protoErr)
}

func TestServer_RateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 2
	srv := startServer(t, cfg, memory.New())
	c := dial(t, srv)

	c.send(command("PING") + command("PING") + command("PING"))
	c.expect("+PONG\r\n+PONG\r\n-ERR rate limit exceeded\r\n")
}

func TestServer_ConcurrentSets(t *testing.T) {
	store := memory.New()
	srv := startServer(t, nil, store)

	const rounds = 50
	values := []string{"alpha", "beta"}
	conns := make([]*testConn, len(values))
	for i := range values {
		conns[i] = dial(t, srv)
	}

	var wg sync.WaitGroup
	for i, v := range values {
		wg.Add(1)
		go func(c *testConn, v string) {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				if _, err := c.conn.Write([]byte(command("SET", "race", v))); err != nil {
					return
				}
			}
		}(conns[i], v)
	}
	wg.Wait()

	for _, c := range conns {
		c.expect(strings.Repeat("+OK\r\n", rounds))
	}

	v, ok := store.Get("race")
	require.True(t, ok)
	assert.Contains(t, values, v)
}

func TestServer_Shutdown(t *testing.T) {
	rec := &recordingRecorder{}
	srv := New(&Config{Address: "127.0.0.1:0"}, memory.New(), discardLogger(), WithRecorder(rec))
	require.NoError(t, srv.Start(context.Background()))

	c := dial(t, srv)
	c.send(command("PING"))
	c.expect("+PONG\r\n")
	assert.Equal(t, 1, srv.ConnCount())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err := c.r.ReadByte()
	assert.Error(t, err)
	assert.Equal(t, 0, srv.ConnCount())

	opened, closed, _ := rec.counts()
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, closed)

	_, err = net.DialTimeout("tcp", srv.Addr().String(), 500*time.Millisecond)
	assert.Error(t, err)
}

func TestServer_StartError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := New(&Config{Address: ln.Addr().String()}, memory.New(), discardLogger())
	assert.Error(t, srv.Start(context.Background()))
}

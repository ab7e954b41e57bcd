package redisserver

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/tinykv/pkg/cmap"
)

// Config holds the Redis server configuration.
type Config struct {
	// Address is the TCP listen address.
	Address string
	// IdleTimeout closes connections that send nothing for this long.
	// Zero disables it.
	IdleTimeout time.Duration
	// RateLimit is the maximum number of commands per second per client IP.
	// Zero disables rate limiting.
	RateLimit int
	// ReadBufferSize is the size of a single socket read (default: 4096).
	ReadBufferSize int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:        "127.0.0.1:6379",
		IdleTimeout:    0,
		RateLimit:      0,
		ReadBufferSize: 4096,
	}
}

// Server represents the Redis protocol server.
type Server struct {
	cfg      *Config
	handler  *CommandHandler
	logger   *slog.Logger
	recorder Recorder
	limiter  *rateLimiter
	now      func() time.Time

	mu      sync.Mutex
	ln      net.Listener
	conns   *cmap.Map[string, *Conn]
	running atomic.Bool
	wg      sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder sets the metrics recorder for the server and its handler.
func WithRecorder(r Recorder) Option {
	return func(s *Server) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithClock sets the clock used to resolve expiry options.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Conn represents a single Redis client connection.
type Conn struct {
	id      string
	netConn net.Conn
	bw      *bufio.Writer
	pending []byte
	ip      string

	closed atomic.Bool
}

func newConn(c net.Conn) *Conn {
	ip := c.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return &Conn{
		id:      ulid.Make().String(),
		netConn: c,
		bw:      bufio.NewWriter(c),
		ip:      ip,
	}
}

// ID returns the connection id.
func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// New creates a new Redis protocol server serving store.
func New(cfg *Config, store Store, logger *slog.Logger, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		recorder: nopRecorder{},
		now:      time.Now,
		conns:    cmap.New[string, *Conn](),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.limiter = newRateLimiter(cfg.RateLimit)
	s.handler = NewCommandHandler(store,
		WithHandlerClock(s.now),
		WithHandlerRecorder(s.recorder),
	)

	return s
}

// Start binds the listener and serves connections in the background.
// The server stops accepting when ctx is cancelled or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting redis server", "address", s.cfg.Address)

	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.running.Store(true)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.logger.Error("redis server error", "error", err)
		}
	}()

	context.AfterFunc(ctx, func() {
		_ = s.closeListener()
	})

	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ConnCount returns the number of open client connections.
func (s *Server) ConnCount() int {
	return s.conns.Count()
}

// Shutdown stops accepting, closes every client connection and waits for the
// connection goroutines to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	firstErr := s.closeListener()

	for _, c := range s.conns.Values() {
		_ = c.Close()
	}

	// Wait for goroutines to finish
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return firstErr
}

func (s *Server) closeListener() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	err := s.ln.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return err
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	var backoff time.Duration
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > time.Second {
				backoff = time.Second
			}
			s.logger.Warn("accept error, retrying", "error", err, "retry_in", backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		conn := newConn(c)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

func (s *Server) serveConn(c *Conn) {
	s.conns.Set(c.id, c)
	s.recorder.ConnectionOpened()
	logger := s.logger.With("conn_id", c.id, "remote", c.RemoteAddr().String())
	logger.Debug("connection opened")

	defer func() {
		_ = c.Close()
		s.conns.Delete(c.id)
		s.recorder.ConnectionClosed()
		logger.Debug("connection closed")
	}()

	// A connection accepted while Shutdown was ranging over conns would
	// otherwise stay open.
	if !s.running.Load() {
		return
	}

	size := s.cfg.ReadBufferSize
	if size <= 0 {
		size = 4096
	}
	buf := make([]byte, size)

	for {
		if s.cfg.IdleTimeout > 0 {
			if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
				return
			}
		}

		n, err := c.netConn.Read(buf)
		if n > 0 {
			c.pending = append(c.pending, buf[:n]...)
			if werr := s.process(c, logger); werr != nil {
				logger.Debug("connection write error", "error", werr)
				return
			}
		}
		if err != nil {
			var netErr net.Error
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			case errors.As(err, &netErr) && netErr.Timeout():
				logger.Debug("connection timed out")
			default:
				logger.Debug("connection read error", "error", err)
			}
			return
		}
	}
}

// process dispatches every complete command vector in the pending buffer,
// in order, and flushes the replies once.
func (s *Server) process(c *Conn, logger *slog.Logger) error {
	off := 0
	replied := false

	for off < len(c.pending) {
		args, n, err := Decode(c.pending[off:])
		if errors.Is(err, ErrIncomplete) {
			if len(c.pending)-off > MaxPendingLen {
				logger.Warn("pending buffer limit exceeded", "bytes", len(c.pending)-off)
				s.recorder.ProtocolError()
				if werr := errorReply(ErrLimitExceeded).Encode(c.bw); werr != nil {
					return werr
				}
				replied = true
				off = len(c.pending)
			}
			break
		}
		if n <= 0 {
			n = len(c.pending) - off
		}
		off += n

		var reply Reply
		switch {
		case err != nil:
			logger.Debug("protocol error", "error", err)
			s.recorder.ProtocolError()
			reply = errorReply(err)
		case !s.limiter.allow(c.ip):
			s.recorder.ObserveCommand(commandLabel(args), resultLabel(ErrRateLimited), 0)
			reply = errorReply(ErrRateLimited)
		default:
			reply = s.handler.Handle(args)
		}

		if werr := reply.Encode(c.bw); werr != nil {
			return werr
		}
		replied = true
	}

	// Keep undecoded bytes at the front of the buffer.
	rest := copy(c.pending, c.pending[off:])
	c.pending = c.pending[:rest]

	if !replied {
		return nil
	}
	return c.bw.Flush()
}

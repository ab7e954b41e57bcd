package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/tidwall/resp"
)

// DefaultTimeout bounds dialing and each request when the context has no
// deadline.
const DefaultTimeout = 5 * time.Second

// ErrClosed is returned by requests on a closed client.
var ErrClosed = errors.New("client: closed")

// ServerError is an error reply sent by the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// UnexpectedReplyError is returned when a reply has the wrong type for the
// request.
type UnexpectedReplyError struct {
	Command string
	Reply   Reply
}

func (e *UnexpectedReplyError) Error() string {
	return fmt.Sprintf("unexpected %s reply to %s", e.Reply.Kind, e.Command)
}

// Client is a connection to a tinykv server. It is safe for concurrent use;
// requests are serialized on the connection.
type Client struct {
	addr    string
	timeout time.Duration

	mu     sync.Mutex
	conn   net.Conn
	rd     *resp.Reader
	wr     *resp.Writer
	closed bool
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the dial and per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Dial connects to the server at addr.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	c := &Client{
		addr:    addr,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}

	c.conn = conn
	c.rd = resp.NewReader(conn)
	c.wr = resp.NewWriter(conn)
	return c, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends one command and returns its reply. An error reply from the
// server is returned as a Reply of KindError with a nil error; only
// transport failures produce an error.
func (c *Client) Do(ctx context.Context, args ...string) (Reply, error) {
	if len(args) == 0 {
		return Reply{}, errors.New("client: empty command")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Reply{}, ErrClosed
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return Reply{}, err
	}

	vals := make([]resp.Value, len(args))
	for i, a := range args {
		vals[i] = resp.StringValue(a)
	}
	if err := c.wr.WriteArray(vals); err != nil {
		return Reply{}, fmt.Errorf("write: %w", err)
	}

	v, _, err := c.rd.ReadValue()
	if err != nil {
		return Reply{}, fmt.Errorf("read: %w", err)
	}
	return fromValue(v), nil
}

// Ping sends PING and returns the status text.
func (c *Client) Ping(ctx context.Context) (string, error) {
	r, err := c.do(ctx, "PING")
	if err != nil {
		return "", err
	}
	if r.Kind != KindStatus {
		return "", &UnexpectedReplyError{Command: "PING", Reply: r}
	}
	return r.Text, nil
}

// Echo sends ECHO and returns the echoed message.
func (c *Client) Echo(ctx context.Context, message string) (string, error) {
	r, err := c.do(ctx, "ECHO", message)
	if err != nil {
		return "", err
	}
	if r.Kind != KindBulk {
		return "", &UnexpectedReplyError{Command: "ECHO", Reply: r}
	}
	return r.Text, nil
}

// SetOption adds an expiry option to SET.
type SetOption func() []string

// WithPX expires the key after ms milliseconds.
func WithPX(ms int64) SetOption {
	return func() []string {
		return []string{"PX", strconv.FormatInt(ms, 10)}
	}
}

// WithEX expires the key after s seconds.
func WithEX(s int64) SetOption {
	return func() []string {
		return []string{"EX", strconv.FormatInt(s, 10)}
	}
}

// Set stores value under key.
func (c *Client) Set(ctx context.Context, key, value string, opts ...SetOption) error {
	args := []string{"SET", key, value}
	for _, opt := range opts {
		args = append(args, opt()...)
	}

	r, err := c.do(ctx, args...)
	if err != nil {
		return err
	}
	if r.Kind != KindStatus || r.Text != "OK" {
		return &UnexpectedReplyError{Command: "SET", Reply: r}
	}
	return nil
}

// Get returns the value stored under key. ok is false when the key is
// missing or expired.
func (c *Client) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	r, err := c.do(ctx, "GET", key)
	if err != nil {
		return "", false, err
	}
	switch r.Kind {
	case KindNil:
		return "", false, nil
	case KindBulk:
		return r.Text, true, nil
	default:
		return "", false, &UnexpectedReplyError{Command: "GET", Reply: r}
	}
}

// do is Do with error replies turned into *ServerError.
func (c *Client) do(ctx context.Context, args ...string) (Reply, error) {
	r, err := c.Do(ctx, args...)
	if err != nil {
		return Reply{}, err
	}
	if r.Kind == KindError {
		return Reply{}, &ServerError{Message: r.Text}
	}
	return r, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

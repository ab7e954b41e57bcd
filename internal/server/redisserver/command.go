package redisserver

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Command is one classified, validated request. The set of implementations
// is closed: PingCommand, EchoCommand, SetCommand and GetCommand.
type Command interface {
	// Name returns the lowercase command name.
	Name() string
	command()
}

// PingCommand replies PONG.
type PingCommand struct{}

// EchoCommand replies its message as a bulk string.
type EchoCommand struct {
	Message string
}

// SetCommand stores Value under Key. A zero ExpiresAt means the entry
// never expires.
type SetCommand struct {
	Key       string
	Value     string
	ExpiresAt time.Time
}

// GetCommand looks up Key.
type GetCommand struct {
	Key string
}

func (PingCommand) Name() string { return "ping" }
func (EchoCommand) Name() string { return "echo" }
func (SetCommand) Name() string  { return "set" }
func (GetCommand) Name() string  { return "get" }

func (PingCommand) command() {}
func (EchoCommand) command() {}
func (SetCommand) command()  {}
func (GetCommand) command()  {}

// Parse classifies a command vector. Expiry options of SET are resolved
// against now. All validation happens here, so executing a returned Command
// cannot fail.
func Parse(args []string, now time.Time) (Command, error) {
	if len(args) == 0 {
		return nil, ErrProtocol
	}

	switch name := normalizeCommandName(args[0]); name {
	case "PING":
		return PingCommand{}, nil

	case "ECHO":
		if len(args) != 2 {
			return nil, &ArityError{Command: name}
		}
		return EchoCommand{Message: args[1]}, nil

	case "SET":
		return parseSet(args, now)

	case "GET":
		if len(args) != 2 {
			return nil, &ArityError{Command: name}
		}
		return GetCommand{Key: args[1]}, nil

	default:
		return nil, &UnknownCommandError{Name: args[0]}
	}
}

// parseSet handles SET key value [PX ms | EX s].
//
// The option is only honored when both keyword and value are present. A
// four-token SET, an unrecognized option keyword and trailing tokens are
// ignored.
func parseSet(args []string, now time.Time) (Command, error) {
	if len(args) < 3 {
		return nil, &ArityError{Command: "SET"}
	}

	cmd := SetCommand{Key: args[1], Value: args[2]}
	if len(args) < 5 {
		return cmd, nil
	}

	var unit time.Duration
	switch strings.ToUpper(args[3]) {
	case "PX":
		unit = time.Millisecond
	case "EX":
		unit = time.Second
	default:
		return cmd, nil
	}

	ttl, err := parseExpiry(args[4], unit)
	if err != nil {
		return nil, &InvalidExpiryError{Option: strings.ToUpper(args[3]), Value: args[4]}
	}
	cmd.ExpiresAt = now.Add(ttl)
	return cmd, nil
}

// parseExpiry converts a non-negative decimal count of unit into a duration.
func parseExpiry(s string, unit time.Duration) (time.Duration, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > math.MaxInt64/int64(unit) {
		return 0, strconv.ErrRange
	}
	return time.Duration(n) * unit, nil
}

func normalizeCommandName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Store is the key-value store commands execute against.
type Store interface {
	Set(key, value string, expiresAt time.Time)
	Get(key string) (string, bool)
}

// CommandHandler parses and executes command vectors.
type CommandHandler struct {
	store    Store
	now      func() time.Time
	recorder Recorder
}

// HandlerOption configures a CommandHandler.
type HandlerOption func(*CommandHandler)

// WithHandlerClock sets the clock used to resolve expiry options.
func WithHandlerClock(now func() time.Time) HandlerOption {
	return func(h *CommandHandler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithHandlerRecorder sets the metrics recorder.
func WithHandlerRecorder(r Recorder) HandlerOption {
	return func(h *CommandHandler) {
		if r != nil {
			h.recorder = r
		}
	}
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(store Store, opts ...HandlerOption) *CommandHandler {
	h := &CommandHandler{
		store:    store,
		now:      time.Now,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle executes one command vector and returns its reply. Errors are
// rendered as error replies.
func (h *CommandHandler) Handle(args []string) Reply {
	start := time.Now()

	cmd, err := Parse(args, h.now())
	if err != nil {
		h.recorder.ObserveCommand(commandLabel(args), resultLabel(err), time.Since(start))
		return errorReply(err)
	}

	reply := h.Execute(cmd)
	h.recorder.ObserveCommand(cmd.Name(), "ok", time.Since(start))
	return reply
}

// Execute runs an already validated command. It panics on a Command type
// it has no case for.
func (h *CommandHandler) Execute(cmd Command) Reply {
	switch c := cmd.(type) {
	case PingCommand:
		return SimpleString("PONG")
	case EchoCommand:
		return BulkString(c.Message)
	case SetCommand:
		h.store.Set(c.Key, c.Value, c.ExpiresAt)
		return SimpleString("OK")
	case GetCommand:
		v, ok := h.store.Get(c.Key)
		if !ok {
			return NullBulk()
		}
		return BulkString(v)
	default:
		panic(fmt.Sprintf("redisserver: unhandled command type %T", cmd))
	}
}

// commandLabel keeps metric label cardinality bounded: names outside the
// supported set collapse to "unknown".
func commandLabel(args []string) string {
	if len(args) == 0 {
		return "unknown"
	}
	switch name := normalizeCommandName(args[0]); name {
	case "PING", "ECHO", "SET", "GET":
		return strings.ToLower(name)
	default:
		return "unknown"
	}
}

package redisserver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRateLimited is returned when a client exceeds its command rate.
var ErrRateLimited = errors.New("rate limit exceeded")

// ArityError reports a wrong number of arguments for a known command.
type ArityError struct {
	Command string
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("wrong number of arguments for '%s' command", strings.ToLower(e.Command))
}

// InvalidExpiryError reports a PX/EX value that is not a usable
// non-negative integer.
type InvalidExpiryError struct {
	Option string
	Value  string
}

func (e *InvalidExpiryError) Error() string {
	return "invalid expire time in 'set' command"
}

// UnknownCommandError reports a command name outside the supported set.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command '%s'", strings.ToUpper(e.Name))
}

// errorReply converts an error to a Redis error reply.
func errorReply(err error) Reply {
	var (
		arity   *ArityError
		expiry  *InvalidExpiryError
		unknown *UnknownCommandError
	)
	switch {
	case errors.Is(err, ErrProtocol):
		return ErrorReply("ERR Protocol error")
	case errors.As(err, &arity):
		return ErrorReply("ERR " + arity.Error())
	case errors.As(err, &expiry):
		return ErrorReply("ERR " + expiry.Error())
	case errors.As(err, &unknown):
		return ErrorReply("ERR " + unknown.Error())
	case errors.Is(err, ErrRateLimited):
		return ErrorReply("ERR " + ErrRateLimited.Error())
	default:
		return ErrorReply("ERR " + err.Error())
	}
}

// resultLabel classifies an error for the commands_total metric.
func resultLabel(err error) string {
	var (
		arity   *ArityError
		expiry  *InvalidExpiryError
		unknown *UnknownCommandError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrProtocol):
		return "protocol_error"
	case errors.As(err, &arity):
		return "arity_error"
	case errors.As(err, &expiry):
		return "invalid_expiry"
	case errors.As(err, &unknown):
		return "unknown_command"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}

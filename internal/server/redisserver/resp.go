package redisserver

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
)

// Protocol limits.
const (
	// MaxArrayLen limits the number of elements in a RESP array.
	MaxArrayLen = 1024

	// MaxBulkLen limits the size of a single bulk string (512KB).
	MaxBulkLen = 512 * 1024

	// MaxPendingLen limits how many undecoded bytes a connection may buffer
	// while waiting for a frame to complete.
	MaxPendingLen = 8 * 1024 * 1024
)

var (
	// ErrIncomplete is returned by Decode when the buffer ends inside a frame.
	ErrIncomplete = errors.New("resp: incomplete frame")

	// ErrProtocol is returned by Decode for input that can never become a
	// valid command, and by Parse for an empty command vector.
	ErrProtocol = errors.New("resp: protocol error")

	// ErrLimitExceeded is returned when a declared length exceeds the
	// protocol limits. It matches ErrProtocol under errors.Is.
	ErrLimitExceeded = fmt.Errorf("%w: limit exceeded", ErrProtocol)
)

// Decode decodes one command vector from the front of buf.
//
// Frames are arrays of bulk strings: "*<n>\r\n" followed by n
// "$<len>\r\n<bytes>\r\n" elements. An array marker without digits declares
// an unspecified length; such a frame ends at the next array marker or at the
// end of buf. Bulk strings that appear without an array header are collected
// the same way. Bytes that start no frame element are skipped.
//
// On success Decode returns the tokens and the number of bytes consumed.
// ErrIncomplete means buf ends inside a frame: nothing is consumed and the
// caller should retry once more bytes have arrived. ErrProtocol (possibly
// wrapped) means the input can never become valid; n is then the number of
// bytes the caller should discard.
func Decode(buf []byte) (args []string, n int, err error) {
	if len(buf) == 0 {
		return nil, 0, ErrIncomplete
	}

	want := -1 // declared array length, -1 while unspecified
	inFrame := false
	pos := 0

	for pos < len(buf) {
		switch buf[pos] {
		case '*':
			if inFrame {
				if want >= 0 {
					// A declared array was interrupted by a new one.
					return nil, pos, fmt.Errorf("%w: unterminated array", ErrProtocol)
				}
				if len(args) == 0 {
					return nil, pos, fmt.Errorf("%w: empty command", ErrProtocol)
				}
				return args, pos, nil
			}
			inFrame = true

			size, digits, next, st := readLength(buf, pos+1)
			switch st {
			case lengthIncomplete:
				return nil, 0, ErrIncomplete
			case lengthOverflow:
				return nil, len(buf), fmt.Errorf("%w: array length", ErrLimitExceeded)
			}
			pos = next
			if !digits {
				continue
			}
			if size > MaxArrayLen {
				return nil, len(buf), fmt.Errorf("%w: array length %d exceeds limit %d", ErrLimitExceeded, size, MaxArrayLen)
			}
			if size == 0 {
				return nil, pos, fmt.Errorf("%w: empty command", ErrProtocol)
			}
			want = size
			args = make([]string, 0, size)

		case '$':
			inFrame = true

			size, digits, next, st := readLength(buf, pos+1)
			switch st {
			case lengthIncomplete:
				return nil, 0, ErrIncomplete
			case lengthOverflow:
				return nil, len(buf), fmt.Errorf("%w: bulk length", ErrLimitExceeded)
			}
			if !digits {
				return nil, len(buf), fmt.Errorf("%w: invalid bulk length", ErrProtocol)
			}
			if st != lengthOK {
				return nil, len(buf), fmt.Errorf("%w: missing CRLF after bulk length", ErrProtocol)
			}
			if size > MaxBulkLen {
				return nil, len(buf), fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, size, MaxBulkLen)
			}

			end := next + size
			if end+2 > len(buf) {
				return nil, 0, ErrIncomplete
			}
			if buf[end] != '\r' || buf[end+1] != '\n' {
				return nil, len(buf), fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
			}
			args = append(args, string(buf[next:end]))
			pos = end + 2

			if want >= 0 && len(args) == want {
				return args, pos, nil
			}

		default:
			pos++
		}
	}

	if want > 0 {
		return nil, 0, ErrIncomplete
	}
	if len(args) > 0 {
		return args, pos, nil
	}
	return nil, len(buf), fmt.Errorf("%w: no command", ErrProtocol)
}

type lengthStatus int

const (
	lengthOK lengthStatus = iota
	lengthIncomplete
	lengthNoCRLF
	lengthOverflow
)

// readLength parses the decimal digits starting at buf[pos] and the CRLF that
// follows them. next is the position after the CRLF, or after the digits
// when no CRLF follows.
func readLength(buf []byte, pos int) (n int, digits bool, next int, st lengthStatus) {
	for pos < len(buf) && buf[pos] >= '0' && buf[pos] <= '9' {
		n = n*10 + int(buf[pos]-'0')
		if n > MaxPendingLen {
			return 0, true, pos, lengthOverflow
		}
		digits = true
		pos++
	}

	switch {
	case pos >= len(buf):
		return n, digits, pos, lengthIncomplete
	case buf[pos] != '\r':
		return n, digits, pos, lengthNoCRLF
	case pos+1 >= len(buf):
		return n, digits, pos, lengthIncomplete
	case buf[pos+1] != '\n':
		return n, digits, pos, lengthNoCRLF
	}
	return n, digits, pos + 2, lengthOK
}

// ReplyKind identifies the wire shape of a Reply.
type ReplyKind int

const (
	KindSimpleString ReplyKind = iota
	KindBulkString
	KindNullBulk
	KindError
)

// Reply is a typed command result.
type Reply struct {
	Kind ReplyKind
	Text string
}

// SimpleString returns a "+<s>" reply.
func SimpleString(s string) Reply {
	return Reply{Kind: KindSimpleString, Text: s}
}

// BulkString returns a "$<len>" reply.
func BulkString(s string) Reply {
	return Reply{Kind: KindBulkString, Text: s}
}

// NullBulk returns the "$-1" reply.
func NullBulk() Reply {
	return Reply{Kind: KindNullBulk}
}

// ErrorReply returns a "-<msg>" reply. msg carries its own prefix, e.g. "ERR ...".
func ErrorReply(msg string) Reply {
	return Reply{Kind: KindError, Text: msg}
}

// Encode writes the reply in wire form.
func (r Reply) Encode(w *bufio.Writer) error {
	switch r.Kind {
	case KindSimpleString:
		return WriteSimpleString(w, r.Text)
	case KindBulkString:
		return WriteBulkString(w, r.Text)
	case KindNullBulk:
		return WriteNullBulk(w)
	case KindError:
		return WriteError(w, r.Text)
	default:
		return fmt.Errorf("resp: unknown reply kind %d", r.Kind)
	}
}

// WriteSimpleString writes s as a simple string. s must not contain CR or LF.
func WriteSimpleString(w *bufio.Writer, s string) error {
	_, err := w.WriteString("+" + s + "\r\n")
	return err
}

// WriteError writes s as an error reply. s must not contain CR or LF.
func WriteError(w *bufio.Writer, s string) error {
	_, err := w.WriteString("-" + s + "\r\n")
	return err
}

// WriteNullBulk writes the null bulk string.
func WriteNullBulk(w *bufio.Writer) error {
	_, err := w.WriteString("$-1\r\n")
	return err
}

// WriteBulkString writes s as a length-prefixed bulk string.
func WriteBulkString(w *bufio.Writer, s string) error {
	if _, err := w.WriteString("$" + strconv.Itoa(len(s)) + "\r\n"); err != nil {
		return err
	}
	if _, err := w.WriteString(s); err != nil {
		return err
	}
	_, err := w.WriteString("\r\n")
	return err
}

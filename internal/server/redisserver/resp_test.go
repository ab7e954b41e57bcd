package redisserver

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ============================================================
// Decode Tests - Complete Frames
// ============================================================

func TestDecode_Complete(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
		wantN int
	}{
		{
			name:  "simple PING command",
			input: "*1\r\n$4\r\nPING\r\n",
			want:  []string{"PING"},
			wantN: 14,
		},
		{
			name:  "SET command with value",
			input: "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n",
			want:  []string{"SET", "foo", "bar"},
			wantN: 31,
		},
		{
			name:  "case is preserved",
			input: "*2\r\n$3\r\nget\r\n$3\r\nFoo\r\n",
			want:  []string{"get", "Foo"},
			wantN: 22,
		},
		{
			name:  "unspecified array length",
			input: "*\r\n$4\r\nPING\r\n",
			want:  []string{"PING"},
			wantN: 13,
		},
		{
			name:  "stray bytes before frame",
			input: "xx*1\r\n$4\r\nPING\r\n",
			want:  []string{"PING"},
			wantN: 16,
		},
		{
			name:  "bulk strings without array header",
			input: "$4\r\nECHO\r\n$2\r\nhi\r\n",
			want:  []string{"ECHO", "hi"},
			wantN: 18,
		},
		{
			name:  "binary safe payload",
			input: "*2\r\n$4\r\nECHO\r\n$4\r\na\r\nb\r\n",
			want:  []string{"ECHO", "a\r\nb"},
			wantN: 24,
		},
		{
			name:  "empty bulk string",
			input: "*2\r\n$4\r\nECHO\r\n$0\r\n\r\n",
			want:  []string{"ECHO", ""},
			wantN: 20,
		},
		{
			name:  "pipelined frames decode one at a time",
			input: "*1\r\n$4\r\nPING\r\n*1\r\n$4\r\nPING\r\n",
			want:  []string{"PING"},
			wantN: 14,
		},
		{
			name:  "unspecified length ends at next array",
			input: "*\r\n$4\r\nPING\r\n*1\r\n$4\r\nPING\r\n",
			want:  []string{"PING"},
			wantN: 13,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != tt.wantN {
				t.Errorf("n = %d, want %d", n, tt.wantN)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%q)", len(got), len(tt.want), got)
			}
			for i, want := range tt.want {
				if got[i] != want {
					t.Errorf("arg[%d] = %q, want %q", i, got[i], want)
				}
			}
		})
	}
}

func TestDecode_Pipeline(t *testing.T) {
	buf := []byte("*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n*1\r\n$4\r\nPI")

	var got [][]string
	for {
		args, n, err := Decode(buf)
		if errors.Is(err, ErrIncomplete) {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, args)
		buf = buf[n:]
	}

	if len(got) != 2 {
		t.Fatalf("decoded %d vectors, want 2", len(got))
	}
	if strings.Join(got[0], " ") != "SET foo bar" {
		t.Errorf("first = %q", got[0])
	}
	if strings.Join(got[1], " ") != "GET foo" {
		t.Errorf("second = %q", got[1])
	}
	if string(buf) != "*1\r\n$4\r\nPI" {
		t.Errorf("remaining = %q", buf)
	}
}

// ============================================================
// Decode Tests - Partial Input
// ============================================================

func TestDecode_Incomplete(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty buffer", ""},
		{"array marker only", "*"},
		{"array length without CRLF", "*1"},
		{"array length with CR only", "*1\r"},
		{"header only", "*1\r\n"},
		{"declared array not full", "*2\r\n$3\r\nGET\r\n"},
		{"bulk marker only", "*1\r\n$"},
		{"bulk length without CRLF", "*1\r\n$4"},
		{"truncated payload", "*1\r\n$4\r\nPI"},
		{"missing terminator", "*1\r\n$4\r\nPING"},
		{"half terminator", "*1\r\n$4\r\nPING\r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := Decode([]byte(tt.input))
			if !errors.Is(err, ErrIncomplete) {
				t.Fatalf("err = %v, want ErrIncomplete", err)
			}
			if n != 0 {
				t.Errorf("n = %d, want 0", n)
			}
			if got != nil {
				t.Errorf("got = %q, want nil", got)
			}
		})
	}
}

func TestDecode_EveryPrefixIsIncomplete(t *testing.T) {
	frame := "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"

	for i := 1; i < len(frame); i++ {
		if _, _, err := Decode([]byte(frame[:i])); !errors.Is(err, ErrIncomplete) {
			t.Fatalf("prefix %q: err = %v, want ErrIncomplete", frame[:i], err)
		}
	}

	if _, _, err := Decode([]byte(frame)); err != nil {
		t.Fatalf("full frame: unexpected error: %v", err)
	}
}

// ============================================================
// Decode Tests - Malformed Input
// ============================================================

func TestDecode_ProtocolError(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantN     int
		wantLimit bool
	}{
		{
			name:  "empty array",
			input: "*0\r\n",
			wantN: 4,
		},
		{
			name:  "inline text",
			input: "hello\r\n",
			wantN: 7,
		},
		{
			name:  "non-digit bulk length",
			input: "*1\r\n$x\r\n",
			wantN: 8,
		},
		{
			name:  "negative bulk length",
			input: "*1\r\n$-1\r\n",
			wantN: 9,
		},
		{
			name:  "bulk length without CRLF",
			input: "*1\r\n$4PING\r\n",
			wantN: 12,
		},
		{
			name:  "wrong bulk terminator",
			input: "*1\r\n$4\r\nPINGxx",
			wantN: 14,
		},
		{
			name:  "declared array interrupted",
			input: "*2\r\n$3\r\nGET\r\n*1\r\n$4\r\nPING\r\n",
			wantN: 13,
		},
		{
			name:  "unspecified array with no elements",
			input: "*\r\n*1\r\n$4\r\nPING\r\n",
			wantN: 3,
		},
		{
			name:      "array too long",
			input:     "*2000\r\n",
			wantN:     7,
			wantLimit: true,
		},
		{
			name:      "bulk too long",
			input:     "*1\r\n$600000\r\n",
			wantN:     13,
			wantLimit: true,
		},
		{
			name:      "length overflow",
			input:     "*99999999999\r\n",
			wantN:     14,
			wantLimit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := Decode([]byte(tt.input))
			if !errors.Is(err, ErrProtocol) {
				t.Fatalf("err = %v, want ErrProtocol", err)
			}
			if tt.wantLimit && !errors.Is(err, ErrLimitExceeded) {
				t.Errorf("err = %v, want ErrLimitExceeded", err)
			}
			if n != tt.wantN {
				t.Errorf("n = %d, want %d", n, tt.wantN)
			}
			if got != nil {
				t.Errorf("got = %q, want nil", got)
			}
		})
	}
}

func TestDecode_RecoversAfterProtocolError(t *testing.T) {
	buf := []byte("*\r\n*1\r\n$4\r\nPING\r\n")

	_, n, err := Decode(buf)
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("err = %v, want ErrProtocol", err)
	}

	got, _, err := Decode(buf[n:])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "PING" {
		t.Errorf("got = %q, want [PING]", got)
	}
}

// ============================================================
// Reply Encoding Tests
// ============================================================

func TestReply_Encode(t *testing.T) {
	tests := []struct {
		name  string
		reply Reply
		want  string
	}{
		{"simple string", SimpleString("PONG"), "+PONG\r\n"},
		{"ok", SimpleString("OK"), "+OK\r\n"},
		{"bulk string", BulkString("bar"), "$3\r\nbar\r\n"},
		{"empty bulk string", BulkString(""), "$0\r\n\r\n"},
		{"binary bulk string", BulkString("a\r\nb"), "$4\r\na\r\nb\r\n"},
		{"null bulk", NullBulk(), "$-1\r\n"},
		{"error", ErrorReply("ERR Protocol error"), "-ERR Protocol error\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := bufio.NewWriter(&buf)
			if err := tt.reply.Encode(w); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestReply_EncodeUnknownKind(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := (Reply{Kind: ReplyKind(99)}).Encode(w); err == nil {
		t.Error("expected error for unknown kind")
	}
}

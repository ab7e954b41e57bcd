package repl

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnbalancedQuotes is returned for a line with an unterminated quote.
var ErrUnbalancedQuotes = errors.New("unbalanced quotes")

// SplitArgs splits a line into arguments. Double-quoted arguments support
// \n, \r, \t, \", \\ and \xHH escapes; single-quoted arguments are literal
// except for \'.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   byte
		escaped bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]

		switch {
		case escaped:
			escaped = false
			if quote == '\'' {
				if ch != '\'' {
					cur.WriteByte('\\')
				}
				cur.WriteByte(ch)
				continue
			}
			switch ch {
			case 'n':
				cur.WriteByte('\n')
			case 'r':
				cur.WriteByte('\r')
			case 't':
				cur.WriteByte('\t')
			case 'x':
				if i+2 < len(line) {
					if b, err := strconv.ParseUint(line[i+1:i+3], 16, 8); err == nil {
						cur.WriteByte(byte(b))
						i += 2
						continue
					}
				}
				cur.WriteByte('x')
			default:
				cur.WriteByte(ch)
			}

		case quote != 0:
			switch ch {
			case '\\':
				escaped = true
			case quote:
				quote = 0
				// A closing quote must end the argument.
				if i+1 < len(line) && !isSpace(line[i+1]) {
					return nil, ErrUnbalancedQuotes
				}
			default:
				cur.WriteByte(ch)
			}

		case isSpace(ch):
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}

		case ch == '"' || ch == '\'':
			if inArg && cur.Len() > 0 {
				cur.WriteByte(ch)
				continue
			}
			inArg = true
			quote = ch

		default:
			inArg = true
			cur.WriteByte(ch)
		}
	}

	if quote != 0 || escaped {
		return nil, ErrUnbalancedQuotes
	}
	if inArg {
		args = append(args, cur.String())
	}
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	return args, nil
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/tinykv/internal/cli/client"
)

// TextFormatter prints replies the way redis-cli does. With Raw set, bulk
// strings are printed unquoted and nil as an empty line.
type TextFormatter struct {
	Raw bool
}

// Format writes r followed by a newline.
func (f *TextFormatter) Format(w io.Writer, r client.Reply) error {
	var b strings.Builder
	f.write(&b, r, "")
	_, err := io.WriteString(w, b.String())
	return err
}

func (f *TextFormatter) write(b *strings.Builder, r client.Reply, indent string) {
	switch r.Kind {
	case client.KindStatus:
		b.WriteString(r.Text)
	case client.KindBulk:
		if f.Raw {
			b.WriteString(r.Text)
		} else {
			b.WriteString(strconv.Quote(r.Text))
		}
	case client.KindNil:
		if !f.Raw {
			b.WriteString("(nil)")
		}
	case client.KindError:
		if f.Raw {
			b.WriteString(r.Text)
		} else {
			b.WriteString("(error) " + r.Text)
		}
	case client.KindInteger:
		if f.Raw {
			b.WriteString(r.Text)
		} else {
			b.WriteString("(integer) " + r.Text)
		}
	case client.KindArray:
		if len(r.Elems) == 0 {
			b.WriteString("(empty array)\n")
			return
		}
		for i, e := range r.Elems {
			if i > 0 {
				b.WriteString(indent)
			}
			prefix := fmt.Sprintf("%d) ", i+1)
			b.WriteString(prefix)
			f.write(b, e, indent+strings.Repeat(" ", len(prefix)))
		}
		return
	}
	b.WriteByte('\n')
}

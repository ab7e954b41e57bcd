package output

import (
	"io"

	"github.com/yndnr/tinykv/internal/cli/client"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ValidFormat reports whether f is a supported format.
func ValidFormat(f string) bool {
	switch Format(f) {
	case FormatText, FormatJSON:
		return true
	}
	return false
}

// Formatter formats a reply for output.
type Formatter interface {
	Format(w io.Writer, r client.Reply) error
}

// NewFormatter creates a formatter for the given format. raw only affects
// text output.
func NewFormatter(format Format, raw bool) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	default:
		return &TextFormatter{Raw: raw}
	}
}

package output

import (
	"encoding/json"
	"io"

	"github.com/yndnr/tinykv/internal/cli/client"
)

// JSONFormatter formats replies as JSON objects.
type JSONFormatter struct{}

type jsonReply struct {
	Type  string      `json:"type"`
	Value any         `json:"value"`
	Elems []jsonReply `json:"elements,omitempty"`
}

func toJSON(r client.Reply) jsonReply {
	out := jsonReply{Type: r.Kind.String()}
	switch r.Kind {
	case client.KindNil:
	case client.KindArray:
		out.Elems = make([]jsonReply, len(r.Elems))
		for i, e := range r.Elems {
			out.Elems[i] = toJSON(e)
		}
	default:
		out.Value = r.Text
	}
	return out
}

// Format writes r as one line of JSON.
func (f *JSONFormatter) Format(w io.Writer, r client.Reply) error {
	return json.NewEncoder(w).Encode(toJSON(r))
}

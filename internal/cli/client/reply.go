package client

import "github.com/tidwall/resp"

// Kind identifies the type of a reply.
type Kind int

const (
	KindStatus Kind = iota
	KindBulk
	KindNil
	KindError
	KindInteger
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindBulk:
		return "bulk"
	case KindNil:
		return "nil"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Reply is a decoded server reply.
type Reply struct {
	Kind  Kind
	Text  string
	Elems []Reply
}

func fromValue(v resp.Value) Reply {
	if v.IsNull() {
		return Reply{Kind: KindNil}
	}

	switch v.Type() {
	case resp.SimpleString:
		return Reply{Kind: KindStatus, Text: v.String()}
	case resp.BulkString:
		return Reply{Kind: KindBulk, Text: v.String()}
	case resp.Error:
		return Reply{Kind: KindError, Text: v.String()}
	case resp.Integer:
		return Reply{Kind: KindInteger, Text: v.String()}
	case resp.Array:
		vals := v.Array()
		elems := make([]Reply, len(vals))
		for i, e := range vals {
			elems[i] = fromValue(e)
		}
		return Reply{Kind: KindArray, Elems: elems}
	default:
		return Reply{Kind: KindBulk, Text: v.String()}
	}
}

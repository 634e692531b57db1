package patient

import (
	"bytes"

	"github.com/tidwall/gjson"
)

// maxEnvelopeDepth bounds how many nested "output" wrappers are removed.
const maxEnvelopeDepth = 3

// UnwrapEnvelope strips the agent envelope n8n emits around a record:
// [{"output": "<object json>"}] or {"output": "<object json>"}. The output
// may itself be a JSON string or an object. Bodies that do not match, or
// whose unwrapped value is not a JSON object, are returned unchanged.
func UnwrapEnvelope(body []byte) []byte {
	cur := body
	for range maxEnvelopeDepth {
		inner, ok := unwrapOnce(cur)
		if !ok {
			break
		}
		cur = inner
	}
	if !gjson.ParseBytes(cur).IsObject() {
		return body
	}
	return cur
}

// wrappable reports whether v can be the payload of an envelope: an object,
// or an array holding exactly one object (a nested envelope).
func wrappable(v gjson.Result) bool {
	if v.IsObject() {
		return true
	}
	if !v.IsArray() {
		return false
	}
	items := v.Array()
	return len(items) == 1 && items[0].IsObject()
}

func unwrapOnce(body []byte) ([]byte, bool) {
	if !gjson.ValidBytes(body) {
		return body, false
	}
	root := gjson.ParseBytes(body)

	var out gjson.Result
	switch {
	case root.IsArray():
		items := root.Array()
		if len(items) != 1 || !items[0].IsObject() {
			return body, false
		}
		out = items[0].Get("output")
	case root.IsObject():
		// only a sole "output" key is an envelope; records may carry their own
		n := 0
		root.ForEach(func(_, _ gjson.Result) bool {
			n++
			return n < 2
		})
		if n != 1 {
			return body, false
		}
		out = root.Get("output")
	default:
		return body, false
	}

	switch {
	case !out.Exists():
		return body, false
	case out.Type == gjson.String:
		s := bytes.TrimSpace([]byte(out.Str))
		if !gjson.ValidBytes(s) || !wrappable(gjson.ParseBytes(s)) {
			return body, false
		}
		return s, true
	case wrappable(out):
		return []byte(out.Raw), true
	default:
		return body, false
	}
}

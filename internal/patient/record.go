package patient

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidJSON is returned when a record body is not valid JSON.
	ErrInvalidJSON = errors.New("patient: invalid json")
	// ErrNotObject is returned when a record body is valid JSON but not an object.
	ErrNotObject = errors.New("patient: record is not a json object")
)

// Field is a single key/value pair of a Record. Value holds the raw JSON text.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Record is a patient record with open-ended fields. Key order is preserved
// as received so displayed columns and forwarded payloads match the source.
type Record struct {
	fields []Field
}

// ParseRecord parses a JSON object into a Record. Duplicate keys keep the
// position of the first occurrence and the value of the last.
func ParseRecord(data []byte) (*Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return nil, ErrNotObject
	}

	r := &Record{}
	res.ForEach(func(k, v gjson.Result) bool {
		r.Set(k.String(), json.RawMessage(v.Raw))
		return true
	})
	return r, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	parsed, err := ParseRecord(data)
	if err != nil {
		return err
	}
	r.fields = parsed.fields
	return nil
}

// MarshalJSON writes the fields in their stored order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		if len(f.Value) == 0 {
			buf.WriteString("null")
			continue
		}
		if err := json.Compact(&buf, f.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Keys returns field names in stored order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the raw value stored under key.
func (r *Record) Get(key string) (json.RawMessage, bool) {
	if r == nil {
		return nil, false
	}
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Set replaces the value under key in place, or appends a new field.
func (r *Record) Set(key string, value json.RawMessage) {
	v := append(json.RawMessage(nil), value...)
	for i := range r.fields {
		if r.fields[i].Key == key {
			r.fields[i].Value = v
			return
		}
	}
	r.fields = append(r.fields, Field{Key: key, Value: v})
}

// SetString stores s as a JSON string under key.
func (r *Record) SetString(key, s string) {
	b, _ := json.Marshal(s)
	r.Set(key, b)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := &Record{fields: make([]Field, len(r.fields))}
	for i, f := range r.fields {
		cp.fields[i] = Field{Key: f.Key, Value: append(json.RawMessage(nil), f.Value...)}
	}
	return cp
}

// Text converts a raw JSON value to display text. Strings yield their
// content, null or missing values yield "", anything else its JSON text.
func Text(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	res := gjson.ParseBytes(raw)
	switch res.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return res.Str
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw)
		}
		return buf.String()
	}
}

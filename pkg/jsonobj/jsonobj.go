// Package jsonobj implements an order-preserving JSON object.
//
// encoding/json decodes objects into maps and re-serializes them with
// sorted keys, which reshuffles files like package.json on every write.
// Object keeps the document's key order and the raw bytes of each value,
// so deleting or replacing one property leaves the rest of the file
// recognizable.
package jsonobj

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Object is a JSON object with stable key order.
type Object struct {
	keys   []string
	values map[string]json.RawMessage
}

// New creates an empty object.
func New() *Object {
	return &Object{values: make(map[string]json.RawMessage)}
}

// Parse decodes data, whose top-level value must be a JSON object.
func Parse(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("top-level value is %v, not an object", tok)
	}

	obj := New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %v, not a string", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		obj.Set(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

// Keys returns the keys in document order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of properties.
func (o *Object) Len() int {
	return len(o.keys)
}

// Get returns the raw value for key.
func (o *Object) Get(key string) (json.RawMessage, bool) {
	raw, ok := o.values[key]
	return raw, ok
}

// Has reports whether the object has the key.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Unmarshal decodes the value for key into v.
func (o *Object) Unmarshal(key string, v interface{}) error {
	raw, ok := o.values[key]
	if !ok {
		return fmt.Errorf("no such key: %q", key)
	}
	return json.Unmarshal(raw, v)
}

// Set stores a raw value, appending the key if it is new.
func (o *Object) Set(key string, raw json.RawMessage) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = raw
}

// SetValue marshals v and stores it under key.
func (o *Object) SetValue(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	o.Set(key, raw)
	return nil
}

// Delete removes a key, reporting whether it was present.
func (o *Object) Delete(key string) bool {
	if _, exists := o.values[key]; !exists {
		return false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Marshal renders the object with two-space indentation, keys in document
// order, and a trailing newline.
func (o *Object) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  ")
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteString(": ")
		var val bytes.Buffer
		if err := json.Indent(&val, o.values[key], "  ", "  "); err != nil {
			return nil, fmt.Errorf("value for %q: %w", key, err)
		}
		buf.Write(val.Bytes())
	}
	if len(o.keys) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

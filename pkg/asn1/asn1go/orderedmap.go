package asn1go

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OrderedMap is a string keyed map that remembers insertion order. It is the
// decoded form of SEQUENCE, SET, EXTERNAL and EMBEDDED PDV values.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]any)}
}

// Set adds or replaces a key. Replacing keeps the original position.
func (m *OrderedMap) Set(key string, value any) *OrderedMap {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

func (m *OrderedMap) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *OrderedMap) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *OrderedMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *OrderedMap) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Range calls fn for every entry in insertion order until fn returns false.
func (m *OrderedMap) Range(fn func(key string, value any) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

func (m *OrderedMap) String() string {
	sb := strings.Builder{}
	sb.WriteString("{")
	m.Range(func(key string, value any) bool {
		if sb.Len() > 1 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %v", key, value)
		return true
	})
	sb.WriteString("}")
	return sb.String()
}

// MarshalJSON writes the entries as a JSON object in insertion order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	m.Range(func(key string, value any) bool {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		var b []byte
		if b, err = json.Marshal(key); err != nil {
			return false
		}
		buf.Write(b)
		buf.WriteByte(':')
		if b, err = json.Marshal(value); err != nil {
			return false
		}
		buf.Write(b)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

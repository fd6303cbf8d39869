// Package jsonpath walks generic JSON documents (maps, slices and scalars as
// produced by encoding/json) along fixed key paths with typed accessors.
//
// A Node records the first failed lookup in a slot shared with every node
// derived from it, so a decoder can read all of its fields and check Err once.
// Elements returned by Elements get a fresh slot each, which lets callers
// decide per element whether a failure aborts the whole list.
package jsonpath

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// PathError reports a missing or mistyped value at a dotted path.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

type state struct {
	err error
}

// Node is a position inside a generic JSON document.
type Node struct {
	value any
	path  string
	st    *state
}

// Parse decodes one JSON document from r. Numbers are kept as json.Number.
func Parse(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

// Root starts a walk at v with an empty error slot.
func Root(v any) Node {
	return Node{value: v, st: &state{}}
}

// Err returns the first lookup failure recorded for this walk.
func (n Node) Err() error {
	if n.st == nil {
		return nil
	}
	return n.st.err
}

// Path returns the dotted path of n from the root.
func (n Node) Path() string {
	return n.path
}

// Value returns the raw value at n.
func (n Node) Value() any {
	return n.value
}

func (n Node) fail(path, reason string) {
	if n.st == nil {
		n.st = &state{}
	}
	if n.st.err == nil {
		n.st.err = &PathError{Path: path, Reason: reason}
	}
}

func join(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// walk follows keys through nested objects. When record is false a failure
// leaves the error slot untouched.
func (n Node) walk(keys []string, record bool) (any, string, bool) {
	cur := n.value
	path := n.path
	for _, key := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			if record {
				n.fail(path, "expected object, got "+kind(cur))
			}
			return nil, path, false
		}
		path = join(path, key)
		next, ok := obj[key]
		if !ok {
			if record {
				n.fail(path, "missing key")
			}
			return nil, path, false
		}
		cur = next
	}
	return cur, path, true
}

// Object returns the object at keys below n.
func (n Node) Object(keys ...string) Node {
	v, path, ok := n.walk(keys, true)
	if !ok {
		return Node{path: path, st: n.st}
	}
	if _, isObj := v.(map[string]any); !isObj {
		n.fail(path, "expected object, got "+kind(v))
		return Node{path: path, st: n.st}
	}
	return Node{value: v, path: path, st: n.st}
}

// Elements returns the members of the array at keys below n. Each element
// carries its own error slot.
func (n Node) Elements(keys ...string) []Node {
	v, path, ok := n.walk(keys, true)
	if !ok {
		return nil
	}
	arr, isArr := v.([]any)
	if !isArr {
		n.fail(path, "expected array, got "+kind(v))
		return nil
	}
	out := make([]Node, len(arr))
	for i, item := range arr {
		out[i] = Node{value: item, path: fmt.Sprintf("%s[%d]", path, i), st: &state{}}
	}
	return out
}

// String returns the string at keys below n.
func (n Node) String(keys ...string) string {
	v, path, ok := n.walk(keys, true)
	if !ok {
		return ""
	}
	s, isStr := v.(string)
	if !isStr {
		n.fail(path, "expected string, got "+kind(v))
		return ""
	}
	return s
}

// Float returns the number at keys below n.
func (n Node) Float(keys ...string) float64 {
	v, path, ok := n.walk(keys, true)
	if !ok {
		return 0
	}
	f, isNum := toFloat(v)
	if !isNum {
		n.fail(path, "expected number, got "+kind(v))
		return 0
	}
	return f
}

// Int returns the integral number at keys below n.
func (n Node) Int(keys ...string) int {
	v, path, ok := n.walk(keys, true)
	if !ok {
		return 0
	}
	i, isInt := toInt(v)
	if !isInt {
		n.fail(path, "expected integer, got "+kind(v))
		return 0
	}
	return i
}

// OptString returns the string at keys below n, or nil when it is absent or
// not a string.
func (n Node) OptString(keys ...string) *string {
	v, _, ok := n.walk(keys, false)
	if !ok {
		return nil
	}
	s, isStr := v.(string)
	if !isStr {
		return nil
	}
	return &s
}

// OptFloat returns the number at keys below n, or nil when it is absent or
// not a number.
func (n Node) OptFloat(keys ...string) *float64 {
	v, _, ok := n.walk(keys, false)
	if !ok {
		return nil
	}
	f, isNum := toFloat(v)
	if !isNum {
		return nil
	}
	return &f
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	if num, ok := v.(json.Number); ok {
		if i, err := strconv.ParseInt(string(num), 10, 64); err == nil {
			return int(i), true
		}
	}
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, float64, float32, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
}

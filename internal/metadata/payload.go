// file: internal/metadata/payload.go
// version: 1.0.0
// guid: 7b4e2c9a-1f6d-4a3e-8c05-9d2b7e1f4a66

package metadata

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// successCode is the envelope code the catalog uses for a successful call.
const successCode = 200

// parseEnvelope validates the {code, data} envelope shared by every catalog
// endpoint and returns the data object.
func parseEnvelope(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: body is not valid JSON", ErrMalformedResponse)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: top-level value is not an object", ErrMalformedResponse)
	}

	code := root.Get("code")
	if !code.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: envelope has no code", ErrUpstreamFailure)
	}
	if code.Type != gjson.Number {
		return gjson.Result{}, fmt.Errorf("%w: envelope code %q is not a number", ErrMalformedResponse, code.Raw)
	}
	if code.Int() != successCode {
		msg := stringField(root, "msg", "")
		return gjson.Result{}, fmt.Errorf("%w: code %d %s", ErrUpstreamFailure, code.Int(), msg)
	}

	data := root.Get("data")
	if !data.Exists() || data.Type == gjson.Null {
		return gjson.Result{}, fmt.Errorf("%w: envelope has no data", ErrUpstreamFailure)
	}
	if !data.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: data is not an object", ErrMalformedResponse)
	}
	return data, nil
}

// listField returns the array stored under key, or an error when it is absent.
func listField(obj gjson.Result, key string) ([]gjson.Result, error) {
	list := obj.Get(key)
	if !list.Exists() || list.Type == gjson.Null {
		return nil, fmt.Errorf("%w: data has no %s", ErrUpstreamFailure, key)
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: %s is not an array", ErrMalformedResponse, key)
	}
	return list.Array(), nil
}

// stringField reads a scalar as a string. Numbers are rendered in their JSON
// form so numeric ids come back as decimal strings. Anything else yields def.
func stringField(obj gjson.Result, key, def string) string {
	v := obj.Get(key)
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	default:
		return def
	}
}

// intField reads a number, returning def when absent or not numeric.
func intField(obj gjson.Result, key string, def int) int {
	v := obj.Get(key)
	if v.Type != gjson.Number {
		return def
	}
	return int(v.Int())
}

// stringsField reads an array of strings, skipping empty and non-string items.
func stringsField(obj gjson.Result, key string) []string {
	v := obj.Get(key)
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, item := range v.Array() {
		if item.Type == gjson.String && item.Str != "" {
			out = append(out, item.Str)
		}
	}
	return out
}

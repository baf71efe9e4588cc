package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Unmarshal decodes model output into v. A payload that is a JSON string
// wrapping a JSON document is unwrapped and the inner document decoded as
// is; string values are never rewritten.
func Unmarshal(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	inner, uerr := unwrap(data)
	if uerr != nil {
		return err
	}
	return json.Unmarshal(inner, v)
}

// StripCodeFence removes a surrounding markdown code fence (```json ... ```)
// that some models add despite being asked for bare JSON.
func StripCodeFence(raw []byte) []byte {
	s := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(s, []byte("```")) {
		return s
	}
	s = s[3:]
	if nl := bytes.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return nil
	}
	s = bytes.TrimSpace(s)
	s = bytes.TrimSuffix(s, []byte("```"))
	return bytes.TrimSpace(s)
}

// MarshalNoEscape encodes v into JSON without HTML-escaping <, > and &.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// unwrap strips up to two levels of JSON string quoting around a JSON
// document and returns the inner document untouched.
func unwrap(raw []byte) ([]byte, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.New("jsonutil: payload is not a quoted JSON document")
	}
	inner := []byte(s)
	if json.Unmarshal(inner, &s) == nil {
		inner = []byte(s)
	}
	if !json.Valid(inner) {
		return nil, errors.New("jsonutil: cannot parse JSON payload")
	}
	return inner, nil
}

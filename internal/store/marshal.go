package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalJSON encodes v as compact JSON TEXT for storage. Map keys come
// out sorted, so equal method tables always store identical text.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // signatures contain "->"
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

func marshalMethods(methods map[string]string) (string, error) {
	if methods == nil {
		methods = map[string]string{}
	}
	data, err := marshalJSON(methods)
	if err != nil {
		return "", fmt.Errorf("marshal methods: %w", err)
	}
	return data, nil
}

func marshalAliases(aliases []string) (string, error) {
	if aliases == nil {
		aliases = []string{}
	}
	data, err := marshalJSON(aliases)
	if err != nil {
		return "", fmt.Errorf("marshal aliases: %w", err)
	}
	return data, nil
}

func unmarshalMethods(data string) (map[string]string, error) {
	methods := map[string]string{}
	if data == "" || data == "{}" {
		return methods, nil
	}
	if err := json.Unmarshal([]byte(data), &methods); err != nil {
		return nil, fmt.Errorf("unmarshal methods: %w", err)
	}
	return methods, nil
}

func unmarshalAliases(data string) ([]string, error) {
	aliases := []string{}
	if data == "" || data == "[]" {
		return aliases, nil
	}
	if err := json.Unmarshal([]byte(data), &aliases); err != nil {
		return nil, fmt.Errorf("unmarshal aliases: %w", err)
	}
	return aliases, nil
}

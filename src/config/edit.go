package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrProtectedKey rejects edits that would break instance identity.
var ErrProtectedKey = errors.New("protected config key")

// protectedPaths may not be set (or shadowed) through Set. The port is
// owned by the allocator and the meta block by the composer; changing them
// by hand desynchronizes the config from the service unit.
var protectedPaths = []string{
	"gateway.port",
	"gateway",
	"meta",
}

// Set assigns value at the dotted path inside doc, creating intermediate
// maps as needed. The raw value is JSON-decoded when possible so numbers,
// booleans, and objects round-trip; anything else is stored as a string.
func Set(doc Document, dotted string, raw string) error {
	dotted = strings.TrimSpace(dotted)
	if dotted == "" {
		return fmt.Errorf("config key must not be empty")
	}
	for _, p := range protectedPaths {
		if dotted == p {
			return fmt.Errorf("%w: %s", ErrProtectedKey, dotted)
		}
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}

	keys := strings.Split(dotted, ".")
	cur := map[string]any(doc)
	for _, key := range keys[:len(keys)-1] {
		next, ok := cur[key].(map[string]any)
		if !ok {
			if _, exists := cur[key]; exists {
				return fmt.Errorf("config key %s: %q is not an object", dotted, key)
			}
			next = map[string]any{}
			cur[key] = next
		}
		cur = next
	}
	cur[keys[len(keys)-1]] = value
	return nil
}

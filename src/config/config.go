// Package config builds and edits OpenClaw instance configuration
// documents. Configs are JSON on disk; the main config is additionally
// allowed to carry JSONC comments and trailing commas, which are stripped
// before parsing.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

var (
	// ErrMissingBaseConfig means the main OpenClaw config does not exist;
	// instance creation cannot proceed without it.
	ErrMissingBaseConfig = errors.New("main config not found")

	// ErrMalformedConfig means a config file exists but cannot be parsed.
	ErrMalformedConfig = errors.New("malformed config")
)

// Document is a parsed configuration tree.
type Document map[string]any

// LoadBase reads and parses the main OpenClaw config.
func LoadBase(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingBaseConfig, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingBaseConfig, path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedConfig, path, err)
	}
	return doc, nil
}

// LoadFile reads and parses an instance config.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedConfig, path, err)
	}
	return doc, nil
}

// Parse strips JSONC comments and trailing commas, then unmarshals.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// WriteFile writes the document as indented JSON via a temp file and
// rename, so a crash mid-write never leaves a truncated config behind.
func WriteFile(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Lookup walks a dotted path through nested maps. The second return is
// false when any segment is missing or not a map.
func Lookup(doc Document, dotted string) (any, bool) {
	cur := any(map[string]any(doc))
	for _, key := range strings.Split(dotted, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// IntAt returns the integer at the dotted path, or 0 when absent. JSON
// numbers decode as float64, so both forms are accepted.
func IntAt(doc Document, dotted string) int {
	v, ok := Lookup(doc, dotted)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

// StringAt returns the string at the dotted path, or "" when absent.
func StringAt(doc Document, dotted string) string {
	v, ok := Lookup(doc, dotted)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

package config

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// configVersion is stamped into the meta block of every composed config.
const configVersion = "2026.2.15"

// inheritableProviderKeys are the only provider fields copied from the main
// config into a new instance. Everything else (tokens for unrelated
// integrations, host bindings) stays behind.
var inheritableProviderKeys = []string{"baseURL", "baseUrl", "api", "apiKey", "models"}

// Overrides are the caller-supplied values applied last during composition.
type Overrides struct {
	Model string
}

// ExtractInheritable copies the fields an instance is allowed to inherit
// from the main config: the default model, custom model catalog, and
// provider credentials/endpoints. Tailscale-related providers are never
// inherited; instances bind loopback only.
func ExtractInheritable(base Document) Document {
	inherited := Document{}

	if defaults, ok := Lookup(base, "agents.defaults"); ok {
		if dm, ok := defaults.(map[string]any); ok {
			out := map[string]any{}
			if model, ok := dm["model"]; ok {
				out["model"] = model
			}
			if models, ok := dm["models"]; ok {
				out["models"] = models
			}
			if len(out) > 0 {
				inherited["agents"] = map[string]any{"defaults": out}
			}
		}
	}

	if providers, ok := base["providers"].(map[string]any); ok {
		kept := map[string]any{}
		for name, raw := range providers {
			if strings.Contains(strings.ToLower(name), "tailscale") {
				continue
			}
			pc, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			filtered := map[string]any{}
			for _, key := range inheritableProviderKeys {
				if v, ok := pc[key]; ok {
					filtered[key] = v
				}
			}
			kept[name] = filtered
		}
		inherited["providers"] = kept
	}

	if models, ok := base["models"]; ok {
		inherited["models"] = models
	}

	return inherited
}

// Compose builds a new instance config from the main config's inheritable
// fields plus instance-local defaults. The base document is never mutated.
// Overrides win over inherited values.
func Compose(base Document, name string, port int, workspace string, ov Overrides, now time.Time) (Document, error) {
	token, err := newAuthToken()
	if err != nil {
		return nil, err
	}

	doc := Document{
		"meta": map[string]any{
			"lastTouchedVersion": configVersion,
			"lastTouchedAt":      now.UTC().Format(time.RFC3339),
		},
		"gateway": map[string]any{
			"mode": "local",
			"port": port,
			"bind": "loopback",
			"auth": map[string]any{"mode": "token", "token": token},
		},
		"agents": map[string]any{
			"defaults": map[string]any{
				"workspace":     workspace,
				"compaction":    map[string]any{"mode": "safeguard"},
				"maxConcurrent": 4,
				"subagents":     map[string]any{"maxConcurrent": 8},
			},
		},
	}

	for key, val := range ExtractInheritable(base) {
		if key == "agents" {
			// Merge into the defaults block instead of replacing the
			// instance-local workspace and concurrency settings.
			inheritedDefaults, _ := Lookup(Document{"agents": val}, "agents.defaults")
			if im, ok := inheritedDefaults.(map[string]any); ok {
				defaults, _ := Lookup(doc, "agents.defaults")
				dm := defaults.(map[string]any)
				for k, v := range im {
					dm[k] = v
				}
			}
			continue
		}
		doc[key] = val
	}

	if ov.Model != "" {
		defaults, _ := Lookup(doc, "agents.defaults")
		defaults.(map[string]any)["model"] = map[string]any{"primary": ov.Model}
	}

	return doc, nil
}

func newAuthToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Package secrets resolves credential values from a file or an inline
// configuration value. Pathfinder uses it for the Gemini API key, which is
// usually mounted as a file and pointed at via GEMINI_API_KEY_FILE.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret comes from.
type Source struct {
	// Name labels the secret in error messages.
	Name string
	// Value is an inline secret from configuration or flags.
	Value string
	// File points to a file holding the secret. A set File wins over Value.
	File string
}

// Load resolves the secret described by src and returns it trimmed. A set
// File is read and wins over Value; an unreadable or empty source is an
// error.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	value := src.Value
	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		value = string(data)
	}

	secret := strings.TrimSpace(value)
	if secret != "" {
		return secret, nil
	}
	if file != "" {
		return "", fmt.Errorf("%s file %q is empty", name, file)
	}
	return "", fmt.Errorf("%s is not configured", name)
}

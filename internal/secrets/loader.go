// Package secrets resolves sensitive configuration values, such as the
// provider API key, from inline config or from files on disk.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret comes from. A configured File wins over an
// inline Value so keys can be mounted from disk without ever appearing in the
// config file itself.
type Source struct {
	// Name labels the secret in error messages.
	Name string
	// Value is the inline secret from configuration or flags.
	Value string
	// File is a path to a file holding the secret.
	File string
}

// Load resolves the secret described by src. The result is trimmed of
// surrounding whitespace; a source that yields nothing usable is an error.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}

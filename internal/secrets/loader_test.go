package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFileTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")

	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	secret, err := Load(Source{Name: "api key", Value: "inline", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if secret != "from-file" {
		t.Fatalf("expected trimmed file content, got %q", secret)
	}
}

func TestLoadInlineValue(t *testing.T) {
	secret, err := Load(Source{Name: "api key", Value: "  inline  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if secret != "inline" {
		t.Fatalf("expected trimmed inline value, got %q", secret)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cases := []struct {
		name    string
		src     Source
		message string
	}{
		{
			name:    "nothing configured",
			src:     Source{Name: "api key"},
			message: "api key is not configured",
		},
		{
			name:    "empty file",
			src:     Source{Name: "api key", File: empty},
			message: "is empty",
		},
		{
			name:    "missing file",
			src:     Source{Name: "api key", File: filepath.Join(dir, "missing")},
			message: "reading api key",
		},
		{
			name:    "unnamed source still errors",
			src:     Source{},
			message: "secret is not configured",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Fatalf("expected error to contain %q, got %v", tc.message, err)
			}
		})
	}
}

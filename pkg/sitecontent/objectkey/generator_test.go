package objectkey

import (
	"strings"
	"testing"
	"time"
)

func TestTimestampGenerator(t *testing.T) {
	gen := &TimestampGenerator{
		Now:    func() time.Time { return time.UnixMilli(1700000000123) },
		Random: func() int64 { return 42 },
	}

	tests := []struct {
		name     string
		fileName string
		expected string
	}{
		{
			name:     "plain name",
			fileName: "manual.pdf",
			expected: "1700000000123-42-manual.pdf",
		},
		{
			name:     "name with spaces and separators",
			fileName: "my docs/spec sheet.pdf",
			expected: "1700000000123-42-my_docs_spec_sheet.pdf",
		},
		{
			name:     "empty name",
			fileName: "",
			expected: "1700000000123-42-file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := gen.GenerateKey(tt.fileName)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
			if !Valid(result) {
				t.Errorf("generated key %q is not a valid key", result)
			}
		})
	}
}

func TestUUIDGenerator(t *testing.T) {
	gen := NewUUIDGenerator()
	key := gen.GenerateKey("photo.png")

	if !strings.HasSuffix(key, "_photo.png") {
		t.Errorf("expected suffix _photo.png, got %s", key)
	}
	if other := gen.GenerateKey("photo.png"); other == key {
		t.Errorf("expected unique keys, got %s twice", key)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"1700000000123-123456789-manual.pdf", "manual.pdf"},
		{"uploads/1700000000123-5-manual.pdf", "manual.pdf"},
		{"123e4567-e89b-12d3-a456-426614174000_photo.png", "photo.png"},
		{"plain.png", "plain.png"},
		{"2024-report.pdf", "2024-report.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := DisplayName(tt.key); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestValid(t *testing.T) {
	for _, key := range []string{"", ".", "..", "a/b", `a\b`} {
		if Valid(key) {
			t.Errorf("expected %q to be invalid", key)
		}
	}
	if !Valid("1-2-file.png") {
		t.Error("expected plain key to be valid")
	}
}

func TestCustomFuncGenerator(t *testing.T) {
	gen := NewCustomFuncGenerator(func(fileName string) string {
		return "fixed-" + Sanitize(fileName)
	})
	if got := gen.GenerateKey("a b"); got != "fixed-a_b" {
		t.Errorf("expected fixed-a_b, got %s", got)
	}
}

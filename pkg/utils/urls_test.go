package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://api.local/uploads/a.jpg", ImageURL("http://api.local", "a.jpg"))
	assert.Equal(t, "http://api.local/uploads/a.jpg", ImageURL("http://api.local/", "a.jpg"))
}

func TestExtractFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a.jpg", ExtractFilename("http://api.local/uploads/a.jpg"))
	assert.Equal(t, "a.jpg", ExtractFilename("/uploads/a.jpg"))
	assert.Equal(t, "", ExtractFilename(""))
}

func TestToFullURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		path string
		want string
	}{
		{"already full", "http://api.local", "https://cdn.x/a.jpg", "https://cdn.x/a.jpg"},
		{"relative with slash", "http://api.local", "/uploads/a.jpg", "http://api.local/uploads/a.jpg"},
		{"relative without slash", "http://api.local/", "uploads/a.jpg", "http://api.local/uploads/a.jpg"},
		{"empty", "http://api.local", "", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ToFullURL(tt.base, tt.path))
		})
	}
}

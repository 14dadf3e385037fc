package artwork_test

import (
	"testing"

	"ghplayer/internal/artwork"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		base   string
		want   string
		wantOK bool
	}{
		{"public prefix", "public/abc.jpg", "https://x.test", "https://x.test/storage/v1/object/public/abc.jpg", true},
		{"leading slash and public", "/public/abc.jpg", "https://x.test/", "https://x.test/storage/v1/object/public/abc.jpg", true},
		{"bare path", "covers/s1.png", "https://x.test", "https://x.test/storage/v1/object/public/covers/s1.png", true},
		{"storage path passthrough", "/storage/v1/object/sign/a.png?token=t", "https://x.test", "https://x.test/storage/v1/object/sign/a.png?token=t", true},
		{"absolute https", " https://cdn.test/a.png ", "https://x.test", "https://cdn.test/a.png", true},
		{"absolute http", "http://cdn.test/a.png", "", "http://cdn.test/a.png", true},
		{"content scheme", "content://media/1", "https://x.test", "content://media/1", true},
		{"file scheme", "file:///tmp/a.png", "https://x.test", "file:///tmp/a.png", true},
		{"resource scheme", "android.resource://pkg/1", "https://x.test", "android.resource://pkg/1", true},
		{"no base url", " public/abc.jpg ", "", "public/abc.jpg", true},
		{"blank", "   ", "https://x.test", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := artwork.NormalizeURL(tt.raw, tt.base)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("NormalizeURL(%q, %q) = %q, %v; want %q, %v", tt.raw, tt.base, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

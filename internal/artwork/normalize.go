package artwork

import "strings"

const (
	storagePrefix       = "storage/v1/"
	publicPrefix        = "public/"
	publicObjectsPrefix = "/storage/v1/object/public/"
)

var passthroughSchemes = []string{
	"http://",
	"https://",
	"content://",
	"file://",
	"android.resource://",
}

// NormalizeURL turns a raw artwork reference into a fetchable URL.
//
// References that already carry an absolute scheme are returned trimmed.
// Anything else is a path in the backend's public object storage and is
// rebuilt under baseURL. With no baseURL the trimmed input is returned. The
// boolean is false only for empty input.
func NormalizeURL(raw, baseURL string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	for _, scheme := range passthroughSchemes {
		if strings.HasPrefix(trimmed, scheme) {
			return trimmed, true
		}
	}

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return trimmed, true
	}

	path := strings.TrimPrefix(trimmed, "/")
	if strings.HasPrefix(path, storagePrefix) {
		return base + "/" + path, true
	}
	path = strings.TrimPrefix(path, publicPrefix)
	return base + publicObjectsPrefix + path, true
}

func isHTTPURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

package photostore

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
)

var ErrNotFound = errors.New("photo not found")

// PhotoStore keeps listing images under caller-chosen keys such as
// "<item_id>/<filename>". Save overwrites an existing object.
type PhotoStore interface {
	Save(ctx context.Context, key, mimeType string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	// URL is the address a browser can load the object from.
	URL(key string) string
}

// EscapeKey path-escapes each segment of key, keeping the separators.
func EscapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

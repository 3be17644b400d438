// Package mime maps media URLs to the MIME types the playback engine can attach.
package mime

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Supported MIME types.
const (
	MP4             = "video/mp4"
	AppleMpegURL    = "application/vnd.apple.mpegurl"
	SmoothStreaming = "application/vnd.ms-sstr+xml"
)

var byExtension = map[string]string{
	"mp4":  MP4,
	"m3u8": AppleMpegURL,
	"m3u":  AppleMpegURL,
	"ism":  SmoothStreaming,
}

var extensionPattern = regexp.MustCompile(`(?i)\.([a-z0-9]+)$`)

// Extension returns the media extension of rawURL without the leading dot, or "" when none is found.
//
// The query string and fragment are ignored. When the last path segment has no
// extension, earlier segments are searched from right to left so that
// Smooth Streaming manifests such as ".../name.ism/Manifest" resolve to "ism".
func Extension(rawURL string) string {
	path := rawURL
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if u, err := url.Parse(path); err == nil && u.Host != "" {
		path = u.Path
	}

	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if m := extensionPattern.FindStringSubmatch(segments[i]); m != nil {
			return m[1]
		}
	}
	return ""
}

// ForExtension returns the MIME type registered for ext. Lookup is case-insensitive.
func ForExtension(ext string) (string, bool) {
	t, ok := byExtension[strings.ToLower(ext)]
	return t, ok
}

// Resolve returns explicit when it is supported, otherwise the type derived from rawURL.
func Resolve(rawURL, explicit string) (string, bool) {
	if IsSupported(explicit) {
		return explicit, true
	}
	return ForExtension(Extension(rawURL))
}

// IsSupported reports whether t is one of the MIME types the engine can attach.
func IsSupported(t string) bool {
	return t != "" && lo.Contains(lo.Values(byExtension), t)
}

// CanPlay reports whether rawURL can be played, either because explicit is a
// supported MIME type or because its extension maps to one.
func CanPlay(rawURL, explicit string) bool {
	_, ok := Resolve(rawURL, explicit)
	return ok
}

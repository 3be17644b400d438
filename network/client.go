// Package network inspects remote streams over HTTP.
package network

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/tvplay-cli/tvplay/internal/cache"
	"github.com/tvplay-cli/tvplay/log"
)

// Client is the HTTP client shared by every remote probe.
var Client = &http.Client{
	Timeout:   15 * time.Second,
	Transport: newTransport(),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 10
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 10 * time.Second
	return t
}

// ContentType asks the server which media type rawURL has, with a HEAD
// request. Parameters such as charset are dropped. Answers are cached for
// cache.TTL.
func ContentType(ctx context.Context, rawURL string) (string, error) {
	key := cache.Key("content-type", rawURL)

	var cached string
	if cache.Read(key, &cached) {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("HEAD %s: %s", rawURL, resp.Status)
	}

	header := resp.Header.Get("Content-Type")
	if header == "" {
		return "", nil
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return "", fmt.Errorf("content type %q: %w", header, err)
	}

	if err := cache.Write(key, mediaType); err != nil {
		log.Warnf("cache content type of %s: %s", rawURL, err)
	}
	return mediaType, nil
}

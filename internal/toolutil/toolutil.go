// Package toolutil provides shared helper functions for go_studio MCP tools.
package toolutil

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_studio/internal/engine"
)

// CacheLoadJSON tries to load a cached value of type T from the engine cache.
// Returns the decoded value and true on hit; zero value and false on miss or decode error.
func CacheLoadJSON[T any](ctx context.Context, key string) (T, bool) {
	data, ok := engine.CacheGet(ctx, key)
	if !ok {
		var zero T
		return zero, false
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it in the engine cache.
func CacheStoreJSON[T any](ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	engine.CacheSet(ctx, key, data)
}

// videoIDRe matches a bare 11-character YouTube video ID.
var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID normalises a YouTube URL or bare ID to the 11-char video ID.
// Accepts watch?v=, youtu.be/, shorts/, embed/, live/ URL forms.
func ExtractVideoID(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if videoIDRe.MatchString(input) {
		return input, true
	}

	u, err := url.Parse(input)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.TrimPrefix(u.Host, "www.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if videoIDRe.MatchString(id) {
			return id, true
		}
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if v := u.Query().Get("v"); videoIDRe.MatchString(v) {
			return v, true
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
				if videoIDRe.MatchString(id) {
					return id, true
				}
			}
		}
	}
	return "", false
}

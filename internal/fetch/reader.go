package fetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// ReadFile reads file:// documents from disk.
func ReadFile(ctx context.Context, raw string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := FilePath(raw)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path) //nolint:gosec // reading the user's own documents
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	return string(b), nil
}

// FilePath returns the local path of a file:// URL.
func FilePath(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("malformed URL %q: %w", raw, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	return filepath.FromSlash(u.Path), nil
}

// FileURL returns the file:// URL of a local path, made absolute.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// Overlay serves the given texts, falling back to next for other URLs.
// Editors use it to translate unsaved buffers.
func Overlay(docs map[string]string, next Reader) Reader {
	return func(ctx context.Context, u string) (string, error) {
		if text, ok := docs[u]; ok {
			return text, nil
		}
		if next == nil {
			return "", fmt.Errorf("no document at %s", u)
		}
		return next(ctx, u)
	}
}

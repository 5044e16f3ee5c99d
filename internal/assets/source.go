// Package assets fetches track vector assets from local directories,
// embedded files or a remote server and caches the extracted path data.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("asset not found")

// maxAssetSize bounds remote downloads.
const maxAssetSize = 8 << 20

// Source returns the raw bytes stored under key.
type Source interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// cleanKey strips leading slashes and parent references so keys stay inside
// their source.
func cleanKey(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}

// DirSource reads files below a directory.
type DirSource struct {
	Dir string
}

func (s DirSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, filepath.FromSlash(cleanKey(key))))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return data, err
}

// FSSource reads files from an fs.FS, such as the embedded catalog assets.
type FSSource struct {
	FS  fs.FS
	Dir string
}

func (s FSSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.FS, path.Join(s.Dir, cleanKey(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return data, err
}

// HTTPClient abstracts HTTP operations for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSource downloads assets relative to a base URL.
type HTTPSource struct {
	BaseURL string
	Client  HTTPClient
}

func (s HTTPSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	u, err := url.JoinPath(s.BaseURL, cleanKey(key))
	if err != nil {
		return nil, fmt.Errorf("asset url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("fetch %s: unexpected status %s", u, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	return data, nil
}

// Chain tries each source in order and returns the first hit.
type Chain []Source

func (c Chain) Fetch(ctx context.Context, key string) ([]byte, error) {
	var errs []error
	for _, s := range c {
		data, err := s.Fetch(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
}

package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "oval.svg"), []byte("<svg/>"), 0o600))
	s := DirSource{Dir: dir}
	ctx := context.Background()

	data, err := s.Fetch(ctx, "oval.svg")
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))

	data, err = s.Fetch(ctx, "../../oval.svg")
	require.NoError(t, err, "parent references stay inside the directory")
	assert.Equal(t, "<svg/>", string(data))

	_, err = s.Fetch(ctx, "missing.svg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSSource(t *testing.T) {
	s := FSSource{FS: fstest.MapFS{"assets/a.svg": {Data: []byte("a")}}, Dir: "assets"}
	data, err := s.Fetch(context.Background(), "/a.svg")
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	_, err = s.Fetch(context.Background(), "b.svg")
	assert.ErrorIs(t, err, ErrNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Fetch(ctx, "a.svg")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tracks/oval.svg":
			_, _ = w.Write([]byte("<svg/>"))
		case "/tracks/broken.svg":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := HTTPSource{BaseURL: srv.URL + "/tracks/", Client: srv.Client()}
	ctx := context.Background()

	data, err := s.Fetch(ctx, "oval.svg")
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))

	_, err = s.Fetch(ctx, "missing.svg")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Fetch(ctx, "broken.svg")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "500")
}

type clientFunc func(*http.Request) (*http.Response, error)

func (f clientFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestHTTPSourceTransportError(t *testing.T) {
	s := HTTPSource{
		BaseURL: "http://assets.invalid",
		Client: clientFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial failed")
		}),
	}
	_, err := s.Fetch(context.Background(), "a.svg")
	assert.ErrorContains(t, err, "dial failed")
}

type staticSource struct {
	data []byte
	err  error
}

func (s staticSource) Fetch(context.Context, string) ([]byte, error) { return s.data, s.err }

func TestChain(t *testing.T) {
	missing := staticSource{err: ErrNotFound}
	broken := staticSource{err: errors.New("disk on fire")}
	hit := staticSource{data: []byte("x")}
	ctx := context.Background()

	data, err := Chain{missing, broken, hit}.Fetch(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	_, err = Chain{missing, missing}.Fetch(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Chain{missing, broken}.Fetch(ctx, "k")
	assert.ErrorContains(t, err, "disk on fire")
	assert.NotErrorIs(t, err, ErrNotFound)
}

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedBody = `<rss><channel><item><title>A</title></item></channel></rss>`

func TestFetch_Success(t *testing.T) {
	var gotUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, feedBody)
	}))
	defer srv.Close()

	f := New(Options{MaxRedirects: 5})

	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, feedBody, body)
	assert.Equal(t, "feedsync/1.0", gotUA)
}

func TestFetch_CustomHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		fmt.Fprint(w, feedBody)
	}))
	defer srv.Close()

	f := New(Options{Headers: map[string]string{"Authorization": "Bearer secret"}})

	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, feedBody, body)
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++

		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(Options{}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Equal(t, "503 Service Unavailable", fetchErr.Status)
	assert.Equal(t, 1, calls, "no retry on failure")
}

func TestFetch_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/moved", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/export/products.xml", http.StatusFound)
	})
	mux.HandleFunc("/export/products.xml", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, feedBody)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	var hops []string

	f := New(Options{
		MaxRedirects: 2,
		Redirect: func(_, to string) {
			hops = append(hops, to)
		},
	})

	body, err := f.Fetch(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, feedBody, body)
	assert.Equal(t, []string{srv.URL + "/moved", srv.URL + "/export/products.xml"}, hops)
}

func TestFetch_LocationOnSuccessIsFollowed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Location", "/real")
		fmt.Fprint(w, "placeholder")
	})
	mux.HandleFunc("/real", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, feedBody)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	body, err := New(Options{MaxRedirects: 1}).Fetch(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, feedBody, body)
}

func TestFetch_RedirectLoopIsCapped(t *testing.T) {
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer srv.Close()

	_, err := New(Options{MaxRedirects: 3}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyRedirects))
	assert.Equal(t, 4, calls)
}

func TestFetch_ZeroRedirectsRejectsAnyHop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusTemporaryRedirect)
	}))
	defer srv.Close()

	_, err := New(Options{MaxRedirects: 0}).Fetch(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, ErrTooManyRedirects))
}

func TestFetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := srv.URL
	srv.Close()

	_, err := New(Options{}).Fetch(context.Background(), target)
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, target, transportErr.URL)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestFetch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, feedBody)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetch_ReportsProgress(t *testing.T) {
	payload := strings.Repeat("x", 100*1024)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	type call struct {
		downloaded int64
		done       bool
	}

	var calls []call

	f := New(Options{
		ProgressStep: 10 * 1024,
		Progress: func(downloaded int64, done bool) {
			calls = append(calls, call{downloaded, done})
		},
	})

	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, body, len(payload))

	require.GreaterOrEqual(t, len(calls), 2)

	last := calls[len(calls)-1]
	assert.True(t, last.done)
	assert.Equal(t, int64(len(payload)), last.downloaded)

	var prev int64
	for _, c := range calls[:len(calls)-1] {
		assert.False(t, c.done)
		assert.Greater(t, c.downloaded, prev)
		prev = c.downloaded
	}
}

func TestReadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.xml")
	require.NoError(t, os.WriteFile(path, []byte(feedBody), 0644))

	var reported int64

	f := New(Options{Progress: func(downloaded int64, done bool) {
		if done {
			reported = downloaded
		}
	}})

	body, err := f.ReadLocalFile(path)
	require.NoError(t, err)
	assert.Equal(t, feedBody, body)
	assert.Equal(t, int64(len(feedBody)), reported)

	body, err = f.ReadLocalFile("file://" + path)
	require.NoError(t, err)
	assert.Equal(t, feedBody, body)

	_, err = f.ReadLocalFile(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

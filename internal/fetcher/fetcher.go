// Package fetcher retrieves the raw product feed over HTTP or from disk.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"feedsync/pkg/utils"
)

const (
	defaultTimeout      = 60 * time.Second
	defaultProgressStep = 10 * 1024 * 1024
	readChunkSize       = 32 * 1024
)

// ProgressFunc observes download progress. It is called each time the body
// crosses a progress milestone and once more with done set when complete.
type ProgressFunc func(downloaded int64, done bool)

// RedirectFunc observes each redirect hop before it is followed.
type RedirectFunc func(from, to string)

// Options configures a Fetcher. Zero values select defaults.
type Options struct {
	Client       *http.Client
	Headers      map[string]string
	Progress     ProgressFunc
	Redirect     RedirectFunc
	Timeout      time.Duration
	ProgressStep int64
	MaxRedirects int
}

// Fetcher downloads the feed, following redirects up to a fixed number of hops.
type Fetcher struct {
	client       *http.Client
	headers      http.Header
	progress     ProgressFunc
	redirect     RedirectFunc
	progressStep int64
	maxRedirects int
}

// New creates a fetcher from options.
func New(opts Options) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var client http.Client
	if opts.Client != nil {
		client = *opts.Client
	} else {
		client.Timeout = timeout
	}

	// Redirects are followed by Fetch so hops are observable and capped.
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	step := opts.ProgressStep
	if step <= 0 {
		step = defaultProgressStep
	}

	return &Fetcher{
		client:       &client,
		headers:      utils.NewHTTPHelper().BuildHeaders(opts.Headers),
		progress:     opts.Progress,
		redirect:     opts.Redirect,
		progressStep: step,
		maxRedirects: opts.MaxRedirects,
	}
}

// Fetch returns the response body of rawURL as text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	current := rawURL

	for hop := 0; ; hop++ {
		body, location, err := f.get(ctx, current)
		if err != nil {
			return "", err
		}

		if location == "" {
			return body, nil
		}

		if hop >= f.maxRedirects {
			return "", fmt.Errorf("%w: stopped after %d hops at %s", ErrTooManyRedirects, hop, location)
		}

		next, err := resolveLocation(current, location)
		if err != nil {
			return "", &TransportError{URL: current, Err: err}
		}

		if f.redirect != nil {
			f.redirect(current, next)
		}

		current = next
	}
}

// get performs one request. A non-empty location means the caller should follow it.
func (f *Fetcher) get(ctx context.Context, target string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return "", "", &TransportError{URL: target, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header = f.headers.Clone()

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", &TransportError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if location := resp.Header.Get("Location"); location != "" && resp.StatusCode < http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, resp.Body)

		return "", location, nil
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", "", &FetchError{URL: target, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := f.readBody(resp.Body)
	if err != nil {
		return "", "", &TransportError{URL: target, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return body, "", nil
}

func (f *Fetcher) readBody(r io.Reader) (string, error) {
	var buf bytes.Buffer

	chunk := make([]byte, readChunkSize)
	next := f.progressStep

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])

			if downloaded := int64(buf.Len()); downloaded >= next {
				f.report(downloaded, false)

				for next <= downloaded {
					next += f.progressStep
				}
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return "", err
		}
	}

	f.report(int64(buf.Len()), true)

	return buf.String(), nil
}

func (f *Fetcher) report(downloaded int64, done bool) {
	if f.progress != nil {
		f.progress(downloaded, done)
	}
}

// ReadLocalFile reads a feed export from disk. A file:// prefix is accepted.
func (f *Fetcher) ReadLocalFile(filePath string) (string, error) {
	filePath = strings.TrimPrefix(filePath, "file://")

	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read local file %s: %w", filePath, err)
	}

	f.report(int64(len(content)), true)

	return string(content), nil
}

func resolveLocation(current, location string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("invalid request URL %q: %w", current, err)
	}

	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid redirect location %q: %w", location, err)
	}

	return base.ResolveReference(ref).String(), nil
}

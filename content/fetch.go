package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a list lookup has no item with the id.
	ErrNotFound = errors.New("content not found")
	// ErrUnknownType is returned for a content type without a base path.
	ErrUnknownType = errors.New("unknown content type")
)

// maxContentSize caps a single markdown document.
const maxContentSize = 4 << 20

// Fetcher retrieves a markdown document by its content-relative URL, for
// example "content/blogs/post1_es.md".
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetchError reports a failed fetch. Status is the HTTP status, or the
// equivalent for non-HTTP fetchers (404 for a missing file).
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsNotFound reports whether err means the content does not exist.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var fe *FetchError
	return errors.As(err, &fe) && fe.Status == http.StatusNotFound
}

// HTTPFetcher fetches content from a web server.
type HTTPFetcher struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPFetcher returns a fetcher resolving URLs against baseURL. A nil
// client gets a 10 second timeout.
func NewHTTPFetcher(baseURL string, client *http.Client) (*HTTPFetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetcher{base: u, client: client}, nil
}

// Fetch implements Fetcher. Any non-2xx response is a *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(rawURL, "/"))
	if err != nil {
		return "", &FetchError{URL: rawURL, Status: http.StatusBadRequest, Err: err}
	}
	target := f.base.ResolveReference(ref).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", &FetchError{URL: rawURL, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSize))
	if err != nil {
		return "", &FetchError{URL: rawURL, Status: resp.StatusCode, Err: err}
	}
	return string(body), nil
}

// DirFetcher reads content from a file system, usually os.DirFS of the
// site root.
type DirFetcher struct {
	FS fs.FS
}

// Fetch implements Fetcher. A missing or out-of-tree file is a 404.
func (f DirFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := path.Clean(strings.TrimPrefix(rawURL, "/"))
	if !fs.ValidPath(name) {
		return "", &FetchError{URL: rawURL, Status: http.StatusNotFound}
	}
	data, err := fs.ReadFile(f.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &FetchError{URL: rawURL, Status: http.StatusNotFound}
	}
	if err != nil {
		return "", &FetchError{URL: rawURL, Status: http.StatusInternalServerError, Err: err}
	}
	return string(data), nil
}

// Package gist resolves GitHub Gist links into the text of the Gist's first
// file so pasted links can be saved as templates.
package gist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DefaultAPIBase is the GitHub REST endpoint Gists are fetched from.
const DefaultAPIBase = "https://api.github.com"

var (
	// ErrInvalidURL is returned when no Gist id can be found in a URL.
	ErrInvalidURL = errors.New("gist: invalid gist url")
	// ErrFetchFailed is returned for transport failures and non-2xx responses.
	ErrFetchFailed = errors.New("gist: failed to fetch gist")
	// ErrNoFiles is returned when the Gist carries no files.
	ErrNoFiles = errors.New("gist: no files found in gist")
)

var idPattern = regexp.MustCompile(`(?i)gist\.(?:github|githubusercontent)\.com/(?:[^/]+/)?([a-f0-9]+)`)

// IsGistURL reports whether text mentions a Gist host.
func IsGistURL(text string) bool {
	return strings.Contains(text, "gist.github.com") || strings.Contains(text, "gist.githubusercontent.com")
}

// ParseID extracts the Gist id from url.
func ParseID(url string) (string, error) {
	match := idPattern.FindStringSubmatch(url)
	if match == nil {
		return "", ErrInvalidURL
	}
	return match[1], nil
}

// Fetcher resolves a Gist URL into file content.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithAPIBase points the client at another API root, such as a GitHub
// Enterprise host or a test server.
func WithAPIBase(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.apiBase = strings.TrimRight(base, "/")
		}
	}
}

// WithToken authenticates requests, raising the API rate limit.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// Client fetches Gists from the GitHub API.
type Client struct {
	http    *http.Client
	apiBase string
	token   string
}

var _ Fetcher = (*Client)(nil)

// New constructs a Client.
func New(options ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		apiBase: DefaultAPIBase,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type gistFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type gistResponse struct {
	Files map[string]gistFile `json:"files"`
}

// Fetch returns the content of the first file of the Gist url points to.
// Files are ordered by name.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	id, err := ParseID(url)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/gists/"+id, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: unexpected status %s", ErrFetchFailed, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}
	var payload gistResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: decode body: %v", ErrFetchFailed, err)
	}
	if len(payload.Files) == 0 {
		return "", ErrNoFiles
	}

	names := make([]string, 0, len(payload.Files))
	for name := range payload.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return payload.Files[names[0]].Content, nil
}

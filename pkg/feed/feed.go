// Package feed resolves releases from the tag feed of a repository
// host, with probe and pinned-default fallbacks for when the feed is
// unreachable or unusable.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultAPI      = "https://api.github.com"
	defaultDownload = "https://github.com"
)

var (
	errEmptyFeed = errors.New("empty tag feed")
	errNoTags    = errors.New("no tags matched the release grammar")
)

// FeedError reports a tag feed that could not be fetched or parsed.
// Resolution treats it as a soft failure and falls back to probing.
type FeedError struct {
	Repo   string
	Status int
	Err    error
}

func (e *FeedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("tag feed for %s: HTTP %d", e.Repo, e.Status)
	}
	return fmt.Sprintf("tag feed for %s: %v", e.Repo, e.Err)
}

func (e *FeedError) Unwrap() error { return e.Err }

// Client talks to the release host. The zero value uses the public
// GitHub endpoints; both bases are swappable for tests.
type Client struct {
	API      string
	Download string
	HTTP     *http.Client
}

// NewClient returns a client honoring the SV2UP_API_BASE and
// SV2UP_DOWNLOAD_BASE overrides.
func NewClient() *Client {
	return &Client{
		API:      os.Getenv("SV2UP_API_BASE"),
		Download: os.Getenv("SV2UP_DOWNLOAD_BASE"),
	}
}

func (c *Client) api() string {
	if c.API != "" {
		return c.API
	}
	return defaultAPI
}

func (c *Client) download() string {
	if c.Download != "" {
		return c.Download
	}
	return defaultDownload
}

var feedClient = &http.Client{Timeout: 30 * time.Second}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return feedClient
}

// FetchTags lists the tag names of a repository, newest first as the
// host reports them. Any transport, status or parse problem comes back
// as a *FeedError.
func (c *Client) FetchTags(ctx context.Context, repo string) ([]string, error) {
	url := fmt.Sprintf("%s/repos/%s/tags?per_page=100", c.api(), repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FeedError{Repo: repo, Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, &FeedError{Repo: repo, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FeedError{Repo: repo, Status: resp.StatusCode, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FeedError{Repo: repo, Err: err}
	}

	names := tagNames(body)
	if len(names) == 0 {
		return nil, &FeedError{Repo: repo, Err: errEmptyFeed}
	}
	return names, nil
}

// namePattern rescues tag names from a body that is not the JSON the
// API documents (truncated responses, HTML error pages with embedded
// payloads).
var namePattern = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)

func tagNames(body []byte) []string {
	var names []string
	if gjson.ValidBytes(body) {
		for _, r := range gjson.GetBytes(body, "#.name").Array() {
			if r.String() != "" {
				names = append(names, r.String())
			}
		}
		if len(names) > 0 {
			return names
		}
	}
	for _, m := range namePattern.FindAllSubmatch(body, -1) {
		names = append(names, string(m[1]))
	}
	return names
}

// TagExists checks whether a release tag is published, using the
// release page rather than the API so probing is not rate limited.
func (c *Client) TagExists(ctx context.Context, repo, tag string) bool {
	url := fmt.Sprintf("%s/%s/releases/tag/%s", c.download(), repo, tag)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

package daemon

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var redirectClient = &http.Client{Timeout: 30 * time.Second}

// GithubLatest resolves the tag of the newest release by following the
// redirect on the releases/latest page. No API call, no rate limit.
func GithubLatest(d *Daemon) (string, error) {
	if d.Repo == "" {
		return "", fmt.Errorf("repo is not set for %s", d.Name)
	}
	ctx := d.Context
	if ctx == nil {
		ctx = context.Background()
	}
	url := fmt.Sprintf("%s/%s/releases/latest", downloadBase(), d.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := redirectClient.Do(req)
	if err != nil {
		return "", err
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("no releases found for %s", d.Repo)
	}
	parts := strings.Split(resp.Request.URL.Path, "/")
	tag := parts[len(parts)-1]
	if tag == "" || tag == "latest" {
		return "", fmt.Errorf("no releases found for %s", d.Repo)
	}
	return tag, nil
}

package daemon

import (
	"fmt"
	"net/http"
)

// DownloadError reports a release artifact that could not be fetched.
type DownloadError struct {
	URL    string
	Status int
	Err    error
}

func (e *DownloadError) Error() string {
	switch e.Status {
	case 0:
		return fmt.Sprintf("downloading %s: %v", e.URL, e.Err)
	case http.StatusNotFound:
		return fmt.Sprintf("artifact not published: %s", e.URL)
	case http.StatusForbidden, http.StatusTooManyRequests:
		return fmt.Sprintf("rate limited fetching %s (set GITHUB_TOKEN for higher limits)", e.URL)
	case http.StatusUnauthorized:
		return fmt.Sprintf("unauthorized fetching %s", e.URL)
	}
	return fmt.Sprintf("HTTP %d fetching %s", e.Status, e.URL)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ExtractError reports an archive that could not be unpacked.
type ExtractError struct {
	File string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.File, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// NoArtifactError reports an archive that contained nothing installable.
type NoArtifactError struct {
	Dir string
}

func (e *NoArtifactError) Error() string {
	return "no executable found in archive"
}

// InstallIOError reports a filesystem failure while placing files into
// the install directory.
type InstallIOError struct {
	Path string
	Err  error
}

func (e *InstallIOError) Error() string {
	return fmt.Sprintf("installing %s: %v", e.Path, e.Err)
}

func (e *InstallIOError) Unwrap() error { return e.Err }

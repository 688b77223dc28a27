package daemon

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fentas/goodies/progress"
	"github.com/ulikunitz/xz"
)

// Step is the stage the install pipeline has reached.
type Step int

const (
	StepPending Step = iota
	StepDownloaded
	StepExtracted
	StepInstalled
	StepFailed
)

func (s Step) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepDownloaded:
		return "downloaded"
	case StepExtracted:
		return "extracted"
	case StepInstalled:
		return "installed"
	case StepFailed:
		return "failed"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Result is the outcome of one pipeline run. Err is set exactly when
// Step is StepFailed; Installed lists the files placed on success.
type Result struct {
	Step      Step
	Installed []string
	Err       error
}

func (r *Result) OK() bool { return r.Step == StepInstalled }

func (r *Result) fail(err error) *Result {
	r.Step = StepFailed
	r.Err = err
	return r
}

// downloadClient gives dialing 30s and the whole download 120s.
var downloadClient = &http.Client{
	Transport: &http.Transport{
		DialContext:         (&net.Dialer{Timeout: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout: 30 * time.Second,
		Proxy:               http.ProxyFromEnvironment,
	},
	Timeout: 120 * time.Second,
}

// Install runs the pipeline: download the artifact into a scratch dir,
// extract it, locate the executables and move them into the install
// directory. The scratch dir is removed on every path out.
func (d *Daemon) Install() *Result {
	res := &Result{Step: StepPending}

	scratch, err := os.MkdirTemp("", "sv2up-*")
	if err != nil {
		return res.fail(&InstallIOError{Path: os.TempDir(), Err: err})
	}
	defer os.RemoveAll(scratch)

	archive, err := d.download(scratch)
	if err != nil {
		return res.fail(err)
	}
	res.Step = StepDownloaded

	root := filepath.Join(scratch, "x")
	if err := extractTar(archive, root); err != nil {
		return res.fail(&ExtractError{File: filepath.Base(archive), Err: err})
	}
	res.Step = StepExtracted

	exes, err := locateExecutables(root)
	if err != nil {
		return res.fail(err)
	}

	installed, err := d.place(exes)
	if err != nil {
		return res.fail(err)
	}
	res.Step = StepInstalled
	res.Installed = installed
	d.Installed = installed
	return res
}

// ArtifactURL returns the fully resolved download URL for the daemon's
// version and variant.
func (d *Daemon) ArtifactURL() (string, error) {
	if d.URLF != nil {
		return d.URLF(d)
	}
	if d.Repo == "" || d.FileF == nil {
		return "", errors.New("no artifact URL available")
	}
	file, err := d.FileF(d)
	if err != nil {
		return "", err
	}
	tag, err := d.Tag()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/releases/download/%s/%s", downloadBase(), d.Repo, tag, file), nil
}

// Tag returns the release tag the artifact is published under. Without
// a TagF the version is the tag, verbatim.
func (d *Daemon) Tag() (string, error) {
	if d.TagF != nil {
		return d.TagF(d)
	}
	return d.Version, nil
}

func downloadBase() string {
	if p := os.Getenv("SV2UP_DOWNLOAD_BASE"); p != "" {
		return p
	}
	return "https://github.com"
}

func (d *Daemon) download(scratch string) (string, error) {
	rawURL, err := d.ArtifactURL()
	if err != nil {
		return "", err
	}
	ctx := d.Context
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &DownloadError{URL: rawURL, Err: err}
	}
	resp, err := downloadClient.Do(req)
	if err != nil {
		return "", &DownloadError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &DownloadError{URL: rawURL, Status: resp.StatusCode}
	}

	var reader io.Reader = resp.Body
	if d.Tracker != nil {
		d.Tracker.UpdateMessage(fmt.Sprintf("Downloading %s", d.Name))
		d.Tracker.UpdateTotal(resp.ContentLength)
		reader = progress.NewReader(resp.Body, d.Tracker)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &DownloadError{URL: rawURL, Err: err}
	}
	dst := filepath.Join(scratch, filepath.Base(u.Path))
	f, err := os.Create(dst)
	if err != nil {
		return "", &InstallIOError{Path: dst, Err: err}
	}
	_, err = io.Copy(f, reader)
	f.Close()
	if err != nil {
		return "", &DownloadError{URL: rawURL, Err: err}
	}
	return dst, nil
}

// extractTar unpacks a tar archive into dir, choosing the decompressor
// by file name (.tar.gz/.tgz or .tar.xz/.txz).
func extractTar(archive, dir string) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	var tr *tar.Reader
	switch {
	case strings.HasSuffix(archive, ".tar.gz"), strings.HasSuffix(archive, ".tgz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gz.Close()
		tr = tar.NewReader(gz)
	case strings.HasSuffix(archive, ".tar.xz"), strings.HasSuffix(archive, ".txz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			return err
		}
		tr = tar.NewReader(xzr)
	default:
		return fmt.Errorf("unsupported archive type: %s", filepath.Base(archive))
	}

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.Clean(header.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			continue // entry escaping the extraction root
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, header.FileInfo().Mode().Perm())
			if err != nil {
				return err
			}
			_, err = io.Copy(out, tr)
			out.Close()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// locateExecutables finds the files worth installing: a bin/ directory
// at the extraction root (or inside the single wrapping directory
// release tarballs usually carry) wins, otherwise every regular file
// with an exec bit.
func locateExecutables(root string) ([]string, error) {
	dir := root
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &InstallIOError{Path: dir, Err: err}
	}
	if len(entries) == 1 && entries[0].IsDir() {
		dir = filepath.Join(dir, entries[0].Name())
		entries, err = os.ReadDir(dir)
		if err != nil {
			return nil, &InstallIOError{Path: dir, Err: err}
		}
	}

	for _, e := range entries {
		if e.IsDir() && e.Name() == "bin" {
			exes, err := listExecutables(filepath.Join(dir, "bin"))
			if err != nil {
				return nil, err
			}
			if len(exes) > 0 {
				return exes, nil
			}
		}
	}

	exes, err := listExecutables(dir)
	if err != nil {
		return nil, err
	}
	if len(exes) == 0 {
		return nil, &NoArtifactError{Dir: root}
	}
	return exes, nil
}

func listExecutables(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &InstallIOError{Path: dir, Err: err}
	}
	var exes []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() && info.Mode()&0111 != 0 {
			exes = append(exes, filepath.Join(dir, e.Name()))
		}
	}
	return exes, nil
}

// place moves the executables into the install directory in two phases:
// every file is staged to a sibling temp file first, then renamed over
// its final name. A failure before the renames leaves the directory
// untouched.
func (d *Daemon) place(exes []string) ([]string, error) {
	destDir := d.BinDir()
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, &InstallIOError{Path: destDir, Err: err}
	}

	type staged struct {
		tmp, dest string
	}
	var plan []staged
	cleanup := func() {
		for _, s := range plan {
			os.Remove(s.tmp)
		}
	}

	for _, src := range exes {
		name := filepath.Base(src) + d.Suffix
		tmp, err := stage(src, destDir, name)
		if err != nil {
			cleanup()
			return nil, err
		}
		plan = append(plan, staged{tmp: tmp, dest: filepath.Join(destDir, name)})
	}

	installed := make([]string, 0, len(plan))
	for _, s := range plan {
		if err := os.Rename(s.tmp, s.dest); err != nil {
			cleanup()
			return nil, &InstallIOError{Path: s.dest, Err: err}
		}
		installed = append(installed, s.dest)
	}
	return installed, nil
}

// stage copies src into dir under a temporary name with the exec bit
// set, ready to be renamed into place.
func stage(src, dir, name string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", &InstallIOError{Path: src, Err: err}
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return "", &InstallIOError{Path: dir, Err: err}
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", &InstallIOError{Path: tmp.Name(), Err: err}
	}
	if err := tmp.Chmod(0755); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", &InstallIOError{Path: tmp.Name(), Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", &InstallIOError{Path: tmp.Name(), Err: err}
	}
	return tmp.Name(), nil
}

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fentas/goodies/streams"

	"github.com/sv2tools/sv2up/pkg/daemon"
	"github.com/sv2tools/sv2up/pkg/state"
)

// TempDir creates a temporary directory for testing
func TempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "sv2up-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	return dir
}

// TempFile creates a temporary file for testing
func TempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := TempDir(t)
	path := filepath.Join(dir, name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for temp file: %v", err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// MockDaemon creates a mock daemon for testing
func MockDaemon(name, version string) *daemon.Daemon {
	return &daemon.Daemon{
		Name:    name,
		Version: version,
	}
}

// MockConfig creates a test configuration
func MockConfig(daemons ...string) *state.Config {
	config := &state.Config{Network: "mainnet"}
	for _, name := range daemons {
		config.Daemons = append(config.Daemons, &state.DaemonSettings{
			Name: name,
		})
	}
	return config
}

// MockConfigWithVersions creates a test configuration with pinned versions
func MockConfigWithVersions(daemons map[string]string) *state.Config {
	config := &state.Config{Network: "mainnet"}
	for name, version := range daemons {
		config.Daemons = append(config.Daemons, &state.DaemonSettings{
			Name:    name,
			Version: version,
		})
	}
	return config
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("expected file to not exist: %s", path)
	}
}

// AssertFileContent validates file content
func AssertFileContent(t *testing.T, path, expected string) {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	if string(content) != expected {
		t.Fatalf("file content mismatch in %s:\nexpected: %q\nactual: %q", path, expected, string(content))
	}
}

// AssertFileContains checks if file contains specific content
func AssertFileContains(t *testing.T, path, expected string) {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	if !Contains(string(content), expected) {
		t.Fatalf("file %s does not contain expected content: %q", path, expected)
	}
}

// MockIO creates a mock IO for testing
func MockIO() *streams.IO {
	return &streams.IO{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

// MockIOWithBuffers creates a mock IO with buffer capture
func MockIOWithBuffers() (*streams.IO, *MockBuffer, *MockBuffer) {
	outBuf := &MockBuffer{}
	errBuf := &MockBuffer{}
	return &streams.IO{
		In:     os.Stdin,
		Out:    outBuf,
		ErrOut: errBuf,
	}, outBuf, errBuf
}

// MockBuffer implements io.Writer for testing
type MockBuffer struct {
	content []byte
}

func (b *MockBuffer) Write(p []byte) (n int, err error) {
	b.content = append(b.content, p...)
	return len(p), nil
}

func (b *MockBuffer) String() string {
	return string(b.content)
}

func (b *MockBuffer) Reset() {
	b.content = nil
}

// Home points every directory the tool derives from the environment at
// a temp dir, so tests never touch the real user state.
func Home(t *testing.T) string {
	t.Helper()
	dir := TempDir(t)
	t.Setenv("HOME", dir)
	t.Setenv("SV2UP_HOME", "")
	t.Setenv("SV2UP_BIN", filepath.Join(dir, "bin"))
	t.Setenv("SV2UP_CONFIG", filepath.Join(dir, "config"))
	t.Setenv("SV2UP_DAEMON_DIR", filepath.Join(dir, "sv2"))
	return dir
}

// CreateTestProject creates a config dir holding the given sv2.yaml
func CreateTestProject(t *testing.T, config *state.Config) string {
	t.Helper()
	dir := TempDir(t)

	if config != nil {
		configPath := filepath.Join(dir, "sv2.yaml")
		if err := state.Save(config, configPath); err != nil {
			t.Fatalf("failed to save test config: %v", err)
		}
	}

	return dir
}

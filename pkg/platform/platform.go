// Package platform identifies the host operating system and CPU
// architecture and normalizes them to the names release artifacts use.
package platform

import (
	"fmt"
	"os"
	"runtime"

	"github.com/sv2tools/sv2up/pkg/path"
)

// Os is the set of operating systems release artifacts exist for.
type Os string

const (
	OsLinux  Os = "linux"
	OsDarwin Os = "darwin"
)

// Arch is the normalized CPU architecture token used in artifact names.
type Arch string

const (
	ArchX8664   Arch = "x86_64"
	ArchAarch64 Arch = "aarch64"
	ArchArm     Arch = "arm"
)

// Error reports a host operating system no artifacts are published for.
type Error struct {
	Name string
}

func (e *Error) Error() string {
	return fmt.Sprintf("unsupported operating system %q (linux and macos only)", e.Name)
}

// osNames maps OS spellings (runtime.GOOS, uname -s) to the closed enum.
var osNames = map[string]Os{
	"linux":  OsLinux,
	"darwin": OsDarwin,
	"macos":  OsDarwin,
	"osx":    OsDarwin,
}

// archNames maps architecture spellings (runtime.GOARCH, uname -m) to the
// tokens artifact names are built from.
var archNames = map[string]Arch{
	"x86_64":  ArchX8664,
	"amd64":   ArchX8664,
	"aarch64": ArchAarch64,
	"arm64":   ArchAarch64,
	"armv8":   ArchAarch64,
	"armv7l":  ArchArm,
	"armv7":   ArchArm,
	"armv6l":  ArchArm,
	"armv6":   ArchArm,
	"arm":     ArchArm,
}

// Host is the immutable host context resolution and installs run against.
// Warning carries a non-fatal identification note for the CLI to surface.
type Host struct {
	Os      Os
	Arch    Arch
	Abi     string
	Home    string
	Bin     string
	Warning string
}

// Identify normalizes raw OS and architecture names. Unsupported operating
// systems are an error; unknown architectures fall back to x86_64 with a
// warning on the returned host.
func Identify(osName, archName string) (*Host, error) {
	o, ok := osNames[osName]
	if !ok {
		return nil, &Error{Name: osName}
	}

	h := &Host{Os: o}
	h.Arch, ok = archNames[archName]
	if !ok {
		h.Arch = ArchX8664
		h.Warning = fmt.Sprintf("unknown architecture %q, assuming x86_64", archName)
	}
	if h.Os == OsLinux {
		h.Abi = "gnu"
		if h.Arch == ArchArm {
			h.Abi = "gnueabihf"
		}
	}
	return h, nil
}

// Current identifies the running host and fills in the home and install
// directories.
func Current() (*Host, error) {
	h, err := Identify(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return nil, err
	}
	h.Home, err = os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	h.Bin = path.InstallDir()
	return h, nil
}

// Triplet returns the architecture-platform token release tarballs carry,
// e.g. x86_64-linux-gnu or aarch64-apple-darwin.
func (h *Host) Triplet() string {
	if h.Os == OsDarwin {
		return fmt.Sprintf("%s-apple-darwin", h.Arch)
	}
	return fmt.Sprintf("%s-linux-%s", h.Arch, h.Abi)
}

func (h *Host) String() string {
	return fmt.Sprintf("%s/%s", h.Os, h.Arch)
}

// Package hostdeps checks for the host tools the daemons' setup relies
// on and knows how each platform installs them.
package hostdeps

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sv2tools/sv2up/pkg/platform"
)

// Family classifies the host's package manager.
type Family string

const (
	Debian  Family = "debian"
	Fedora  Family = "fedora"
	Arch    Family = "arch"
	Brew    Family = "brew"
	Unknown Family = "unknown"
)

const osReleaseFile = "/etc/os-release"

// Required lists the host tools setup assumes are present.
func Required() []string {
	return []string{"curl", "tar"}
}

// Missing returns the required tools absent from PATH.
func Missing() []string {
	var missing []string
	for _, tool := range Required() {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	return missing
}

// Detect classifies the host's package manager. macOS is always brew;
// Linux distributions are read from /etc/os-release.
func Detect(system platform.Os) Family {
	if system == platform.OsDarwin {
		return Brew
	}
	return detectRelease(osReleaseFile)
}

func detectRelease(path string) Family {
	data, err := os.ReadFile(path)
	if err != nil {
		return Unknown
	}
	for _, id := range releaseIDs(string(data)) {
		switch id {
		case "debian", "ubuntu":
			return Debian
		case "fedora", "rhel", "centos":
			return Fedora
		case "arch", "archarm", "manjaro":
			return Arch
		}
	}
	return Unknown
}

// releaseIDs collects the ID and ID_LIKE tokens from os-release content.
// ID_LIKE lets derivatives (Mint, Rocky, ...) resolve to their parent.
func releaseIDs(content string) []string {
	var ids []string
	for _, line := range strings.Split(content, "\n") {
		k, v, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch k {
		case "ID", "ID_LIKE":
			ids = append(ids, strings.Fields(strings.Trim(v, `"'`))...)
		}
	}
	return ids
}

// command returns the package-manager invocation that installs tools,
// or nil when the family is unknown.
func command(family Family, tools []string) []string {
	switch family {
	case Debian:
		return append([]string{"sudo", "apt-get", "install", "-y"}, tools...)
	case Fedora:
		return append([]string{"sudo", "dnf", "install", "-y"}, tools...)
	case Arch:
		return append([]string{"sudo", "pacman", "-S", "--noconfirm"}, tools...)
	case Brew:
		return append([]string{"brew", "install"}, tools...)
	}
	return nil
}

// Hint returns a copy-pasteable install command for the missing tools.
func Hint(family Family, tools []string) string {
	if args := command(family, tools); args != nil {
		return strings.Join(args, " ")
	}
	return "install with your package manager: " + strings.Join(tools, " ")
}

// Install runs the package-manager command for the given tools. Stdin
// stays attached so sudo can ask for a password.
func Install(family Family, tools []string, out, errOut io.Writer) error {
	args := command(family, tools)
	if args == nil {
		return fmt.Errorf("no supported package manager found, install manually: %s", strings.Join(tools, " "))
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = out
	cmd.Stderr = errOut
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", strings.Join(args, " "), err)
	}
	return nil
}

// Package prompt collects the interactive decisions the install and
// configure flows may need. Commands talk to a Decider so answers can
// come from the terminal or from flags without the flow caring which.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fentas/goodies/streams"
	"golang.org/x/term"

	"github.com/sv2tools/sv2up/pkg/feed"
)

// Decider answers the questions a command cannot decide on its own.
type Decider interface {
	// Variant picks between the standard and ipc builds of a release.
	// standard and ipc report which builds exist for the version.
	Variant(name, version string, standard, ipc bool) (feed.Variant, error)
	// Secret asks for a sensitive value by its env key, e.g. "TOKEN".
	// An empty answer means the caller should leave the value alone.
	Secret(key string) (string, error)
	// Confirm asks a yes/no question. def is the answer on empty input.
	Confirm(question string, def bool) (bool, error)
}

// Terminal asks on the attached streams. When stdin is not a terminal
// or gives no answer, questions fall back to their defaults.
type Terminal struct {
	IO *streams.IO

	reader *bufio.Reader
}

func (t *Terminal) in() io.Reader {
	if t.IO != nil && t.IO.In != nil {
		return t.IO.In
	}
	return os.Stdin
}

func (t *Terminal) out() io.Writer {
	if t.IO != nil && t.IO.Out != nil {
		return t.IO.Out
	}
	return os.Stdout
}

func (t *Terminal) errOut() io.Writer {
	if t.IO != nil && t.IO.ErrOut != nil {
		return t.IO.ErrOut
	}
	return os.Stderr
}

func (t *Terminal) readLine() (string, error) {
	if t.reader == nil {
		t.reader = bufio.NewReader(t.in())
	}
	line, err := t.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *Terminal) Variant(name, version string, standard, ipc bool) (feed.Variant, error) {
	switch {
	case standard && !ipc:
		return feed.Standard, nil
	case ipc && !standard:
		return feed.IPC, nil
	case !standard && !ipc:
		return "", fmt.Errorf("no build of %s %s is published", name, version)
	}

	fmt.Fprintf(t.out(), "%s %s is published in two builds:\n", name, version)
	fmt.Fprintf(t.out(), "  1) standard  single-process template provider (default)\n")
	fmt.Fprintf(t.out(), "  2) ipc       multiprocess build, talks to bitcoin-node over IPC\n")
	fmt.Fprintf(t.out(), "Select build [1/2]: ")

	answer, err := t.readLine()
	if err != nil {
		// No input to read, stdin is closed or piped empty.
		fmt.Fprintf(t.errOut(), "no answer, using the standard build\n")
		return feed.Standard, nil
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "1", "standard", "std":
		return feed.Standard, nil
	case "2", "ipc":
		return feed.IPC, nil
	}
	return "", fmt.Errorf("unknown choice %q", answer)
}

func (t *Terminal) Secret(key string) (string, error) {
	fmt.Fprintf(t.errOut(), "%s: ", key)
	if f, ok := t.in().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(t.errOut())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	answer, err := t.readLine()
	if err != nil {
		return "", nil
	}
	return answer, nil
}

func (t *Terminal) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(t.out(), "%s [%s]: ", question, hint)

	answer, err := t.readLine()
	if err != nil {
		fmt.Fprintln(t.errOut())
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, fmt.Errorf("unknown answer %q", answer)
}

// Static answers from preset values. Flags like --variant, --token and
// --yes become a Static so commands never block on a closed stdin.
type Static struct {
	Choice  feed.Variant      // build to pick when a release has both
	Secrets map[string]string // answers by env key
	Yes     bool              // answer to every confirmation
	Warn    io.Writer         // fallback notes, optional
}

func (s *Static) warnf(format string, a ...interface{}) {
	if s.Warn != nil {
		fmt.Fprintf(s.Warn, format, a...)
	}
}

func (s *Static) Variant(name, version string, standard, ipc bool) (feed.Variant, error) {
	switch {
	case !standard && !ipc:
		return "", fmt.Errorf("no build of %s %s is published", name, version)
	case standard && !ipc:
		if s.Choice == feed.IPC {
			s.warnf("ipc build of %s %s is not published, using standard\n", name, version)
		}
		return feed.Standard, nil
	case ipc && !standard:
		if s.Choice == feed.Standard {
			s.warnf("standard build of %s %s is not published, using ipc\n", name, version)
		}
		return feed.IPC, nil
	}
	if s.Choice != "" {
		return s.Choice, nil
	}
	s.warnf("%s %s ships standard and ipc builds, using standard\n", name, version)
	return feed.Standard, nil
}

func (s *Static) Secret(key string) (string, error) {
	return s.Secrets[key], nil
}

func (s *Static) Confirm(string, bool) (bool, error) {
	return s.Yes, nil
}

package feed

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// Variant selects between the two build flavors every release may ship.
type Variant string

const (
	Standard Variant = "standard"
	IPC      Variant = "ipc"
)

// ParseVariant maps user or config spellings to a Variant. The empty
// string means "not decided yet" and maps to Standard.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "", "standard", "std":
		return Standard, nil
	case "ipc":
		return IPC, nil
	}
	return Standard, fmt.Errorf("unknown variant %q (standard or ipc)", s)
}

// tagPattern is the release tag grammar. Tags not matching it never take
// part in version selection.
var tagPattern = regexp.MustCompile(`^sv2-tp(-ipc)?-(\d+\.\d+\.\d+)$`)

// Tag is one release tag broken into its parts.
type Tag struct {
	Name    string
	Variant Variant
	Version *semver.Version
}

// ParseTag splits a tag name against the release grammar. The second
// return is false for foreign tags, never an error.
func ParseTag(name string) (*Tag, bool) {
	m := tagPattern.FindStringSubmatch(name)
	if m == nil {
		return nil, false
	}
	v, err := semver.NewVersion(m[2])
	if err != nil {
		return nil, false
	}
	t := &Tag{Name: name, Variant: Standard, Version: v}
	if m[1] != "" {
		t.Variant = IPC
	}
	return t, true
}

// TagName builds the release tag for a version and variant.
func TagName(version string, variant Variant) string {
	if variant == IPC {
		return "sv2-tp-ipc-" + version
	}
	return "sv2-tp-" + version
}

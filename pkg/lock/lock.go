// Package lock manages the sv2up.lock file — a JSON lockfile recording
// which daemon releases are installed where, with checksums.
package lock

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Lock is the top-level sv2up.lock structure.
type Lock struct {
	Version int      `json:"version"`
	Tool    ToolInfo `json:"tool"`
	Updated string   `json:"updated"`
	Daemons []Entry  `json:"daemons"`
}

// ToolInfo records the sv2up version that wrote the lock.
type ToolInfo struct {
	Sv2up string `json:"sv2up"`
}

// Entry is a single installed daemon in the lockfile.
type Entry struct {
	Name        string `json:"name"`
	Tag         string `json:"tag"`
	Variant     string `json:"variant,omitempty"`
	Version     string `json:"version"`
	SHA256      string `json:"sha256"`
	Path        string `json:"path"`
	InstalledAt string `json:"installed_at"`
}

const lockFileName = "sv2up.lock"

// Read parses the lockfile in dir. Returns an empty Lock (not nil) if
// the file doesn't exist.
func Read(dir string) (*Lock, error) {
	p := filepath.Join(dir, lockFileName)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &Lock{Version: 1}, nil
		}
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parsing %s: not valid JSON", p)
	}

	lk := &Lock{
		Version: int(gjson.GetBytes(data, "version").Int()),
		Updated: gjson.GetBytes(data, "updated").String(),
	}
	lk.Tool.Sv2up = gjson.GetBytes(data, "tool.sv2up").String()
	gjson.GetBytes(data, "daemons").ForEach(func(_, v gjson.Result) bool {
		lk.Daemons = append(lk.Daemons, Entry{
			Name:        v.Get("name").String(),
			Tag:         v.Get("tag").String(),
			Variant:     v.Get("variant").String(),
			Version:     v.Get("version").String(),
			SHA256:      v.Get("sha256").String(),
			Path:        v.Get("path").String(),
			InstalledAt: v.Get("installed_at").String(),
		})
		return true
	})
	return lk, nil
}

// Find returns the lock entry for a named daemon, or nil.
func (l *Lock) Find(name string) *Entry {
	for i := range l.Daemons {
		if l.Daemons[i].Name == name {
			return &l.Daemons[i]
		}
	}
	return nil
}

// Upsert records an entry in the lockfile in dir. Existing entries are
// updated field by field in place, so fields this version of the tool
// does not know about survive the write.
func Upsert(dir string, e Entry, toolVersion string) error {
	p := filepath.Join(dir, lockFileName)
	data, err := os.ReadFile(p)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		data = []byte("{}")
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("parsing %s: not valid JSON", p)
	}

	idx := -1
	gjson.GetBytes(data, "daemons").ForEach(func(k, v gjson.Result) bool {
		if v.Get("name").String() == e.Name {
			idx = int(k.Int())
			return false
		}
		return true
	})

	head := []struct {
		path  string
		value interface{}
	}{
		{"version", 1},
		{"tool.sv2up", toolVersion},
		{"updated", time.Now().UTC().Format(time.RFC3339)},
	}
	for _, kv := range head {
		if data, err = sjson.SetBytes(data, kv.path, kv.value); err != nil {
			return err
		}
	}

	if idx < 0 {
		if data, err = sjson.SetBytes(data, "daemons.-1", e); err != nil {
			return err
		}
	} else {
		base := fmt.Sprintf("daemons.%d", idx)
		fields := []struct {
			path  string
			value string
		}{
			{"tag", e.Tag},
			{"variant", e.Variant},
			{"version", e.Version},
			{"sha256", e.SHA256},
			{"path", e.Path},
			{"installed_at", e.InstalledAt},
		}
		for _, kv := range fields {
			if kv.value == "" {
				if data, err = sjson.DeleteBytes(data, base+"."+kv.path); err != nil {
					return err
				}
				continue
			}
			if data, err = sjson.SetBytes(data, base+"."+kv.path, kv.value); err != nil {
				return err
			}
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(p, pretty.PrettyOptions(data, &pretty.Options{Indent: "  "}), 0644)
}

// SHA256File computes the SHA256 checksum of a file.
func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

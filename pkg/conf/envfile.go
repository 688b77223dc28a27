package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Env file keys the daemons read their secrets from.
const (
	EnvToken       = "TOKEN"
	EnvRPCUser     = "RPC_USER"
	EnvRPCPassword = "RPC_PASSWORD"
)

// ReadEnv parses a KEY=value env file. A missing file is an empty map.
func ReadEnv(path string) (map[string]string, error) {
	values := map[string]string{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return values, nil
}

// WriteEnv merges values into the env file at path and writes it with
// owner-only permissions. Keys already present keep their value unless
// overwritten; keys are emitted sorted.
func WriteEnv(path string, values map[string]string) error {
	merged, err := ReadEnv(path)
	if err != nil {
		return err
	}
	for k, v := range values {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, merged[k])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0600)
}

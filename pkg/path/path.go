package path

import (
	"os"
	"path/filepath"
)

// InstallDir returns the directory daemon executables are installed into.
// Priority: SV2UP_BIN > SV2UP_HOME/bin > ~/.local/bin
func InstallDir() string {
	if p := os.Getenv("SV2UP_BIN"); p != "" {
		return p
	}
	if p := os.Getenv("SV2UP_HOME"); p != "" {
		return filepath.Join(p, "bin")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "bin")
	}
	return ""
}

// ConfigDir returns the directory sv2up keeps its own state in.
// Priority: SV2UP_CONFIG > XDG_CONFIG_HOME/sv2up > ~/.config/sv2up
func ConfigDir() string {
	if p := os.Getenv("SV2UP_CONFIG"); p != "" {
		return p
	}
	if p := os.Getenv("XDG_CONFIG_HOME"); p != "" {
		return filepath.Join(p, "sv2up")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "sv2up")
	}
	return ""
}

// DaemonDir returns the directory daemon configuration is written to.
// Priority: SV2UP_DAEMON_DIR > ~/.sv2
func DaemonDir() string {
	if p := os.Getenv("SV2UP_DAEMON_DIR"); p != "" {
		return p
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".sv2")
	}
	return ""
}

// DefaultConfigFile returns the path of sv2.yaml inside the config dir.
func DefaultConfigFile() string {
	dir := ConfigDir()
	if dir == "" {
		return "sv2.yaml"
	}
	return filepath.Join(dir, "sv2.yaml")
}

// FindConfigFile returns the config file to load: the explicit path when
// given, otherwise the default location. A missing default is not an error,
// the caller starts from an empty config.
func FindConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}
	p := DefaultConfigFile()
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}
	return "", nil
}

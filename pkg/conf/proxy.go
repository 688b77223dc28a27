package conf

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultPool is the pool endpoint the proxy connects to unless
	// overridden.
	DefaultPool = "pool.dmnd.work:2000"
	// DefaultTP is where the proxy finds the local template provider.
	DefaultTP = "127.0.0.1:8442"
)

// Proxy is the demand-cli configuration file.
type Proxy struct {
	Pool     string `toml:"pool_address"`
	TP       string `toml:"tp_address"`
	LogLevel string `toml:"log_level,omitempty"`
}

// DefaultProxy returns proxy settings pointing at the default pool and
// the local template provider.
func DefaultProxy() *Proxy {
	return &Proxy{
		Pool:     DefaultPool,
		TP:       DefaultTP,
		LogLevel: "info",
	}
}

// WriteProxy renders the proxy TOML config into path.
func WriteProxy(path string, p *Proxy) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(p)
}

// ReadProxy loads an existing proxy config, or nil when none exists.
func ReadProxy(path string) (*Proxy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var p Proxy
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

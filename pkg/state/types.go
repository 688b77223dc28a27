// Package state provides the sv2.yaml user configuration.
package state

// Config is the top-level sv2.yaml structure.
type Config struct {
	Network string     `yaml:"network,omitempty"`
	Daemons DaemonList `yaml:"daemons"`
}

// MarshalYAML implements the yaml.Marshaler interface for Config
func (c *Config) MarshalYAML() (interface{}, error) {
	daemons, err := c.Daemons.MarshalYAML()
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{
		"daemons": daemons,
	}
	if c.Network != "" {
		out["network"] = c.Network
	}
	return out, nil
}

// DaemonSettings is the per-daemon block of sv2.yaml. All fields are
// optional; an empty block just enables the daemon.
type DaemonSettings struct {
	Name    string `yaml:"-"`
	Variant string `yaml:"variant,omitempty"`
	Version string `yaml:"version,omitempty"`
	Repo    string `yaml:"repo,omitempty"`
}

// DaemonList is keyed by daemon name in YAML but kept as a list so
// entry order is stable in code.
type DaemonList []*DaemonSettings

func (list *DaemonList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw map[string]*DaemonSettings
	if err := unmarshal(&raw); err != nil {
		return err
	}
	var data []*DaemonSettings
	for name, d := range raw {
		if d == nil {
			d = &DaemonSettings{}
		}
		d.Name = name
		data = append(data, d)
	}
	*list = data
	return nil
}

func (list *DaemonList) MarshalYAML() (interface{}, error) {
	result := make(map[string]interface{})
	for _, d := range *list {
		if d.Name == "" {
			continue
		}
		config := make(map[string]string)
		if d.Variant != "" {
			config["variant"] = d.Variant
		}
		if d.Version != "" {
			config["version"] = d.Version
		}
		if d.Repo != "" {
			config["repo"] = d.Repo
		}
		result[d.Name] = config
	}
	return result, nil
}

// Get returns the settings for a named daemon, or nil.
func (list *DaemonList) Get(name string) *DaemonSettings {
	for _, d := range *list {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Ensure returns the settings for a named daemon, appending an empty
// block when none exists yet.
func (c *Config) Ensure(name string) *DaemonSettings {
	if d := c.Daemons.Get(name); d != nil {
		return d
	}
	d := &DaemonSettings{Name: name}
	c.Daemons = append(c.Daemons, d)
	return d
}

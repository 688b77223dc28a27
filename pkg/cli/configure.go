package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fentas/goodies/templates"
	"github.com/spf13/cobra"

	"github.com/sv2tools/sv2up/pkg/conf"
	"github.com/sv2tools/sv2up/pkg/daemon"
	"github.com/sv2tools/sv2up/pkg/path"
	"github.com/sv2tools/sv2up/pkg/state"
)

// ConfigureOptions holds options for the configure command
type ConfigureOptions struct {
	*SharedOptions
	Network string // bitcoin network, overrides sv2.yaml
	Pool    string // pool endpoint for the proxy
	Token   string // pool token, skips the prompt
	RPCUser string // rpc username for the node

	network conf.Network
	targets []*daemon.Daemon
}

// NewConfigureCmd creates the configure subcommand
func NewConfigureCmd(shared *SharedOptions) *cobra.Command {
	o := &ConfigureOptions{
		SharedOptions: shared,
	}

	cmd := &cobra.Command{
		Use:     "configure [daemon...]",
		Aliases: []string{"conf"},
		Short:   "Write daemon configuration files",
		Long:    "Writes bitcoin.conf for the template provider, the proxy's TOML and the shared secrets env file. Existing secrets are kept unless overridden.",
		Example: templates.Examples(`
			# Configure both daemons, prompting for missing secrets
			sv2up configure

			# Signet node
			sv2up configure sv2-tp --network signet

			# Scripted, no prompts
			sv2up configure --token "$DMND_TOKEN" --yes
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(args); err != nil {
				return err
			}
			return o.Run()
		},
	}

	cmd.Flags().StringVar(&o.Network, "network", "", "Bitcoin network: mainnet, testnet4, signet or regtest")
	cmd.Flags().StringVar(&o.Pool, "pool", "", "Pool endpoint the proxy connects to")
	cmd.Flags().StringVar(&o.Token, "token", "", "Pool token (otherwise prompted)")
	cmd.Flags().StringVar(&o.RPCUser, "rpc-user", "", "RPC username written to bitcoin.conf")

	return cmd
}

// Complete sets up the configure operation
func (o *ConfigureOptions) Complete(args []string) error {
	var err error
	o.targets, err = o.GetDaemons(args)
	if err != nil {
		return err
	}

	// Flag wins over sv2.yaml, sv2.yaml over mainnet.
	name := o.Network
	if name == "" && o.Config != nil {
		name = o.Config.Network
	}
	o.network, err = conf.ParseNetwork(name)
	return err
}

// Run executes the configure operation
func (o *ConfigureOptions) Run() error {
	dir := path.DaemonDir()
	envPath := filepath.Join(dir, "sv2.env")

	secrets, err := o.collectSecrets(envPath)
	if err != nil {
		return err
	}
	if len(secrets) > 0 {
		if err := conf.WriteEnv(envPath, secrets); err != nil {
			return err
		}
		o.report(envPath)
	}

	merged, err := conf.ReadEnv(envPath)
	if err != nil {
		return err
	}

	for _, d := range o.targets {
		switch d.Name {
		case "sv2-tp":
			if err := o.writeNode(dir, merged); err != nil {
				return err
			}
		case "demand-cli":
			if err := o.writeProxy(dir); err != nil {
				return err
			}
		}
	}

	return o.saveNetwork()
}

// collectSecrets gathers secrets from flags and, for keys still absent
// from the env file, from the decision provider. Empty answers skip.
func (o *ConfigureOptions) collectSecrets(envPath string) (map[string]string, error) {
	existing, err := conf.ReadEnv(envPath)
	if err != nil {
		return nil, err
	}
	values := map[string]string{}

	if o.has("demand-cli") {
		token := o.Token
		if token == "" && existing[conf.EnvToken] == "" {
			if token, err = o.Decide.Secret(conf.EnvToken); err != nil {
				return nil, err
			}
		}
		if token != "" {
			values[conf.EnvToken] = token
		}
	}

	if o.has("sv2-tp") {
		if o.RPCUser != "" {
			values[conf.EnvRPCUser] = o.RPCUser
		}
		if existing[conf.EnvRPCPassword] == "" {
			pass, err := o.Decide.Secret(conf.EnvRPCPassword)
			if err != nil {
				return nil, err
			}
			if pass != "" {
				values[conf.EnvRPCPassword] = pass
				if values[conf.EnvRPCUser] == "" && existing[conf.EnvRPCUser] == "" {
					values[conf.EnvRPCUser] = "sv2"
				}
			}
		}
	}

	return values, nil
}

// writeNode renders bitcoin.conf for the template provider.
func (o *ConfigureOptions) writeNode(dir string, env map[string]string) error {
	node := conf.DefaultNode(o.network, filepath.Join(dir, "bitcoin"))
	node.RPCUser = env[conf.EnvRPCUser]
	node.RPCPassword = env[conf.EnvRPCPassword]

	target := filepath.Join(dir, "bitcoin.conf")
	if err := conf.WriteNode(target, node); err != nil {
		return err
	}
	o.report(target)
	return nil
}

// writeProxy renders the proxy's TOML, keeping a previously configured
// pool endpoint unless --pool overrides it.
func (o *ConfigureOptions) writeProxy(dir string) error {
	target := filepath.Join(dir, "demand-cli.toml")

	proxy := conf.DefaultProxy()
	if existing, err := conf.ReadProxy(target); err != nil {
		return err
	} else if existing != nil {
		proxy = existing
	}
	if o.Pool != "" {
		proxy.Pool = o.Pool
	}
	proxy.TP = fmt.Sprintf("127.0.0.1:%d", conf.DefaultNode(o.network, "").SV2Port)

	if err := conf.WriteProxy(target, proxy); err != nil {
		return err
	}
	o.report(target)
	return nil
}

// saveNetwork persists an explicit --network choice to sv2.yaml.
func (o *ConfigureOptions) saveNetwork() error {
	if o.Network == "" {
		return nil
	}
	cfg := o.Config
	if cfg == nil {
		cfg = &state.Config{}
		o.Config = cfg
	}
	if cfg.Network == string(o.network) {
		return nil
	}
	cfg.Network = string(o.network)
	return state.Save(cfg, o.ConfigFile())
}

func (o *ConfigureOptions) has(name string) bool {
	for _, d := range o.targets {
		if d.Name == name {
			return true
		}
	}
	return false
}

func (o *ConfigureOptions) report(path string) {
	if !o.Quiet {
		fmt.Fprintf(o.IO.Out, "Wrote %s\n", path)
	}
}

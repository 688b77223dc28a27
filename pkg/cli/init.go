package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fentas/goodies/templates"
	"github.com/spf13/cobra"

	"github.com/sv2tools/sv2up/pkg/path"
	"github.com/sv2tools/sv2up/pkg/state"
)

// InitOptions holds options for the init command
type InitOptions struct {
	*SharedOptions
}

// NewInitCmd creates the init subcommand
func NewInitCmd(shared *SharedOptions) *cobra.Command {
	o := &InitOptions{
		SharedOptions: shared,
	}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new sv2.yaml config",
		Long:  "Creates the sv2.yaml configuration file and the directories the daemons run from (ENV variables have precedence)",
		Example: templates.Examples(`
			# Create ~/.sv2/sv2.yaml and the runtime directories
			sv2up init

			# Create with custom path
			sv2up init --config ./custom/sv2.yaml
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run()
		},
	}

	return cmd
}

// Run executes the init operation
func (o *InitOptions) Run() error {
	configPath := o.ConfigPath
	if configPath == "" {
		configPath = path.DefaultConfigFile()
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		if !o.Force {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", configPath)
		}
	}

	if err := state.CreateDefault(configPath); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	if !o.Quiet {
		fmt.Fprintf(o.IO.Out, "Created configuration file: %s\n", configPath)
	}

	return o.createRuntimeDirs()
}

// createRuntimeDirs creates the daemon and install directories plus an
// empty secrets file so later commands never race on first use.
func (o *InitOptions) createRuntimeDirs() error {
	for _, dir := range []string{path.DaemonDir(), path.InstallDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	if err := o.createEnvFile(); err != nil {
		return err
	}

	o.printPathHint()
	return nil
}

// createEnvFile writes the secrets skeleton. Existing files are left
// alone regardless of --force, they may hold real credentials.
func (o *InitOptions) createEnvFile() error {
	envPath := filepath.Join(path.DaemonDir(), "sv2.env")
	if _, err := os.Stat(envPath); err == nil {
		return nil
	}

	skeleton := `# Secrets read by the daemons at startup.
# TOKEN=            DMND pool account token (demand-cli)
# RPC_USER=         bitcoind RPC user (sv2-tp)
# RPC_PASSWORD=     bitcoind RPC password (sv2-tp)
`

	if err := os.WriteFile(envPath, []byte(skeleton), 0600); err != nil {
		return err
	}

	if !o.Quiet {
		fmt.Fprintf(o.IO.Out, "Created %s\n", envPath)
	}
	return nil
}

// printPathHint nudges the user when the install dir is not on PATH.
func (o *InitOptions) printPathHint() {
	if o.Quiet {
		return
	}
	installDir := path.InstallDir()
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == installDir {
			return
		}
	}
	fmt.Fprintf(o.IO.Out, "Add %s to your PATH to run the installed daemons\n", installDir)
}

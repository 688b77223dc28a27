package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fentas/goodies/templates"
	jmespath "github.com/jmespath-community/go-jmespath/pkg/api"
	"github.com/spf13/cobra"

	"github.com/sv2tools/sv2up/pkg/daemon"
	"github.com/sv2tools/sv2up/pkg/feed"
)

// ResolveOptions holds options for the resolve command
type ResolveOptions struct {
	*SharedOptions
	Variant string
	Query   string

	variant feed.Variant
	args    []string
}

// Resolution is what resolve reports per daemon: the selected release
// and the artifact it maps to on this host, without installing.
type Resolution struct {
	Name     string `json:"name"`
	Repo     string `json:"repo"`
	Version  string `json:"version"`
	Source   string `json:"source"`
	Standard bool   `json:"standard"`
	IPC      bool   `json:"ipc"`
	Variant  string `json:"variant,omitempty"`
	Tag      string `json:"tag"`
	File     string `json:"file,omitempty"`
	URL      string `json:"url,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// NewResolveCmd creates the resolve subcommand
func NewResolveCmd(shared *SharedOptions) *cobra.Command {
	o := &ResolveOptions{
		SharedOptions: shared,
	}

	cmd := &cobra.Command{
		Use:     "resolve [daemon...]",
		Aliases: []string{"r"},
		Short:   "Resolve releases without installing",
		Long:    "Shows which release each daemon would install and the artifact it maps to on this host.",
		Example: templates.Examples(`
			# Resolve everything
			sv2up resolve

			# Resolve the ipc build
			sv2up resolve sv2-tp --variant ipc

			# Machine readable
			sv2up resolve --output json

			# Just the URLs
			sv2up resolve --query "[].url"
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(args); err != nil {
				return err
			}
			return o.Run(cmd)
		},
	}

	cmd.Flags().StringVar(&o.Variant, "variant", "", "Build of sv2-tp to resolve (standard or ipc)")
	cmd.Flags().StringVar(&o.Query, "query", "", "JMESPath expression to filter the output")

	return cmd
}

// Complete sets up the resolve operation
func (o *ResolveOptions) Complete(args []string) error {
	var err error
	if o.Variant != "" {
		if o.variant, err = feed.ParseVariant(o.Variant); err != nil {
			return err
		}
	}
	for _, name := range args {
		if _, ok := o.GetDaemon(name); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownDaemon, name)
		}
	}
	o.args = args
	return nil
}

// Run executes the resolve operation
func (o *ResolveOptions) Run(cmd *cobra.Command) error {
	daemons, err := o.GetDaemons(o.args)
	if err != nil {
		return err
	}

	var out []*Resolution
	for _, d := range daemons {
		r, err := o.resolveOne(d)
		if err != nil {
			return err
		}
		out = append(out, r)
	}

	if o.Query != "" {
		return o.printQuery(out)
	}
	if cmd.Flags().Changed("output") {
		return o.IO.Print(out)
	}
	o.printHuman(out)
	return nil
}

// resolveOne settles version, variant and artifact for one daemon.
func (o *ResolveOptions) resolveOne(d *daemon.Daemon) (*Resolution, error) {
	sel, err := d.Resolve()
	if sel == nil {
		return nil, fmt.Errorf("%s: %w", d.Name, err)
	}
	r := &Resolution{
		Name:     d.Name,
		Repo:     d.Repo,
		Version:  sel.Version,
		Source:   string(sel.Source),
		Standard: sel.Standard,
		IPC:      sel.IPC,
	}
	if err != nil {
		r.Warning = err.Error()
		o.Warnf("%s: %v (using %s)", d.Name, err, sel.Version)
	}

	d.Version = sel.Version
	if d.Variants {
		variant := o.variant
		if variant == "" {
			variant = d.Variant
		}
		if variant == "" {
			variant = feed.Standard
		}
		if !sel.Has(variant) {
			o.Warnf("%s build of %s %s is not published", variant, d.Name, sel.Version)
		}
		d.Variant = variant
		r.Variant = string(variant)
	}

	if r.Tag, err = d.Tag(); err != nil {
		return nil, err
	}
	if d.FileF != nil {
		if r.File, err = d.FileF(d); err != nil {
			return nil, err
		}
	}
	if r.URL, err = d.ArtifactURL(); err != nil {
		return nil, err
	}
	return r, nil
}

func (o *ResolveOptions) printQuery(out []*Resolution) error {
	raw, err := json.Marshal(out)
	if err != nil {
		return err
	}
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}
	result, err := jmespath.Search(o.Query, data)
	if err != nil {
		return fmt.Errorf("query %q: %w", o.Query, err)
	}
	enc := json.NewEncoder(o.IO.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func (o *ResolveOptions) printHuman(out []*Resolution) {
	for _, r := range out {
		build := ""
		if r.Variant != "" {
			build = "  " + r.Variant
		}
		fmt.Fprintf(o.IO.Out, "%-12s %s (%s)%s\n", r.Name, r.Version, r.Source, build)
		fmt.Fprintf(o.IO.Out, "  tag   %s\n", r.Tag)
		if r.File != "" {
			fmt.Fprintf(o.IO.Out, "  file  %s\n", r.File)
		}
		fmt.Fprintf(o.IO.Out, "  url   %s\n", r.URL)
	}
}

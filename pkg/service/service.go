// Package service registers daemons with the host's user-level service
// manager: systemd user units on Linux, launchd agents on macOS. All
// manager operations shell out to systemctl/launchctl.
package service

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/sv2tools/sv2up/pkg/platform"
)

// labelPrefix namespaces launchd labels.
const labelPrefix = "org.sv2tools."

// Unit describes one daemon to keep running.
type Unit struct {
	Name        string // unit name, e.g. "sv2-tp"
	Description string
	Program     string // absolute path to the executable
	Args        []string
	WorkDir     string
	EnvFile     string            // systemd EnvironmentFile, optional
	Env         map[string]string // launchd EnvironmentVariables, optional
}

// Label returns the launchd label for the unit.
func (u *Unit) Label() string {
	return labelPrefix + u.Name
}

// UnitPath returns where the unit definition lives on the given host.
func UnitPath(host *platform.Host, name string) string {
	if host.Os == platform.OsDarwin {
		return filepath.Join(host.Home, "Library", "LaunchAgents", labelPrefix+name+".plist")
	}
	return filepath.Join(host.Home, ".config", "systemd", "user", name+".service")
}

var systemdTemplate = template.Must(template.New("systemd").Parse(`[Unit]
Description={{.Description}}
After=network-online.target
Wants=network-online.target

[Service]
ExecStart={{.Program}}{{range .Args}} {{.}}{{end}}
{{- if .WorkDir}}
WorkingDirectory={{.WorkDir}}
{{- end}}
{{- if .EnvFile}}
EnvironmentFile=-{{.EnvFile}}
{{- end}}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`))

var plistEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var plistTemplate = template.Must(template.New("plist").Funcs(template.FuncMap{
	"xml": plistEscaper.Replace,
}).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
{{- range .ProgramArguments}}
		<string>{{xml .}}</string>
{{- end}}
	</array>
{{- if .Env}}
	<key>EnvironmentVariables</key>
	<dict>
{{- range $k, $v := .Env}}
		<key>{{xml $k}}</key>
		<string>{{xml $v}}</string>
{{- end}}
	</dict>
{{- end}}
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
{{- if .WorkDir}}
	<key>WorkingDirectory</key>
	<string>{{xml .WorkDir}}</string>
{{- end}}
	<key>StandardOutPath</key>
	<string>{{xml .OutPath}}</string>
	<key>StandardErrorPath</key>
	<string>{{xml .ErrPath}}</string>
</dict>
</plist>
`))

type plistData struct {
	*Unit
	ProgramArguments []string
	OutPath          string
	ErrPath          string
}

// Render produces the unit definition for the host's service manager.
func (u *Unit) Render(host *platform.Host) (string, error) {
	if host.Os == platform.OsDarwin {
		return u.renderPlist(host)
	}
	return u.renderSystemd()
}

func (u *Unit) renderSystemd() (string, error) {
	var b bytes.Buffer
	if err := systemdTemplate.Execute(&b, u); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (u *Unit) renderPlist(host *platform.Host) (string, error) {
	logDir := filepath.Join(host.Home, "Library", "Logs")
	data := plistData{
		Unit:             u,
		ProgramArguments: append([]string{u.Program}, u.Args...),
		OutPath:          filepath.Join(logDir, u.Label()+".log"),
		ErrPath:          filepath.Join(logDir, u.Label()+".err.log"),
	}
	var b bytes.Buffer
	if err := plistTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Register writes the unit definition and, when enable is set, loads it
// into the service manager. It returns the unit file path.
func Register(host *platform.Host, u *Unit, enable bool) (string, error) {
	path := UnitPath(host, u.Name)
	content, err := u.Render(host)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	if !enable {
		return path, nil
	}

	if host.Os == platform.OsDarwin {
		// Unload first so a re-register picks up the new definition.
		_ = run("launchctl", "unload", path)
		if err := run("launchctl", "load", "-w", path); err != nil {
			return path, err
		}
		return path, nil
	}
	if err := run("systemctl", "--user", "daemon-reload"); err != nil {
		return path, err
	}
	if err := run("systemctl", "--user", "enable", "--now", u.Name+".service"); err != nil {
		return path, err
	}
	return path, nil
}

// Unregister stops the unit and removes its definition. Unknown units
// are not an error.
func Unregister(host *platform.Host, name string) error {
	path := UnitPath(host, name)
	if host.Os == platform.OsDarwin {
		_ = run("launchctl", "unload", "-w", path)
	} else {
		_ = run("systemctl", "--user", "disable", "--now", name+".service")
		_ = run("systemctl", "--user", "daemon-reload")
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Active reports whether the unit is currently running.
func Active(host *platform.Host, name string) bool {
	if host.Os == platform.OsDarwin {
		out, err := output("launchctl", "list")
		return err == nil && strings.Contains(out, labelPrefix+name)
	}
	out, err := output("systemctl", "--user", "is-active", name+".service")
	return err == nil && strings.TrimSpace(out) == "active"
}

// run executes a manager command, returning an error that includes stderr.
func run(args ...string) error {
	cmd := exec.Command(args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w\n%s", strings.Join(args, " "), err, stderr.String())
	}
	return nil
}

// output executes a manager command and returns stdout as a string.
func output(args ...string) (string, error) {
	cmd := exec.Command(args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w\n%s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}

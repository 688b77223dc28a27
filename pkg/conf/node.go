// Package conf writes the configuration files the installed daemons
// run with: bitcoin.conf for the node, a TOML file for the proxy and
// an env file for secrets.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Network is the chain the node runs on.
type Network string

const (
	Mainnet  Network = "mainnet"
	Testnet4 Network = "testnet4"
	Signet   Network = "signet"
	Regtest  Network = "regtest"
)

// ParseNetwork maps config spellings to a Network. Empty means mainnet.
func ParseNetwork(s string) (Network, error) {
	switch s {
	case "", "mainnet", "main":
		return Mainnet, nil
	case "testnet4":
		return Testnet4, nil
	case "signet":
		return Signet, nil
	case "regtest":
		return Regtest, nil
	}
	return Mainnet, fmt.Errorf("unknown network %q", s)
}

// Node is everything bitcoin.conf needs for a template-provider node.
type Node struct {
	Network     Network
	DataDir     string
	RPCUser     string
	RPCPassword string
	SV2Port     int
	SV2Bind     string
	SV2Interval int
	SV2FeeDelta int
}

// DefaultNode returns node settings with the template provider bound
// locally on the conventional port.
func DefaultNode(network Network, dataDir string) *Node {
	return &Node{
		Network:     network,
		DataDir:     dataDir,
		SV2Port:     8442,
		SV2Bind:     "127.0.0.1",
		SV2Interval: 30,
		SV2FeeDelta: 1000,
	}
}

// Section returns the bitcoin.conf section header for the network, or
// empty for mainnet where options stay top-level.
func (n Network) Section() string {
	if n == Mainnet {
		return ""
	}
	return string(n)
}

var nodeTemplate = template.Must(template.New("bitcoin.conf").Parse(
	`# written by sv2up; edits are overwritten on the next configure run
{{- if .Chain}}
{{.Chain}}=1
{{- end}}
server=1
daemon=0
datadir={{.DataDir}}
{{- if .RPCUser}}
rpcuser={{.RPCUser}}
rpcpassword={{.RPCPassword}}
{{- end}}
{{- if .Section}}

[{{.Section}}]
{{- end}}
sv2=1
sv2port={{.SV2Port}}
sv2bind={{.SV2Bind}}
sv2interval={{.SV2Interval}}
sv2feedelta={{.SV2FeeDelta}}
`))

// Render returns the bitcoin.conf content for the node.
func (n *Node) Render() (string, error) {
	data := struct {
		*Node
		Chain   string
		Section string
	}{Node: n, Section: n.Network.Section()}
	if n.Network != Mainnet {
		data.Chain = string(n.Network)
	}
	var b strings.Builder
	if err := nodeTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteNode renders bitcoin.conf into path and creates the data
// directory alongside it.
func WriteNode(path string, n *Node) error {
	content, err := n.Render()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	if n.DataDir != "" {
		if err := os.MkdirAll(n.DataDir, 0700); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0644)
}

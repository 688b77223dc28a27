package cli

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sv2tools/sv2up/pkg/conf"
	"github.com/sv2tools/sv2up/pkg/prompt"
	"github.com/sv2tools/sv2up/pkg/state"
	"github.com/sv2tools/sv2up/test/testutil"
)

func TestConfigureOptions_CompleteNetwork(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		config  string
		want    conf.Network
		wantErr bool
	}{
		{
			name: "defaults to mainnet",
			want: conf.Mainnet,
		},
		{
			name:   "config network",
			config: "signet",
			want:   conf.Signet,
		},
		{
			name:   "flag beats config",
			flag:   "testnet4",
			config: "signet",
			want:   conf.Testnet4,
		},
		{
			name:    "unknown network",
			flag:    "lightning",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shared := NewSharedOptions(testutil.MockIO(), testDaemons())
			if tt.config != "" {
				shared.Config = &state.Config{Network: tt.config}
			}
			o := &ConfigureOptions{SharedOptions: shared, Network: tt.flag}

			err := o.Complete(nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Complete() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Complete() unexpected error = %v", err)
			}
			if o.network != tt.want {
				t.Errorf("Complete() network = %q, want %q", o.network, tt.want)
			}
		})
	}
}

func TestConfigureOptions_Run(t *testing.T) {
	home := testutil.Home(t)
	dir := filepath.Join(home, "sv2")

	shared := NewSharedOptions(testutil.MockIO(), testDaemons())
	shared.Quiet = true
	shared.Decide = &prompt.Static{Secrets: map[string]string{
		conf.EnvToken:       "tok-123",
		conf.EnvRPCPassword: "hunter2",
	}}

	o := &ConfigureOptions{SharedOptions: shared}
	if err := o.Complete(nil); err != nil {
		t.Fatalf("Complete() unexpected error = %v", err)
	}
	if err := o.Run(); err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}

	// Secrets land in the env file, with a default rpc user filled in
	envPath := filepath.Join(dir, "sv2.env")
	testutil.AssertFileContains(t, envPath, "TOKEN=tok-123")
	testutil.AssertFileContains(t, envPath, "RPC_PASSWORD=hunter2")
	testutil.AssertFileContains(t, envPath, "RPC_USER=sv2")
	if runtime.GOOS != "windows" {
		info, err := os.Stat(envPath)
		if err != nil {
			t.Fatalf("stat env file: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("env file mode = %o, want 0600", info.Mode().Perm())
		}
	}

	// The node config carries the credentials and the sv2 listener
	nodePath := filepath.Join(dir, "bitcoin.conf")
	testutil.AssertFileContains(t, nodePath, "rpcuser=sv2")
	testutil.AssertFileContains(t, nodePath, "rpcpassword=hunter2")
	testutil.AssertFileContains(t, nodePath, "sv2=1")
	testutil.AssertFileContains(t, nodePath, "sv2port=8442")

	// The proxy config points at the pool and the local node
	proxyPath := filepath.Join(dir, "demand-cli.toml")
	testutil.AssertFileContains(t, proxyPath, conf.DefaultPool)
	testutil.AssertFileContains(t, proxyPath, "127.0.0.1:8442")
}

func TestConfigureOptions_RunKeepsExistingSecrets(t *testing.T) {
	home := testutil.Home(t)
	dir := filepath.Join(home, "sv2")

	if err := conf.WriteEnv(filepath.Join(dir, "sv2.env"), map[string]string{
		conf.EnvToken:       "old-token",
		conf.EnvRPCUser:     "miner",
		conf.EnvRPCPassword: "secret",
	}); err != nil {
		t.Fatalf("seeding env file: %v", err)
	}

	shared := NewSharedOptions(testutil.MockIO(), testDaemons())
	shared.Quiet = true
	shared.Decide = &prompt.Static{Secrets: map[string]string{
		conf.EnvToken:       "should-not-be-asked",
		conf.EnvRPCPassword: "should-not-be-asked",
	}}

	o := &ConfigureOptions{SharedOptions: shared}
	if err := o.Complete(nil); err != nil {
		t.Fatalf("Complete() unexpected error = %v", err)
	}
	if err := o.Run(); err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}

	envPath := filepath.Join(dir, "sv2.env")
	testutil.AssertFileContains(t, envPath, "TOKEN=old-token")
	testutil.AssertFileContains(t, envPath, "RPC_USER=miner")
	testutil.AssertFileContains(t, envPath, "RPC_PASSWORD=secret")

	testutil.AssertFileContains(t, filepath.Join(dir, "bitcoin.conf"), "rpcuser=miner")
}

func TestConfigureOptions_RunTokenFlag(t *testing.T) {
	home := testutil.Home(t)
	dir := filepath.Join(home, "sv2")

	shared := NewSharedOptions(testutil.MockIO(), testDaemons())
	shared.Quiet = true
	shared.Decide = &prompt.Static{}

	o := &ConfigureOptions{SharedOptions: shared, Token: "flag-token", Pool: "pool.example:2000"}
	if err := o.Complete([]string{"demand-cli"}); err != nil {
		t.Fatalf("Complete() unexpected error = %v", err)
	}
	if err := o.Run(); err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}

	testutil.AssertFileContains(t, filepath.Join(dir, "sv2.env"), "TOKEN=flag-token")

	proxyPath := filepath.Join(dir, "demand-cli.toml")
	testutil.AssertFileContains(t, proxyPath, "pool.example:2000")
	// Only the proxy was targeted
	testutil.AssertFileNotExists(t, filepath.Join(dir, "bitcoin.conf"))
}

func TestConfigureOptions_NetworkSections(t *testing.T) {
	home := testutil.Home(t)
	dir := filepath.Join(home, "sv2")

	shared := NewSharedOptions(testutil.MockIO(), testDaemons())
	shared.Quiet = true
	shared.Decide = &prompt.Static{}

	o := &ConfigureOptions{SharedOptions: shared, Network: "signet"}
	if err := o.Complete([]string{"sv2-tp"}); err != nil {
		t.Fatalf("Complete() unexpected error = %v", err)
	}
	if err := o.Run(); err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}

	nodePath := filepath.Join(dir, "bitcoin.conf")
	testutil.AssertFileContains(t, nodePath, "signet=1")
	testutil.AssertFileContains(t, nodePath, "[signet]")

	// The explicit network choice is persisted
	testutil.AssertFileContains(t, o.ConfigFile(), "signet")
}

func TestNewConfigureCmd(t *testing.T) {
	shared := NewSharedOptions(testutil.MockIO(), testDaemons())

	cmd := NewConfigureCmd(shared)

	if cmd.Use != "configure [daemon...]" {
		t.Errorf("NewConfigureCmd() Use = %v, want configure [daemon...]", cmd.Use)
	}
	if len(cmd.Aliases) != 1 || cmd.Aliases[0] != "conf" {
		t.Errorf("NewConfigureCmd() Aliases = %v, want [conf]", cmd.Aliases)
	}
	for _, flag := range []string{"network", "pool", "token", "rpc-user"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("NewConfigureCmd() missing --%s flag", flag)
		}
	}
}

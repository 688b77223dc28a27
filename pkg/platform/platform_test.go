package platform

import (
	"errors"
	"testing"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		osName, archName string
		wantOs           Os
		wantArch         Arch
		wantAbi          string
		wantWarn         bool
	}{
		{"linux", "x86_64", OsLinux, ArchX8664, "gnu", false},
		{"linux", "amd64", OsLinux, ArchX8664, "gnu", false},
		{"linux", "aarch64", OsLinux, ArchAarch64, "gnu", false},
		{"linux", "arm64", OsLinux, ArchAarch64, "gnu", false},
		{"linux", "armv7l", OsLinux, ArchArm, "gnueabihf", false},
		{"linux", "armv6l", OsLinux, ArchArm, "gnueabihf", false},
		{"darwin", "arm64", OsDarwin, ArchAarch64, "", false},
		{"macos", "x86_64", OsDarwin, ArchX8664, "", false},
		{"linux", "riscv64", OsLinux, ArchX8664, "gnu", true},
	}

	for _, tt := range tests {
		t.Run(tt.osName+"/"+tt.archName, func(t *testing.T) {
			h, err := Identify(tt.osName, tt.archName)
			if err != nil {
				t.Fatalf("Identify(%q, %q) error: %v", tt.osName, tt.archName, err)
			}
			if h.Os != tt.wantOs {
				t.Errorf("Os = %q, want %q", h.Os, tt.wantOs)
			}
			if h.Arch != tt.wantArch {
				t.Errorf("Arch = %q, want %q", h.Arch, tt.wantArch)
			}
			if h.Abi != tt.wantAbi {
				t.Errorf("Abi = %q, want %q", h.Abi, tt.wantAbi)
			}
			if (h.Warning != "") != tt.wantWarn {
				t.Errorf("Warning = %q, want warning: %v", h.Warning, tt.wantWarn)
			}
		})
	}
}

func TestIdentifyUnsupportedOs(t *testing.T) {
	for _, osName := range []string{"windows", "freebsd", "plan9"} {
		_, err := Identify(osName, "x86_64")
		if err == nil {
			t.Errorf("Identify(%q) expected error", osName)
			continue
		}
		var perr *Error
		if !errors.As(err, &perr) {
			t.Errorf("Identify(%q) error type = %T, want *Error", osName, err)
		}
	}
}

func TestTriplet(t *testing.T) {
	tests := []struct {
		osName, archName string
		want             string
	}{
		{"linux", "x86_64", "x86_64-linux-gnu"},
		{"linux", "aarch64", "aarch64-linux-gnu"},
		{"linux", "armv7l", "arm-linux-gnueabihf"},
		{"darwin", "x86_64", "x86_64-apple-darwin"},
		{"darwin", "arm64", "aarch64-apple-darwin"},
	}

	for _, tt := range tests {
		h, err := Identify(tt.osName, tt.archName)
		if err != nil {
			t.Fatalf("Identify(%q, %q) error: %v", tt.osName, tt.archName, err)
		}
		if got := h.Triplet(); got != tt.want {
			t.Errorf("Triplet(%s/%s) = %q, want %q", tt.osName, tt.archName, got, tt.want)
		}
	}
}

func TestCurrent(t *testing.T) {
	h, err := Current()
	if err != nil {
		t.Skipf("Current() not supported here: %v", err)
	}
	if h.Home == "" {
		t.Error("Current() returned empty home dir")
	}
	if h.Bin == "" {
		t.Error("Current() returned empty install dir")
	}
}

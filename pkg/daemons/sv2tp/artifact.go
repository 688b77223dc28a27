package sv2tp

import (
	"fmt"

	"github.com/sv2tools/sv2up/pkg/feed"
	"github.com/sv2tools/sv2up/pkg/platform"
)

const (
	// DefaultRepo is where the patched node releases are published.
	DefaultRepo = "Sjors/bitcoin"

	filePrefix = "bitcoin-sv2-tp"
)

// ArtifactFile returns the release tarball name for a version, variant
// and host, e.g. bitcoin-sv2-tp-0.1.17-ipc-x86_64-linux-gnu.tar.gz.
func ArtifactFile(version string, variant feed.Variant, host *platform.Host) string {
	infix := ""
	if variant == feed.IPC {
		infix = "-ipc"
	}
	return fmt.Sprintf("%s-%s%s-%s.tar.gz", filePrefix, version, infix, host.Triplet())
}

// ArtifactURL returns the full download URL on a host base, pure and
// network-free.
func ArtifactURL(base, repo, version string, variant feed.Variant, host *platform.Host) string {
	return fmt.Sprintf("%s/%s/releases/download/%s/%s",
		base, repo, feed.TagName(version, variant), ArtifactFile(version, variant, host))
}

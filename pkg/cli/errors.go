package cli

import "errors"

var (
	// ErrNoInstallPath indicates that no suitable path to install daemons was found
	ErrNoInstallPath = errors.New("could not find a suitable path to install daemons")

	// ErrUnknownDaemon indicates that the named daemon is not managed by this tool
	ErrUnknownDaemon = errors.New("unknown daemon")

	// ErrUnsupportedHost indicates the host platform cannot run the daemons
	ErrUnsupportedHost = errors.New("unsupported host platform")
)

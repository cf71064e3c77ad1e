package logging2

import "errors"

var (
	// ErrNotConfigured is returned by GetLogger when no configuration is
	// active and automatic bootstrap is disabled.
	ErrNotConfigured = errors.New("coordinator not configured")

	// ErrShutdown is returned by configuration operations after Shutdown.
	ErrShutdown = errors.New("coordinator is shut down")
)

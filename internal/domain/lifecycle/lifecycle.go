// Package lifecycle defines shared constants for application lifecycle
// management, used by fx hooks and graceful shutdown paths.
package lifecycle

import "time"

// DefaultTimeout is the upper bound for startup and shutdown hooks.
const DefaultTimeout = 30 * time.Second

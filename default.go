package logging2

import "sync"

var (
	defaultMu    sync.RWMutex
	defaultCoord *Coordinator
)

// SetDefault installs a process-wide coordinator for code that cannot carry
// one explicitly. Nothing installs a default implicitly.
func SetDefault(c *Coordinator) {
	defaultMu.Lock()
	defaultCoord = c
	defaultMu.Unlock()
}

// Default returns the coordinator installed by SetDefault, or nil.
func Default() *Coordinator {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultCoord
}

package symtab

import (
	"sync"

	"github.com/ianlancetaylor/demangle"
)

// demangleCache memoizes demangled names; the TUI redraws the same
// names on every frame.
type demangleCache struct {
	mu    sync.RWMutex
	names map[string]string
}

var cache = &demangleCache{names: make(map[string]string)}

// CachedDemangle performs demangling with caching support.
func CachedDemangle(mangled string) string {
	cache.mu.RLock()
	if cached, ok := cache.names[mangled]; ok {
		cache.mu.RUnlock()
		return cached
	}
	cache.mu.RUnlock()

	demangled := demangle.Filter(mangled, demangle.NoClones)

	cache.mu.Lock()
	cache.names[mangled] = demangled
	cache.mu.Unlock()
	return demangled
}

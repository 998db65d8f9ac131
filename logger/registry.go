package logger

import "sync"

var registry = struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}{loggers: make(map[string]*Logger)}

// Register stores a logger under a component name, overriding the
// component-tagged global logger that Get would otherwise return.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
}

// Get returns the logger registered under name, or the global logger tagged
// with that component name.
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// Named tags log with a component name. A nil log resolves through Get, so
// constructors accept nil.
func Named(log *Logger, name string) *Logger {
	if log == nil {
		return Get(name)
	}
	return log.WithComponent(name)
}

package logger

import "sync"

var components sync.Map // component name -> *Logger

// Register binds l to a component name, replacing any earlier binding.
// Pipeline stages built without an explicit logger look themselves up here.
func Register(component string, l *Logger) {
	components.Store(component, l)
}

// Unregister removes the binding for component.
func Unregister(component string) {
	components.Delete(component)
}

// Get returns the logger registered for component. Unregistered components get
// the global logger tagged with the component name; that logger is not cached,
// so a later SetGlobalLogger is picked up.
func Get(component string) *Logger {
	if l, ok := components.Load(component); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(component)
}

package core

import (
	"reflect"
	"sync"
)

// Constructor builds a value of a registered interface type around a getter.
type Constructor func(node Getter) any

// ConstructorFor returns the constructor registered for typ.
func ConstructorFor(typ reflect.Type) (Constructor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ctor, ok := registry[typ]

	return ctor, ok
}

// RegisterConstructor records ctor as the way to materialize typ. Registering a type
// again replaces the earlier constructor.
func RegisterConstructor(typ reflect.Type, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[typ] = ctor
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Package-level registry is filled from generated init functions
	registry = make(map[reflect.Type]Constructor)
	//nolint:gochecknoglobals // Mutex for registry
	registryMu sync.RWMutex
)

package core

import (
	"fmt"
	"reflect"
)

// Reserved path segments.
const (
	// ApplySegment marks apply-style invocation: the node's parent path is invoked
	// with the second call argument as its argument list. It is lowercase so that
	// exported members named Apply stay ordinary path segments.
	ApplySegment = "apply"
	// AsSegment marks a literal override on the configuration surface.
	AsSegment = "As"
)

// Callback receives the invocation reported by a terminal call on a node.
type Callback func(Invocation) any

// Getter is anything that exposes named children, such as proxy nodes and roots.
type Getter interface {
	Get(name string) any
}

// Invocation is a path and the arguments a node was called with.
type Invocation struct {
	Path []string
	Args []any
}

// Key returns the invocation's path key.
func (i Invocation) Key() string {
	return JoinPath(i.Path)
}

// Node is the value reached by following a path. Reading a child yields a deeper
// node unless an override is found at that path. Calling a node is its only
// terminal operation.
type Node struct {
	callback  Callback
	path      []string
	overrides *Store
}

// NewNode returns the node for path. overrides may be nil.
func NewNode(callback Callback, path []string, overrides *Store) *Node {
	return &Node{
		callback:  callback,
		path:      clonePath(path),
		overrides: overrides,
	}
}

// Apply invokes the node's path with args as its argument list. It is the method
// form of n.Get(ApplySegment).Call(this, args).
func (n *Node) Apply(this any, args []any) any {
	return n.child(ApplySegment).Call(this, args)
}

// Call reports the node's path and args to the callback and returns its result.
// When the last segment is ApplySegment that segment is dropped and the second
// argument, if any, is spread as the argument list.
func (n *Node) Call(args ...any) any {
	path := n.path

	if len(path) > 0 && path[len(path)-1] == ApplySegment {
		path = path[:len(path)-1]

		if len(args) >= 2 { //nolint:mnd // apply-style calls take (this, args)
			args = spread(args[1])
		} else {
			args = nil
		}
	}

	return n.callback(Invocation{Path: clonePath(path), Args: args})
}

// Get returns the override found at the child path, or the child node.
func (n *Node) Get(name string) any {
	if isSentinel(name) {
		return nil
	}

	if n.overrides != nil {
		key := JoinPath(append(clonePath(n.path), name))

		if value, ok := n.overrides.Lookup(key); ok && value != nil {
			return value
		}
	}

	return n.child(name)
}

// Path returns a copy of the node's path.
func (n *Node) Path() []string {
	return clonePath(n.path)
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	return fmt.Sprintf("deepmock.Node(%s)", JoinPath(n.path))
}

func (n *Node) child(name string) *Node {
	return NewNode(n.callback, append(clonePath(n.path), name), n.overrides)
}

// Root is the single-level proxy at the top of a tree. Reading a name returns the
// exact top-level override or whatever resolve produces for it.
type Root struct {
	resolve   func(name string) any
	overrides *Store
}

// NewRoot returns a root. overrides may be nil.
func NewRoot(resolve func(name string) any, overrides *Store) *Root {
	return &Root{resolve: resolve, overrides: overrides}
}

// Get returns the exact top-level override for name, or resolve(name).
func (r *Root) Get(name string) any {
	if isSentinel(name) {
		return nil
	}

	if r.overrides != nil {
		if value, ok := r.overrides.Get(name); ok && value != nil {
			return value
		}
	}

	return r.resolve(name)
}

// Walk follows names from v. Getters are read with Get; any other value is
// descended into structurally. Walk returns nil when a step finds nothing.
func Walk(v any, names ...string) any {
	current := v

	for _, name := range names {
		next, ok := index(current, name)
		if !ok {
			return nil
		}

		current = next
	}

	return current
}

func clonePath(path []string) []string {
	cloned := make([]string, len(path))
	copy(cloned, path)

	return cloned
}

// isSentinel reports names that never resolve: the empty name, and "then", so
// that nothing in a tree looks like a promise to adapters that probe for it.
func isSentinel(name string) bool {
	return name == "" || name == "then"
}

// spread turns an apply-style argument list into positional arguments.
func spread(list any) []any {
	switch values := list.(type) {
	case nil:
		return nil
	case []any:
		return values
	}

	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{list}
	}

	args := make([]any, rv.Len())
	for i := range args {
		args[i] = rv.Index(i).Interface()
	}

	return args
}

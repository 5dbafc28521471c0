package typesupport

import (
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/introspection"
)

// Type is what the registry needs from a type support.
type Type interface {
	TypeName() string
	Schema() *introspection.MessageMembers
}

// Registry maps DDS type names to type supports. Registering a second
// type support under a name is allowed only when both describe the same
// wire format.
type Registry struct {
	types map[string]Type
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Type)}
}

// Register adds t. Re-registering an equivalent schema keeps the first
// entry and succeeds.
func (r *Registry) Register(t Type) error {
	if t == nil {
		return errors.NilPointer(errors.PhaseRegistry, nil, "typesupport.Type")
	}
	name := t.TypeName()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types[name]; ok {
		if SameWireFormat(existing.Schema(), t.Schema()) {
			return nil
		}
		Logger().Error("conflicting type registration",
			zap.String("type", name),
			zap.String("existing", existing.Schema().FullName()))
		return errors.Duplicate(errors.PhaseRegistry, name)
	}
	r.types[name] = t
	Logger().Debug("type registered", zap.String("type", name))
	return nil
}

func (r *Registry) Lookup(typeName string) (Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[typeName]
	if !ok {
		return nil, errors.NotFound(errors.PhaseRegistry, "type", typeName)
	}
	return t, nil
}

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// SameWireFormat reports whether two schemas serialize identically: same
// names, member order, types, shapes and bounds. In-memory offsets and
// sizes are ignored, so a Go struct and a C layout of one message match.
func SameWireFormat(a, b *introspection.MessageMembers) bool {
	return sameSchema(a, b, map[[2]*introspection.MessageMembers]bool{})
}

func sameSchema(a, b *introspection.MessageMembers, seen map[[2]*introspection.MessageMembers]bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	key := [2]*introspection.MessageMembers{a, b}
	if seen[key] {
		return true
	}
	seen[key] = true

	if introspection.TypeName(a) != introspection.TypeName(b) || len(a.Members) != len(b.Members) {
		return false
	}
	for i := range a.Members {
		x, y := &a.Members[i], &b.Members[i]
		if x.Name != y.Name || x.TypeID != y.TypeID || x.StringUpperBound != y.StringUpperBound || x.Shape() != y.Shape() {
			return false
		}
		if x.TypeID == introspection.TypeMessage && !sameSchema(x.Members, y.Members, seen) {
			return false
		}
	}
	return true
}

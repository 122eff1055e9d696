package resolver

import (
	"sort"
	"sync"

	"github.com/aurora-lang/aurora/internal/hir"
)

// FunctionEntry describes a callable known to the front-end: a declared
// function, a stdlib import or a sum type constructor.
type FunctionEntry struct {
	Signature   *hir.FunctionType
	Name        string
	Namespace   string
	TypeParams  []*hir.TypeParam
	Effects     []hir.Effect
	Exported    bool
	External    bool
	Constructor bool
}

// QualifiedName returns Namespace::Name, or Name without a namespace.
func (fe *FunctionEntry) QualifiedName() string {
	if fe.Namespace == "" {
		return fe.Name
	}
	return fe.Namespace + "::" + fe.Name
}

// IsGeneric reports whether the function declares type parameters.
func (fe *FunctionEntry) IsGeneric() bool {
	return len(fe.TypeParams) > 0
}

// FunctionRegistry maps function names to their entries. Entries are
// reachable by plain name and, when they have a namespace, by qualified
// name. It is safe for concurrent use.
type FunctionRegistry struct {
	entries   map[string]*FunctionEntry
	qualified map[string]*FunctionEntry
	aliases   map[string]string
	mu        sync.RWMutex
}

// NewFunctionRegistry creates an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		entries:   make(map[string]*FunctionEntry),
		qualified: make(map[string]*FunctionEntry),
		aliases:   make(map[string]string),
	}
}

// Register adds or replaces an entry and returns the stored value.
func (fr *FunctionRegistry) Register(entry FunctionEntry) *FunctionEntry {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	stored := &entry
	fr.entries[entry.Name] = stored

	if entry.Namespace != "" {
		fr.qualified[stored.QualifiedName()] = stored
	}

	return stored
}

// RegisterAlias lets FetchEntryForMember find the functions of namespace
// through alias, as in "import * as M from Math".
func (fr *FunctionRegistry) RegisterAlias(alias, namespace string) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	fr.aliases[alias] = namespace
}

// Fetch returns the signature registered under name.
func (fr *FunctionRegistry) Fetch(name string) (*hir.FunctionType, bool) {
	entry, ok := fr.FetchEntry(name)
	if !ok {
		return nil, false
	}

	return entry.Signature, true
}

// FetchEntry returns the entry registered under name. Qualified names
// ("math::sqrt") are accepted too.
func (fr *FunctionRegistry) FetchEntry(name string) (*FunctionEntry, bool) {
	fr.mu.RLock()
	defer fr.mu.RUnlock()

	if entry, ok := fr.entries[name]; ok {
		return entry, true
	}

	entry, ok := fr.qualified[name]

	return entry, ok
}

// FetchEntryForMember resolves container.member where container is an
// import alias or a namespace.
func (fr *FunctionRegistry) FetchEntryForMember(container, member string) (*FunctionEntry, bool) {
	fr.mu.RLock()
	defer fr.mu.RUnlock()

	ns, ok := fr.aliases[container]
	if !ok {
		ns = container
	}

	entry, ok := fr.qualified[ns+"::"+member]

	return entry, ok
}

// IsAlias reports whether name was registered as a namespace alias.
func (fr *FunctionRegistry) IsAlias(name string) bool {
	fr.mu.RLock()
	defer fr.mu.RUnlock()

	_, ok := fr.aliases[name]

	return ok
}

// Registered reports whether name is registered.
func (fr *FunctionRegistry) Registered(name string) bool {
	_, ok := fr.FetchEntry(name)
	return ok
}

// Entries returns every entry sorted by name.
func (fr *FunctionRegistry) Entries() []*FunctionEntry {
	fr.mu.RLock()
	defer fr.mu.RUnlock()

	result := make([]*FunctionEntry, 0, len(fr.entries))
	for _, entry := range fr.entries {
		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}

// SetEffects records the inferred effects of a lowered function.
func (fr *FunctionRegistry) SetEffects(name string, effects []hir.Effect) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	if entry, ok := fr.entries[name]; ok {
		entry.Effects = effects
	}
}

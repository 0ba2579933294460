package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/Tsinling0525/flowsmith/model"
)

// Entry describes one node type of the target platform.
type Entry struct {
	Kind        Kind
	Type        string
	DisplayName string
	Version     float64
	Category    Category

	// Keywords, Concepts and UseCases drive the resolver's scoring.
	Keywords []string
	Concepts []string
	UseCases []string

	Defaults map[string]any
	// Required lists parameter keys (dot paths) that must be present.
	Required []string
	// ListParams lists parameter keys (dot paths) whose value must be an array.
	ListParams []string

	// Terminal marks a logical conclusion (persistence write, notification
	// send, file write, response) that needs no outgoing edge.
	Terminal bool
}

// DefaultParams returns a deep copy of the entry defaults.
func (e Entry) DefaultParams() map[string]any {
	if e.Defaults == nil {
		return map[string]any{}
	}
	return model.CloneMap(e.Defaults)
}

func (e Entry) IsTrigger() bool { return e.Category == CategoryTrigger }

var (
	mu       sync.RWMutex
	registry = map[string]Entry{}
	byKind   = map[Kind]string{}
)

// Register adds an entry. Node packages call it from init; the registry is
// read-only once the program is running.
func Register(e Entry) {
	mu.Lock()
	defer mu.Unlock()
	registry[e.Type] = e
	if _, ok := byKind[e.Kind]; !ok {
		byKind[e.Kind] = e.Type
	}
}

func Lookup(nodeType string) (Entry, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registry[nodeType]
	return e, ok
}

// ByKind returns the primary entry registered for a kind.
func ByKind(k Kind) (Entry, bool) {
	mu.RLock()
	defer mu.RUnlock()
	t, ok := byKind[k]
	if !ok {
		return Entry{}, false
	}
	return registry[t], true
}

// ByName finds an entry by display name or type tag, ignoring case and the
// platform package prefix ("HTTP Request", "httpRequest", "n8n-nodes-base.httpRequest").
func ByName(name string) (Entry, bool) {
	want := normalizeName(name)
	if want == "" {
		return Entry{}, false
	}
	for _, e := range All() {
		if normalizeName(e.DisplayName) == want || normalizeName(e.Type) == want || normalizeName(shortType(e.Type)) == want {
			return e, true
		}
	}
	return Entry{}, false
}

// All returns every entry sorted by type tag, giving callers a deterministic order.
func All() []Entry {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Entry, 0, len(registry))
	for _, e := range registry {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Classify returns the entry for a type string. Unknown strings yield an
// explicit unrecognized entry whose category is guessed from the type name.
func Classify(nodeType string) Entry {
	if e, ok := Lookup(nodeType); ok {
		return e
	}
	cat := CategoryUnknown
	if guessTrigger(nodeType) {
		cat = CategoryTrigger
	}
	return Entry{Kind: KindUnrecognized, Type: nodeType, Category: cat, Version: 1}
}

// IsTriggerType reports whether a type string denotes a trigger node.
func IsTriggerType(nodeType string) bool {
	return Classify(nodeType).IsTrigger()
}

func shortType(t string) string {
	if i := strings.LastIndex(t, "."); i >= 0 {
		return t[i+1:]
	}
	return t
}

func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

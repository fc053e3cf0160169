package routes

import "loramgr/internal/common/fsutil"

// Source tells how a RouteEntry was discovered.
type Source string

const (
	SourceRoot Source = "root"
	SourceLink Source = "link"
)

// Entry maps one real directory to the URL prefix it is served under.
type Entry struct {
	RealPath  string
	URLPrefix string
	Category  Category
	Source    Source
	// Index is the 1-based root position or link counter used in URLPrefix.
	Index int
	// ConfiguredPath is the root as written in settings, or the first link
	// path for link-only targets.
	ConfiguredPath string
}

// MappingStatus describes what happened to a configured root.
type MappingStatus string

const (
	StatusRegistered MappingStatus = "registered"
	StatusDuplicate  MappingStatus = "duplicate"
	StatusStale      MappingStatus = "stale"
)

// Mapping is the display record for one configured root, kept even when the
// root did not produce an Entry.
type Mapping struct {
	Category       Category
	Index          int
	ConfiguredPath string
	RealPath       string
	URLPrefix      string
	Status         MappingStatus
	// ServedBy is the prefix of the Entry that actually serves RealPath.
	ServedBy string
}

// Mount is a fixed static mount outside the model-root logic.
type Mount struct {
	Name      string
	URLPrefix string
	Dir       string
}

// Table is the immutable result of a resolution run. All methods are safe
// for concurrent use.
type Table struct {
	entries  []Entry
	byReal   map[string]int
	byPrefix map[string]int
	mappings []Mapping
	mounts   []Mount
}

func newTable() *Table {
	return &Table{byReal: map[string]int{}, byPrefix: map[string]int{}}
}

func (t *Table) add(e Entry) {
	t.byReal[e.RealPath] = len(t.entries)
	t.byPrefix[e.URLPrefix] = len(t.entries)
	t.entries = append(t.entries, e)
}

// Entries returns the entries in construction order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	return append([]Entry(nil), t.entries...)
}

// LookupByRealPath finds the entry serving path. The path is normalized first.
func (t *Table) LookupByRealPath(path string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	i, ok := t.byReal[fsutil.Normalize(path)]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// LookupByPrefix finds the entry mounted at prefix.
func (t *Table) LookupByPrefix(prefix string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	i, ok := t.byPrefix[prefix]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Mappings returns the display records for every configured root.
func (t *Table) Mappings() []Mapping {
	if t == nil {
		return nil
	}
	return append([]Mapping(nil), t.mappings...)
}

// Mounts returns the fixed mounts (plugin assets, example images).
func (t *Table) Mounts() []Mount {
	if t == nil {
		return nil
	}
	return append([]Mount(nil), t.mounts...)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// CountByCategory returns the number of entries per category.
func (t *Table) CountByCategory() map[Category]int {
	out := map[Category]int{Lora: 0, Checkpoint: 0}
	if t == nil {
		return out
	}
	for _, e := range t.entries {
		out[e.Category]++
	}
	return out
}

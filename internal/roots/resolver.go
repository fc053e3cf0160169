// Package roots resolves logical model types to the existing directories that
// back them. A logical type is either a single configured folder category or
// a composite union of several (diffusion_models = unet ∪ diffusers).
package roots

import (
	"github.com/rs/zerolog"

	"loramgr/internal/common/fsutil"
	"loramgr/internal/config"
)

// Logical model types.
const (
	Loras           = config.CategoryLoras
	Checkpoints     = config.CategoryCheckpoints
	DiffusionModels = "diffusion_models"
)

// PathSource provides the ordered raw paths configured for a folder category.
type PathSource interface {
	Paths(category string) []string
}

// ExistsFunc reports whether a path exists at the time of the call.
type ExistsFunc func(path string) bool

// ModelRootSet is the existence-filtered, ordered list of roots for one
// logical model type. An empty set is valid.
type ModelRootSet struct {
	Type  string
	Paths []string
	// Positions holds the 1-based position of each path in the configured
	// list, so filtering out a missing root does not renumber the rest.
	// When nil, positions are implied by order.
	Positions []int
}

// Position returns the configured 1-based position of Paths[i].
func (s ModelRootSet) Position(i int) int {
	if len(s.Positions) == len(s.Paths) {
		return s.Positions[i]
	}
	return i + 1
}

// Len returns the number of roots.
func (s ModelRootSet) Len() int { return len(s.Paths) }

// Empty reports whether no root survived filtering.
func (s ModelRootSet) Empty() bool { return len(s.Paths) == 0 }

// Resolver maps logical model types to ModelRootSets. It is stateless apart
// from its configuration: every Resolve call re-checks the filesystem.
type Resolver struct {
	src        PathSource
	exists     ExistsFunc
	composites map[string][]string
	log        zerolog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithExists replaces the filesystem existence check.
func WithExists(fn ExistsFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.exists = fn
		}
	}
}

// WithComposite registers (or overrides) a composite logical type whose roots
// are the union of parts, in the given order.
func WithComposite(name string, parts ...string) Option {
	return func(r *Resolver) { r.composites[name] = append([]string(nil), parts...) }
}

// New constructs a Resolver reading from src.
func New(src PathSource, log zerolog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		src:    src,
		exists: fsutil.PathExists,
		composites: map[string][]string{
			DiffusionModels: {config.CategoryUnet, config.CategoryDiffusers},
		},
		log: log,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the existing roots for logicalType. It never fails; an
// empty result is logged as a warning.
func (r *Resolver) Resolve(logicalType string) ModelRootSet {
	set := ModelRootSet{Type: logicalType}
	if parts, ok := r.composites[logicalType]; ok {
		set.Paths, set.Positions = r.union(parts)
	} else {
		set.Paths, set.Positions = r.filter(r.src.Paths(logicalType), 0)
	}
	if set.Empty() {
		r.log.Warn().Str("type", logicalType).Msg("no valid paths found")
	} else {
		r.log.Debug().Str("type", logicalType).Strs("paths", set.Paths).Msg("resolved model roots")
	}
	return set
}

// filter keeps existing paths in order along with their 1-based positions
// (offset by base). Duplicates are preserved.
func (r *Resolver) filter(paths []string, base int) ([]string, []int) {
	out := make([]string, 0, len(paths))
	pos := make([]int, 0, len(paths))
	for i, p := range paths {
		if p == "" || !r.exists(p) {
			continue
		}
		out = append(out, p)
		pos = append(pos, base+i+1)
	}
	return out, pos
}

// union concatenates the filtered paths of each part; the first occurrence of
// a normalized path wins. Positions run across the concatenated lists.
func (r *Resolver) union(parts []string) ([]string, []int) {
	seen := make(map[string]struct{})
	out, pos := []string{}, []int{}
	base := 0
	for _, part := range parts {
		raw := r.src.Paths(part)
		ps, ns := r.filter(raw, base)
		base += len(raw)
		for i, p := range ps {
			key := fsutil.Normalize(p)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, p)
			pos = append(pos, ns[i])
		}
	}
	return out, pos
}

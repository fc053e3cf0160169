// Package links tracks which configured directories are symlinks to other
// real directories, so one physical copy exposed under several logical roots
// can be mapped back to the directory that actually holds the files.
package links

import (
	"github.com/rs/zerolog"

	"loramgr/internal/common/fsutil"
	"loramgr/internal/config"
)

// Association records that LinkPath is an alias of RealTarget. Both fields
// are normalized (see fsutil.Normalize).
type Association struct {
	RealTarget string
	LinkPath   string
}

// Registry is an immutable collection of associations with reverse lookup by
// link path. A link path maps to exactly one target; a target may have any
// number of links.
type Registry struct {
	assocs []Association
	byLink map[string]int
}

// FromMappings converts settings path mappings into associations.
func FromMappings(ms []config.PathMapping) []Association {
	out := make([]Association, 0, len(ms))
	for _, m := range ms {
		out = append(out, Association{RealTarget: m.Target, LinkPath: m.Link})
	}
	return out
}

// New builds a Registry. Entries are normalized; empty or self-referencing
// entries are dropped, and a link path seen twice keeps its first target.
func New(assocs []Association, log zerolog.Logger) *Registry {
	r := &Registry{byLink: make(map[string]int, len(assocs))}
	for _, a := range assocs {
		target, link := fsutil.Normalize(a.RealTarget), fsutil.Normalize(a.LinkPath)
		if target == "" || link == "" {
			log.Warn().Str("target", a.RealTarget).Str("link", a.LinkPath).Msg("ignoring incomplete path mapping")
			continue
		}
		if target == link {
			log.Warn().Str("path", link).Msg("ignoring path mapping that points at itself")
			continue
		}
		if i, dup := r.byLink[link]; dup {
			if r.assocs[i].RealTarget != target {
				log.Warn().Str("link", link).Str("kept", r.assocs[i].RealTarget).Str("dropped", target).
					Msg("link already mapped to a different target")
			}
			continue
		}
		r.byLink[link] = len(r.assocs)
		r.assocs = append(r.assocs, Association{RealTarget: target, LinkPath: link})
	}
	return r
}

// ResolveReal returns the real target when path is a known link, otherwise
// path unchanged.
func (r *Registry) ResolveReal(path string) string {
	if r == nil {
		return path
	}
	if i, ok := r.byLink[fsutil.Normalize(path)]; ok {
		return r.assocs[i].RealTarget
	}
	return path
}

// IsLink reports whether path is a registered link path.
func (r *Registry) IsLink(path string) bool {
	if r == nil {
		return false
	}
	_, ok := r.byLink[fsutil.Normalize(path)]
	return ok
}

// Associations returns a copy of all associations in insertion order.
func (r *Registry) Associations() []Association {
	if r == nil {
		return nil
	}
	return append([]Association(nil), r.assocs...)
}

// Aliases returns every link path registered for target, in insertion order.
func (r *Registry) Aliases(target string) []string {
	if r == nil {
		return nil
	}
	t := fsutil.Normalize(target)
	var out []string
	for _, a := range r.assocs {
		if a.RealTarget == t {
			out = append(out, a.LinkPath)
		}
	}
	return out
}

// Len returns the number of associations.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.assocs)
}

// Package routes turns resolved model roots and known symlinks into the
// immutable table of real directory → static URL prefix mounts.
//
// Prefixes follow a stable contract other code depends on:
//
//	/{loras|checkpoints}_static/root{N}/preview   N = position in the configured root list
//	/{loras|checkpoints}_static/link_{N}/preview  N = per-category counter for link-only targets
//
// A root that goes missing keeps its number reserved so later roots are not
// renumbered.
package routes

import (
	"github.com/rs/zerolog"

	"loramgr/internal/common/fsutil"
	"loramgr/internal/links"
	"loramgr/internal/roots"
)

// Mapper builds route tables. A Mapper holds no state between builds.
type Mapper struct {
	log           zerolog.Logger
	exists        func(string) bool
	classifier    Classifier
	exampleImages string
}

// Option customizes a Mapper.
type Option func(*Mapper)

// WithClassifier installs a classifier consulted before the containment
// heuristic for link-only targets.
func WithClassifier(c Classifier) Option { return func(m *Mapper) { m.classifier = c } }

// WithExists replaces the filesystem existence check.
func WithExists(fn func(string) bool) Option {
	return func(m *Mapper) {
		if fn != nil {
			m.exists = fn
		}
	}
}

// WithExampleImages adds the example images mount when dir exists.
func WithExampleImages(dir string) Option { return func(m *Mapper) { m.exampleImages = dir } }

// NewMapper constructs a Mapper.
func NewMapper(log zerolog.Logger, opts ...Option) *Mapper {
	m := &Mapper{log: log, exists: fsutil.PathExists}
	for _, o := range opts {
		o(m)
	}
	return m
}

// BuildRouteTable builds a table with default options and no logging.
func BuildRouteTable(loras, checkpoints roots.ModelRootSet, reg *links.Registry, assetsPath string) *Table {
	return NewMapper(zerolog.Nop()).Build(loras, checkpoints, reg, assetsPath)
}

// Build produces the route table. It never fails: missing roots and link
// targets are skipped with a warning and an empty table is a valid result.
func (m *Mapper) Build(loras, checkpoints roots.ModelRootSet, reg *links.Registry, assetsPath string) *Table {
	t := newTable()
	seen := make(map[string]string) // real path -> serving prefix

	m.mapRoots(t, seen, Lora, loras, reg)
	m.mapRoots(t, seen, Checkpoint, checkpoints, reg)
	m.mapLinkTargets(t, seen, loras, checkpoints, reg)

	if assetsPath != "" {
		t.mounts = append(t.mounts, Mount{Name: "assets", URLPrefix: AssetsPrefix, Dir: assetsPath})
	}
	if m.exampleImages != "" {
		if m.exists(m.exampleImages) {
			t.mounts = append(t.mounts, Mount{Name: "example_images", URLPrefix: ExampleImagesPrefix, Dir: m.exampleImages})
			m.log.Info().Str("prefix", ExampleImagesPrefix).Str("dir", m.exampleImages).Msg("added static route for example images")
		} else {
			m.log.Warn().Str("dir", m.exampleImages).Msg("example images path does not exist")
		}
	}
	m.log.Info().Int("entries", t.Len()).Int("mounts", len(t.mounts)).Msg("route table built")
	return t
}

func (m *Mapper) mapRoots(t *Table, seen map[string]string, c Category, set roots.ModelRootSet, reg *links.Registry) {
	for i, root := range set.Paths {
		idx := set.Position(i)
		prefix := RootPrefix(c, idx)
		if !m.exists(root) {
			m.log.Warn().Str("category", string(c)).Str("root", root).Msg("root path does not exist")
			t.mappings = append(t.mappings, Mapping{Category: c, Index: idx, ConfiguredPath: root, URLPrefix: prefix, Status: StatusStale})
			continue
		}
		realPath := fsutil.Normalize(reg.ResolveReal(root))
		mp := Mapping{Category: c, Index: idx, ConfiguredPath: root, RealPath: realPath, URLPrefix: prefix}
		if by, dup := seen[realPath]; dup {
			mp.Status, mp.ServedBy = StatusDuplicate, by
			t.mappings = append(t.mappings, mp)
			m.log.Info().Str("prefix", prefix).Str("real", realPath).Str("served_by", by).Msg("root already mapped")
			continue
		}
		mp.Status, mp.ServedBy = StatusRegistered, prefix
		t.mappings = append(t.mappings, mp)
		t.add(Entry{RealPath: realPath, URLPrefix: prefix, Category: c, Source: SourceRoot, Index: idx, ConfiguredPath: root})
		seen[realPath] = prefix
		m.log.Info().Str("prefix", prefix).Str("real", realPath).Msg("added static route")
	}
}

func (m *Mapper) mapLinkTargets(t *Table, seen map[string]string, loras, checkpoints roots.ModelRootSet, reg *links.Registry) {
	// Configured root paths only; the real targets of linked roots are not consulted.
	heuristic := ContainmentClassifier{
		CheckpointRoots: checkpoints.Paths,
		LoraRoots:       loras.Paths,
	}
	counters := map[Category]int{Lora: 0, Checkpoint: 0}

	for _, a := range reg.Associations() {
		if _, done := seen[a.RealTarget]; done {
			continue
		}
		if !m.exists(fsutil.Native(a.RealTarget)) {
			m.log.Warn().Str("target", a.RealTarget).Str("link", a.LinkPath).Msg("link target does not exist")
			continue
		}
		aliases := reg.Aliases(a.RealTarget)
		var (
			c  Category
			ok bool
		)
		if m.classifier != nil {
			c, ok = m.classifier.Classify(a.RealTarget, aliases)
		}
		if !ok {
			c, ok = heuristic.Classify(a.RealTarget, aliases)
		}
		if !ok {
			c = Lora
			m.log.Warn().Str("target", a.RealTarget).Strs("links", aliases).Msg("link target matches no configured root, assuming lora")
		}
		counters[c]++
		prefix := LinkPrefix(c, counters[c])
		t.add(Entry{RealPath: a.RealTarget, URLPrefix: prefix, Category: c, Source: SourceLink, Index: counters[c], ConfiguredPath: a.LinkPath})
		seen[a.RealTarget] = prefix
		m.log.Info().Str("prefix", prefix).Str("real", a.RealTarget).Str("category", string(c)).Msg("added static route for link target")
	}
}

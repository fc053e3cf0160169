package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loramgr/internal/config"
	"loramgr/internal/routes"
)

type fixture struct {
	dir      string
	settings string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return fixture{dir: dir, settings: filepath.Join(dir, "settings.json")}
}

func (f fixture) mkdir(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(f.dir, name)
	require.NoError(t, os.MkdirAll(p, 0o755))
	return p
}

func (f fixture) write(t *testing.T, s config.Settings) {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.settings, b, 0o644))
}

func TestPipeline_BuildsScenario(t *testing.T) {
	f := newFixture(t)
	ckpt := f.mkdir(t, "models/ckpt")
	realLora := f.mkdir(t, "models/real_lora")
	loraLink := filepath.Join(f.dir, "models", "lora_link")
	if err := os.Symlink(realLora, loraLink); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	f.write(t, config.Settings{FolderPaths: map[string][]string{
		config.CategoryCheckpoints: {ckpt},
		config.CategoryLoras:       {loraLink},
	}})

	p := New(Config{SettingsPath: f.settings, AssetsPath: f.mkdir(t, "static")}, zerolog.Nop())
	assert.False(t, p.Ready())
	snap := p.Reload()
	require.True(t, p.Ready())
	assert.Equal(t, uint64(1), snap.Version)

	got := map[string]string{}
	for _, e := range p.Table().Entries() {
		got[e.RealPath] = e.URLPrefix
	}
	assert.Equal(t, map[string]string{
		filepath.ToSlash(ckpt):     "/checkpoints_static/root1/preview",
		filepath.ToSlash(realLora): "/loras_static/root1/preview",
	}, got)
	assert.Len(t, p.Table().Mounts(), 1)
	assert.Len(t, p.RootSets(), 3)
}

func TestPipeline_MissingSettingsYieldsEmptyTable(t *testing.T) {
	p := New(Config{SettingsPath: filepath.Join(t.TempDir(), "nope.json")}, zerolog.Nop())
	snap := p.Reload()
	require.NotNil(t, snap.Table)
	assert.Zero(t, snap.Table.Len())
	assert.Empty(t, snap.Table.Mounts())
}

func TestPipeline_ExplicitMappingsAndCategories(t *testing.T) {
	f := newFixture(t)
	loras := f.mkdir(t, "loras")
	extra := f.mkdir(t, "store/extra")
	disc := false
	f.write(t, config.Settings{
		FolderPaths:    map[string][]string{config.CategoryLoras: {loras}},
		PathMappings:   []config.PathMapping{{Target: extra, Link: filepath.Join(f.dir, "virtual", "extra")}},
		LinkCategories: map[string]string{extra: "checkpoint"},
		DiscoverLinks:  &disc,
	})

	p := New(Config{SettingsPath: f.settings}, zerolog.Nop())
	tbl := p.Reload().Table
	e, ok := tbl.LookupByRealPath(extra)
	require.True(t, ok)
	assert.Equal(t, routes.Checkpoint, e.Category)
	assert.Equal(t, "/checkpoints_static/link_1/preview", e.URLPrefix)
}

func TestPipeline_UnknownLinkCategoriesIgnored(t *testing.T) {
	f := newFixture(t)
	loras := f.mkdir(t, "loras")
	extra := f.mkdir(t, "store/extra")
	disc := false
	f.write(t, config.Settings{
		FolderPaths:    map[string][]string{config.CategoryLoras: {loras}},
		PathMappings:   []config.PathMapping{{Target: extra, Link: filepath.Join(f.dir, "virtual", "extra")}},
		LinkCategories: map[string]string{extra: "embedding"},
		DiscoverLinks:  &disc,
	})

	var buf bytes.Buffer
	p := New(Config{SettingsPath: f.settings}, zerolog.New(&buf))
	e, ok := p.Reload().Table.LookupByRealPath(extra)
	require.True(t, ok)
	assert.Equal(t, routes.Lora, e.Category)
	assert.Contains(t, buf.String(), "link_categories entries with an unknown category")
}

func TestPipeline_ReloadReplacesSnapshot(t *testing.T) {
	f := newFixture(t)
	a := f.mkdir(t, "a")
	f.write(t, config.Settings{FolderPaths: map[string][]string{config.CategoryLoras: {a}}})

	p := New(Config{SettingsPath: f.settings}, zerolog.Nop())
	var seen []uint64
	p.OnBuild(func(s *Snapshot) { seen = append(seen, s.Version) })

	first := p.Reload()
	b := f.mkdir(t, "b")
	f.write(t, config.Settings{FolderPaths: map[string][]string{config.CategoryLoras: {a, b}}})
	second := p.Reload()

	assert.Equal(t, 1, first.Table.Len(), "old snapshot is never mutated")
	assert.Equal(t, 2, second.Table.Len())
	assert.Same(t, second, p.Current())
	assert.Equal(t, []uint64{1, 2}, seen)
}

func TestPipeline_WatchRebuilds(t *testing.T) {
	f := newFixture(t)
	a := f.mkdir(t, "a")
	f.write(t, config.Settings{FolderPaths: map[string][]string{}})

	p := New(Config{SettingsPath: f.settings, WatchDebounce: 20 * time.Millisecond}, zerolog.Nop())
	p.Reload()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Watch(ctx) }()

	b, err := json.Marshal(config.Settings{FolderPaths: map[string][]string{config.CategoryLoras: {a}}})
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(f.settings, b, 0o644)
		return p.Table().Len() == 1
	}, 5*time.Second, 100*time.Millisecond)
}

func TestPipeline_ConcurrentReloadsPublishInOrder(t *testing.T) {
	f := newFixture(t)
	lora := f.mkdir(t, "loras")
	f.write(t, config.Settings{FolderPaths: map[string][]string{config.CategoryLoras: {lora}}})

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	exists := func(p string) bool {
		once.Do(func() {
			close(entered)
			<-release
		})
		return p == lora
	}
	p := New(Config{SettingsPath: f.settings, Exists: exists}, zerolog.Nop())

	first := make(chan *Snapshot, 1)
	second := make(chan *Snapshot, 1)
	go func() { first <- p.Reload() }()
	<-entered
	go func() { second <- p.Reload() }()

	// The second reload must wait for the blocked one.
	select {
	case <-second:
		t.Fatal("reload ran while another was in progress")
	case <-time.After(100 * time.Millisecond):
	}
	close(release)

	s1, s2 := <-first, <-second
	assert.Equal(t, uint64(1), s1.Version)
	assert.Equal(t, uint64(2), s2.Version)
	require.NotNil(t, p.Current())
	assert.Same(t, s2, p.Current())
}

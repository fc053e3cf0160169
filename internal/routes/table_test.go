package routes

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_Lookups(t *testing.T) {
	tbl := newTable()
	tbl.add(Entry{RealPath: "/a", URLPrefix: RootPrefix(Lora, 1), Category: Lora, Source: SourceRoot, Index: 1})
	tbl.add(Entry{RealPath: "/b", URLPrefix: LinkPrefix(Checkpoint, 1), Category: Checkpoint, Source: SourceLink, Index: 1})

	e, ok := tbl.LookupByRealPath("/a/")
	assert.True(t, ok)
	assert.Equal(t, "/loras_static/root1/preview", e.URLPrefix)

	e, ok = tbl.LookupByPrefix("/checkpoints_static/link_1/preview")
	assert.True(t, ok)
	assert.Equal(t, "/b", e.RealPath)

	_, ok = tbl.LookupByRealPath("/c")
	assert.False(t, ok)
	assert.Equal(t, map[Category]int{Lora: 1, Checkpoint: 1}, tbl.CountByCategory())
}

func TestTable_EntriesIsSnapshot(t *testing.T) {
	tbl := newTable()
	tbl.add(Entry{RealPath: "/a", URLPrefix: "/p"})
	es := tbl.Entries()
	es[0].RealPath = "/mutated"
	assert.Equal(t, "/a", tbl.Entries()[0].RealPath)
}

func TestTable_NilSafe(t *testing.T) {
	var tbl *Table
	assert.Zero(t, tbl.Len())
	assert.Nil(t, tbl.Entries())
	assert.Nil(t, tbl.Mappings())
	assert.Nil(t, tbl.Mounts())
	_, ok := tbl.LookupByRealPath("/a")
	assert.False(t, ok)
	_, ok = tbl.LookupByPrefix("/p")
	assert.False(t, ok)
}

func TestTable_ConcurrentReaders(t *testing.T) {
	tbl := BuildRouteTable(set("loras", "/x"), set("checkpoints"), nil, "")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = tbl.Entries()
				_, _ = tbl.LookupByRealPath("/x")
			}
		}()
	}
	wg.Wait()
}

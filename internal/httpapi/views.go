package httpapi

import (
	"loramgr/internal/app"
	"loramgr/internal/roots"
	"loramgr/internal/routes"
	"loramgr/pkg/types"
)

// NewRoutesResponse converts a route table into its API view.
func NewRoutesResponse(t *routes.Table) types.RoutesResponse {
	resp := types.RoutesResponse{
		Entries:  []types.RouteEntry{},
		Mappings: []types.RootMapping{},
		Mounts:   []types.Mount{},
	}
	for _, e := range t.Entries() {
		resp.Entries = append(resp.Entries, types.RouteEntry{
			RealPath:       e.RealPath,
			URLPrefix:      e.URLPrefix,
			Category:       string(e.Category),
			Source:         string(e.Source),
			Index:          e.Index,
			ConfiguredPath: e.ConfiguredPath,
		})
	}
	for _, m := range t.Mappings() {
		resp.Mappings = append(resp.Mappings, types.RootMapping{
			Category:       string(m.Category),
			Index:          m.Index,
			ConfiguredPath: m.ConfiguredPath,
			RealPath:       m.RealPath,
			URLPrefix:      m.URLPrefix,
			Status:         string(m.Status),
			ServedBy:       m.ServedBy,
		})
	}
	for _, m := range t.Mounts() {
		resp.Mounts = append(resp.Mounts, types.Mount{Name: m.Name, URLPrefix: m.URLPrefix, Dir: m.Dir})
	}
	return resp
}

// NewSnapshotRoutesResponse adds snapshot metadata to NewRoutesResponse.
func NewSnapshotRoutesResponse(s *app.Snapshot) types.RoutesResponse {
	resp := NewRoutesResponse(s.Table)
	resp.Version = s.Version
	resp.BuiltAtUnix = s.BuiltAt.Unix()
	return resp
}

// NewRootsResponse converts resolved root sets into their API view.
func NewRootsResponse(sets []roots.ModelRootSet) types.RootsResponse {
	resp := types.RootsResponse{Roots: make([]types.RootSet, 0, len(sets))}
	for _, s := range sets {
		paths := append([]string{}, s.Paths...)
		resp.Roots = append(resp.Roots, types.RootSet{Type: s.Type, Paths: paths})
	}
	return resp
}

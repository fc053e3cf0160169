package types

// RouteEntry is one served directory in GET /api/routes.
type RouteEntry struct {
	// Canonical real directory served under URLPrefix.
	// example: /data/models/loras
	RealPath string `json:"real_path" example:"/data/models/loras"`
	// Stable URL prefix the directory is mounted at.
	// example: /loras_static/root1/preview
	URLPrefix string `json:"url_prefix" example:"/loras_static/root1/preview"`
	// Model category: lora or checkpoint.
	// example: lora
	Category string `json:"category" example:"lora"`
	// How the directory was found: root or link.
	// example: root
	Source string `json:"source" example:"root"`
	// Root position or link counter used in the prefix.
	// example: 1
	Index int `json:"index" example:"1"`
	// Path as written in settings (or the link path for link-only targets).
	// example: /models/lora_link
	ConfiguredPath string `json:"configured_path" example:"/models/lora_link"`
}

// RootMapping is the display record of one configured root.
type RootMapping struct {
	Category       string `json:"category" example:"checkpoint"`
	Index          int    `json:"index" example:"2"`
	ConfiguredPath string `json:"configured_path" example:"/models/ckpt_alias"`
	RealPath       string `json:"real_path,omitempty" example:"/data/checkpoints"`
	URLPrefix      string `json:"url_prefix" example:"/checkpoints_static/root2/preview"`
	// registered, duplicate or stale.
	// example: duplicate
	Status string `json:"status" example:"duplicate"`
	// Prefix of the entry that actually serves RealPath.
	ServedBy string `json:"served_by,omitempty" example:"/checkpoints_static/root1/preview"`
}

// Mount is a fixed static mount such as the plugin assets.
type Mount struct {
	Name      string `json:"name" example:"assets"`
	URLPrefix string `json:"url_prefix" example:"/loras_static"`
	Dir       string `json:"dir" example:"/opt/loramgr/static"`
}

// RoutesResponse is returned by GET /api/routes.
type RoutesResponse struct {
	Entries  []RouteEntry  `json:"entries"`
	Mappings []RootMapping `json:"mappings"`
	Mounts   []Mount       `json:"mounts"`
	// Snapshot version, incremented on each rebuild.
	// example: 1
	Version uint64 `json:"version" example:"1"`
	// Build time in unix seconds.
	// example: 1700000000
	BuiltAtUnix int64 `json:"built_at_unix" example:"1700000000"`
}

// RootSet is the resolved root list of one logical model type.
type RootSet struct {
	// example: diffusion_models
	Type  string   `json:"type" example:"diffusion_models"`
	Paths []string `json:"paths"`
}

// RootsResponse is returned by GET /api/roots.
type RootsResponse struct {
	Roots []RootSet `json:"roots"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: not ready
	Error string `json:"error" example:"not ready"`
	// HTTP status code.
	// example: 503
	Code int `json:"code" example:"503"`
}

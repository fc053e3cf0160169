package routes

import (
	"fmt"
	"strings"
)

// Category is the model category a served directory belongs to.
type Category string

const (
	Lora       Category = "lora"
	Checkpoint Category = "checkpoint"
)

// Segment returns the plural URL segment used in static prefixes.
func (c Category) Segment() string { return string(c) + "s" }

// ParseCategory accepts singular or plural spellings, case-insensitively.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lora", "loras":
		return Lora, true
	case "checkpoint", "checkpoints":
		return Checkpoint, true
	default:
		return "", false
	}
}

// RootPrefix is the URL prefix for the index-th (1-based) configured root.
func RootPrefix(c Category, index int) string {
	return fmt.Sprintf("/%s_static/root%d/preview", c.Segment(), index)
}

// LinkPrefix is the URL prefix for the n-th (1-based) link-only target.
func LinkPrefix(c Category, n int) string {
	return fmt.Sprintf("/%s_static/link_%d/preview", c.Segment(), n)
}

// AssetsPrefix is the fixed mount for the bundled plugin assets.
const AssetsPrefix = "/loras_static"

// ExampleImagesPrefix is the fixed mount for the example images directory.
const ExampleImagesPrefix = "/example_images_static"

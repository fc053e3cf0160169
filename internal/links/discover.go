package links

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"loramgr/internal/common/fsutil"
)

// Discover finds symlinked directories among roots and beneath them. A root
// that is itself a symlink yields an association to its target; the real
// tree of every root (and of every discovered target) is walked for nested
// directory symlinks. Unreadable entries are skipped. Results are ordered by
// root order, then walk order.
func Discover(roots []string, log zerolog.Logger) []Association {
	var out []Association
	visited := make(map[string]struct{})
	queue := append([]string(nil), roots...)

	for len(queue) > 0 {
		root := queue[0]
		queue = queue[1:]
		if root == "" {
			continue
		}
		resolved, err := filepath.EvalSymlinks(fsutil.Native(fsutil.Normalize(root)))
		if err != nil {
			log.Debug().Err(err).Str("root", root).Msg("skip link discovery for unresolvable root")
			continue
		}
		if fsutil.IsSymlink(root) {
			out = append(out, Association{RealTarget: fsutil.Normalize(resolved), LinkPath: fsutil.Normalize(root)})
		}
		key := fsutil.Normalize(resolved)
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}

		_ = filepath.WalkDir(resolved, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Debug().Err(err).Str("path", p).Msg("link discovery: unreadable entry")
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type()&os.ModeSymlink == 0 {
				return nil
			}
			if !fsutil.IsDir(p) {
				return nil
			}
			target, err := filepath.EvalSymlinks(p)
			if err != nil {
				log.Debug().Err(err).Str("link", p).Msg("link discovery: broken symlink")
				return nil
			}
			a := Association{RealTarget: fsutil.Normalize(target), LinkPath: fsutil.Normalize(p)}
			out = append(out, a)
			queue = append(queue, target)
			return nil
		})
	}
	if len(out) > 0 {
		log.Info().Int("links", len(out)).Msg("discovered symlinked model directories")
	}
	return out
}

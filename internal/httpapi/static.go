package httpapi

import (
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"loramgr/internal/common/fsutil"
	"loramgr/internal/routes"
)

// fileOnlyFS hides directories so mounts never produce listings.
type fileOnlyFS struct{ fs http.FileSystem }

func (f fileOnlyFS) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

// matchMount returns the longest entry or fixed-mount prefix covering path.
func matchMount(t *routes.Table, path string) (prefix, dir string, ok bool) {
	consider := func(p, d string) {
		if len(p) > len(prefix) && strings.HasPrefix(path, p+"/") {
			prefix, dir, ok = p, d, true
		}
	}
	for _, e := range t.Entries() {
		consider(e.URLPrefix, fsutil.Native(e.RealPath))
	}
	for _, m := range t.Mounts() {
		consider(m.URLPrefix, m.Dir)
	}
	return prefix, dir, ok
}

// staticHandler serves files for whatever table svc currently publishes, so
// a rebuilt table takes effect without re-registering routes.
func staticHandler(svc Service, log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := svc.Current()
		if s == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "route table not ready")
			return
		}
		prefix, dir, ok := matchMount(s.Table, r.URL.Path)
		if !ok {
			writeJSONError(w, http.StatusNotFound, "no static mount for path")
			return
		}
		log.Debug().Str("prefix", prefix).Str("dir", dir).Str("path", r.URL.Path).Msg("static")
		http.StripPrefix(prefix, http.FileServer(fileOnlyFS{fs: http.Dir(dir)})).ServeHTTP(w, r)
	})
}

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loramgr/internal/app"
	"loramgr/internal/roots"
	"loramgr/internal/routes"
)

// Service is what the HTTP layer needs from the resolution pipeline.
type Service interface {
	Current() *app.Snapshot
	RootSets() []roots.ModelRootSet
	Ready() bool
}

// staticBases are the URL trees that may hold static mounts.
var staticBases = []string{
	"/" + routes.Lora.Segment() + "_static",
	"/" + routes.Checkpoint.Segment() + "_static",
	routes.ExampleImagesPrefix,
}

// NewMux builds the router: static mounts from the route table plus
// health, diagnostics and metrics endpoints.
func NewMux(svc Service, opts Options) http.Handler {
	log := opts.Logger
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(accessLog(log))
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: opts.corsMethods(),
			AllowedHeaders: opts.corsHeaders(),
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, opts.homePath(), http.StatusFound)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Get("/routes", getRoutes(svc))
		r.Get("/roots", getRoots(svc))
	})

	MountSwagger(r)

	static := staticHandler(svc, log)
	for _, base := range staticBases {
		r.Get(base+"/*", static.ServeHTTP)
		r.Head(base+"/*", static.ServeHTTP)
	}

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// getRoutes godoc
// @Summary      Current route table
// @Description  Served entries, every configured root mapping (duplicates and stale roots included) and the fixed mounts.
// @Tags         routes
// @Produce      json
// @Success      200  {object}  types.RoutesResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /api/routes [get]
func getRoutes(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := svc.Current()
		if s == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "route table not ready")
			return
		}
		writeJSON(w, NewSnapshotRoutesResponse(s))
	}
}

// getRoots godoc
// @Summary      Resolved model roots
// @Description  Existence-filtered roots for loras, checkpoints and diffusion_models.
// @Tags         roots
// @Produce      json
// @Success      200  {object}  types.RootsResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /api/roots [get]
func getRoots(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !svc.Ready() {
			writeJSONError(w, http.StatusServiceUnavailable, "route table not ready")
			return
		}
		writeJSON(w, NewRootsResponse(svc.RootSets()))
	}
}

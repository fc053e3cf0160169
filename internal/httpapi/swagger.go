//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// MountSwagger serves the generated API document and UI under /swagger/.
// Nothing is mounted until the docs have been generated.
func MountSwagger(r chi.Router) {
	if _, err := swag.ReadDoc(); err != nil {
		return
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

package httpapi

import "github.com/rs/zerolog"

// DefaultHomePath is where GET / redirects.
const DefaultHomePath = "/loras"

// Options configures the HTTP layer. The zero value is usable.
type Options struct {
	Logger zerolog.Logger
	// HomePath is the redirect target for GET /. Empty uses DefaultHomePath.
	HomePath string
	// CORS is opt-in: nothing is added unless CORSOrigins is non-empty.
	CORSOrigins []string
	CORSMethods []string
	CORSHeaders []string
}

func (o Options) homePath() string {
	if o.HomePath == "" {
		return DefaultHomePath
	}
	return o.HomePath
}

func (o Options) corsMethods() []string {
	if len(o.CORSMethods) == 0 {
		return []string{"GET", "HEAD", "OPTIONS"}
	}
	return o.CORSMethods
}

func (o Options) corsHeaders() []string {
	if len(o.CORSHeaders) == 0 {
		return []string{"Accept", "Content-Type", "X-Request-ID"}
	}
	return o.CORSHeaders
}

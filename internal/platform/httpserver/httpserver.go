// Package httpserver builds the process HTTP server with limits matched to
// the engine's request profile: small JSON bodies, short owner-locked
// operations. The write timeout leaves headroom over the 30s handler timeout
// so the middleware deadline fires first and the client gets a response.
package httpserver

import (
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 35 * time.Second
	idleTimeout       = 2 * time.Minute
	// Requests carry ids and short name/tag lists; anything larger is abuse.
	maxHeaderBytes = 64 << 10
)

func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}
}

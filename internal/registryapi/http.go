// Copyright 2026 The polka-agent Authors
// This file is part of the polka-agent library.
//
// The polka-agent library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The polka-agent library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the polka-agent library. If not, see <http://www.gnu.org/licenses/>.

package registryapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/metrics/exp"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// HTTPConfig is the endpoint configuration of the registry RPC server.
type HTTPConfig struct {
	CorsAllowedOrigins []string // Origins allowed to make cross-domain HTTP requests
	WSOrigins          []string // Origins allowed to open websocket connections
	Metrics            bool     // Expose the metrics registry under /debug/metrics
}

// NewHandler returns an HTTP handler that serves JSON-RPC over HTTP and
// websocket on the root path.
func NewHandler(srv *rpc.Server, cfg HTTPConfig) http.Handler {
	var (
		mux  = http.NewServeMux()
		rpcH = newCorsHandler(srv, cfg.CorsAllowedOrigins)
		wsH  = srv.WebsocketHandler(cfg.WSOrigins)
	)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isWebsocket(r) {
			wsH.ServeHTTP(w, r)
			return
		}
		rpcH.ServeHTTP(w, r)
	}))
	if cfg.Metrics {
		mux.Handle("/debug/metrics", exp.ExpHandler(metrics.DefaultRegistry))
	}
	return mux
}

func newCorsHandler(h http.Handler, allowedOrigins []string) http.Handler {
	// Skip wrapping if no origins are configured.
	if len(allowedOrigins) == 0 {
		return h
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodGet},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	})
	return c.Handler(h)
}

// isWebsocket checks the header of an http request for a websocket upgrade.
func isWebsocket(r *http.Request) bool {
	return strings.ToLower(r.Header.Get("Upgrade")) == "websocket" &&
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}

// Serve handles requests on l until ctx is cancelled, then shuts the server
// down gracefully.
func Serve(ctx context.Context, l net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:     h,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server started", "endpoint", l.Addr())
		if err := srv.Serve(l); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		log.Info("HTTP server stopped", "endpoint", l.Addr())
		return err
	})
	return g.Wait()
}

// Copyright 2026 The polka-agent Authors
// This file is part of polka-agent.
//
// polka-agent is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// polka-agent is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with polka-agent. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jellyfishtechnology/polka-agent/internal/registryapi"
	"gopkg.in/urfave/cli.v1"
)

var (
	serveFlags = []cli.Flag{
		httpListenAddrFlag,
		httpPortFlag,
		httpCORSDomainFlag,
		wsAllowedOriginsFlag,
	}

	serveCommand = cli.Command{
		Action:   migrateFlags(serve),
		Name:     "serve",
		Usage:    "Serve the registry JSON-RPC API over HTTP and websocket",
		Flags:    serveFlags,
		Category: "RPC COMMANDS",
		Description: `
The serve command exposes the registry namespace on the configured HTTP
endpoint. Websocket clients connect to the same address. With --metrics
the metrics registry is published under /debug/metrics.`,
	}
)

func serve(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	executor, closer, err := openExecutorWithConfig(&cfg)
	if err != nil {
		return err
	}
	defer closer()

	if !executor.Deployed() {
		log.Warn("Registry not deployed yet, calls will fail until deploy is run")
	}
	srv, err := registryapi.NewServer(executor)
	if err != nil {
		return err
	}
	defer srv.Stop()

	handler := registryapi.NewHandler(srv, registryapi.HTTPConfig{
		CorsAllowedOrigins: cfg.Node.HTTPCors,
		WSOrigins:          cfg.Node.WSOrigins,
		Metrics:            cfg.Metrics.Enabled,
	})
	endpoint := net.JoinHostPort(cfg.Node.HTTPHost, fmt.Sprint(cfg.Node.HTTPPort))
	listener, err := net.Listen("tcp", endpoint)
	if err != nil {
		return err
	}
	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Serving registry API", "http", "http://"+listener.Addr().String(), "ws", "ws://"+listener.Addr().String())
	return registryapi.Serve(sigctx, listener, handler)
}

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

// agentreg is the command line interface of the agent registry.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jellyfishtechnology/polka-agent/core"
	"github.com/jellyfishtechnology/polka-agent/core/rawdb"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"
)

const clientIdentifier = "agentreg"

var app = newApp()

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = clientIdentifier
	app.Usage = "the agent registry and rental marketplace command line interface"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		configFileFlag,
		dataDirFlag,
		verbosityFlag,
		fromFlag,
		valueFlag,
		metricsEnabledFlag,
	}
	app.Flags = append(app.Flags, serveFlags...)
	app.Commands = []cli.Command{
		deployCommand,
		registerCommand,
		rentCommand,
		deactivateCommand,
		fundCommand,
		agentCommand,
		agentsCommand,
		totalCommand,
		ownerCommand,
		balanceCommand,
		quoteCommand,
		logsCommand,
		accountCommand,
		serveCommand,
		dumpConfigCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		setupLogging(ctx, os.Stderr)
		return nil
	}
	return app
}

func main() {
	if err := app.Run(os.Args); err != nil {
		Fatalf("%v", err)
	}
}

// setupLogging installs a terminal log handler on the root logger. Colour is
// used only when the output is a terminal.
func setupLogging(ctx *cli.Context, stderr *os.File) {
	var (
		output   io.Writer = stderr
		usecolor           = (isatty.IsTerminal(stderr.Fd()) || isatty.IsCygwinTerminal(stderr.Fd())) && os.Getenv("TERM") != "dumb"
	)
	if usecolor {
		output = colorable.NewColorable(stderr)
	}
	handler := log.StreamHandler(output, log.TerminalFormat(usecolor))
	lvl := log.Lvl(ctx.GlobalInt(verbosityFlag.Name))
	log.Root().SetHandler(log.LvlFilterHandler(lvl, handler))
}

// openExecutor opens the registry database in the data directory.
func openExecutor(ctx *cli.Context) (*core.Executor, func(), error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	return openExecutorWithConfig(&cfg)
}

func openExecutorWithConfig(cfg *agentregConfig) (*core.Executor, func(), error) {
	if cfg.Node.DataDir == "" {
		return nil, nil, fmt.Errorf("no data directory, set --%s", dataDirFlag.Name)
	}
	if err := os.MkdirAll(cfg.Node.DataDir, 0700); err != nil {
		return nil, nil, err
	}
	file := filepath.Join(cfg.Node.DataDir, "registrydata")
	db, err := rawdb.NewLevelDBDatabase(file, cfg.Node.DatabaseCache, cfg.Node.DatabaseHandles, "agentreg/db/registry/", false)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", file, err)
	}
	executor, err := core.NewExecutor(db, cfg.Registry.ContractAddress)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Debug("Opened registry database", "path", file, "contract", cfg.Registry.ContractAddress)
	return executor, func() { db.Close() }, nil
}

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
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"unicode"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/jellyfishtechnology/polka-agent/params"
	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      migrateFlags(dumpConfig),
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[<file>]",
		Flags:       serveFlags,
		Category:    "MISCELLANEOUS COMMANDS",
		Description: `The dumpconfig command shows configuration values.`,
	}

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// NodeConfig holds the storage and RPC endpoint settings.
type NodeConfig struct {
	DataDir string

	DatabaseCache   int // Megabytes of memory allocated to the LevelDB cache
	DatabaseHandles int // Number of open files LevelDB may use

	HTTPHost string
	HTTPPort int
	// HTTPCors is the Cross-Origin Resource Sharing header to send to requesting
	// clients. Please be aware that CORS is a browser enforced security, it's fully
	// useless for custom HTTP clients.
	HTTPCors []string `toml:",omitempty"`

	// WSOrigins is the list of domain to accept websocket requests from.
	WSOrigins []string `toml:",omitempty"`
}

// MetricsConfig contains the configuration of metric collection.
type MetricsConfig struct {
	Enabled bool
}

type agentregConfig struct {
	Registry params.RegistryConfig
	Node     NodeConfig
	Metrics  MetricsConfig
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".agentreg")
}

func defaultNodeConfig() NodeConfig {
	return NodeConfig{
		DataDir:         defaultDataDir(),
		DatabaseCache:   16,
		DatabaseHandles: 16,
		HTTPHost:        "localhost",
		HTTPPort:        8645,
	}
}

func loadConfig(file string, cfg *agentregConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the agentreg configuration: defaults first, then the
// config file, then command line flags.
func makeConfig(ctx *cli.Context) (agentregConfig, error) {
	cfg := agentregConfig{
		Registry: params.DefaultRegistryConfig,
		Node:     defaultNodeConfig(),
	}
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	applyNodeConfig(ctx, &cfg.Node)
	applyMetricConfig(ctx, &cfg)

	if err := cfg.Registry.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid registry config: %w", err)
	}
	return cfg, nil
}

func applyNodeConfig(ctx *cli.Context, cfg *NodeConfig) {
	if ctx.GlobalIsSet(dataDirFlag.Name) || cfg.DataDir == "" {
		cfg.DataDir = ctx.GlobalString(dataDirFlag.Name)
	}
	if ctx.GlobalIsSet(httpListenAddrFlag.Name) {
		cfg.HTTPHost = ctx.GlobalString(httpListenAddrFlag.Name)
	}
	if ctx.GlobalIsSet(httpPortFlag.Name) {
		cfg.HTTPPort = ctx.GlobalInt(httpPortFlag.Name)
	}
	if ctx.GlobalIsSet(httpCORSDomainFlag.Name) {
		cfg.HTTPCors = splitAndTrim(ctx.GlobalString(httpCORSDomainFlag.Name))
	}
	if ctx.GlobalIsSet(wsAllowedOriginsFlag.Name) {
		cfg.WSOrigins = splitAndTrim(ctx.GlobalString(wsAllowedOriginsFlag.Name))
	}
}

func applyMetricConfig(ctx *cli.Context, cfg *agentregConfig) {
	if ctx.GlobalIsSet(metricsEnabledFlag.Name) {
		cfg.Metrics.Enabled = ctx.GlobalBool(metricsEnabledFlag.Name)
	}
	// Meters are created at package init, collection can only be switched
	// on from the command line.
	if cfg.Metrics.Enabled && !metrics.Enabled {
		log.Warn("Metrics collection requested by config, restart with --metrics to record values")
	}
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}

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
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/urfave/cli.v1"
)

var accountCommand = cli.Command{
	Name:     "account",
	Usage:    "Manage local accounts",
	Category: "ACCOUNT COMMANDS",
	Subcommands: []cli.Command{
		{
			Name:   "new",
			Usage:  "Create a new account",
			Action: migrateFlags(accountCreate),
			Description: `
    agentreg account new

Creates a new account and prints the address. The private key is stored
unencrypted as hex in the keys directory of the data directory. It is
meant for development use only.`,
		},
		{
			Name:   "list",
			Usage:  "Print summary of existing accounts",
			Action: migrateFlags(accountList),
		},
	},
}

func keysDir(ctx *cli.Context) (string, error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return "", err
	}
	if cfg.Node.DataDir == "" {
		return "", fmt.Errorf("no data directory, set --%s", dataDirFlag.Name)
	}
	return filepath.Join(cfg.Node.DataDir, "keys"), nil
}

// accountCreate creates a new account and stores its key in the data directory.
func accountCreate(ctx *cli.Context) error {
	dir, err := keysDir(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)
	path := filepath.Join(dir, addr.Hex()+".key")
	if err := crypto.SaveECDSA(path, key); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}
	log.Debug("Stored account key", "path", path)

	fmt.Fprintf(ctx.App.Writer, "Public address of the key:   %s\n", addr.Hex())
	fmt.Fprintf(ctx.App.Writer, "Path of the secret key file: %s\n", path)
	return nil
}

func accountList(ctx *cli.Context) error {
	dir, err := keysDir(ctx)
	if err != nil {
		return err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.key"))
	if err != nil {
		return err
	}
	for i, file := range files {
		key, err := crypto.LoadECDSA(file)
		if err != nil {
			log.Warn("Skipping unreadable key", "path", file, "err", err)
			continue
		}
		fmt.Fprintf(ctx.App.Writer, "Account #%d: {%x} %s\n", i, crypto.PubkeyToAddress(key.PublicKey), file)
	}
	return nil
}

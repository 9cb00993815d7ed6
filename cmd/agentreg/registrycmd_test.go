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
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/holiman/uint256"
	"github.com/jellyfishtechnology/polka-agent/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	platformHex = "0x9999999999999999999999999999999999999999"
	aliceHex    = "0xaAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa"
	bobHex      = "0xbBbBBBBBbbBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB"
)

func init() {
	color.NoColor = true
}

// runApp executes the command line with the given arguments, writing the
// command output to w.
func runApp(w io.Writer, args ...string) error {
	app := newApp()
	app.Writer = w
	return app.Run(append([]string{clientIdentifier, "--verbosity", "0"}, args...))
}

type cliTester struct {
	t   *testing.T
	dir string
}

func (c *cliTester) run(args ...string) string {
	c.t.Helper()
	var out bytes.Buffer
	err := runApp(&out, append([]string{"--datadir", c.dir}, args...)...)
	require.NoError(c.t, err, "agentreg %s", strings.Join(args, " "))
	return out.String()
}

func (c *cliTester) fail(args ...string) error {
	c.t.Helper()
	var out bytes.Buffer
	err := runApp(&out, append([]string{"--datadir", c.dir}, args...)...)
	require.Error(c.t, err, "agentreg %s", strings.Join(args, " "))
	return err
}

func TestCommandFlow(t *testing.T) {
	c := &cliTester{t: t, dir: t.TempDir()}

	assert.Contains(t, c.run("--from", platformHex, "deploy", "--fee", "5"), "registry deployed")
	assert.Contains(t, c.run("register", "--from", aliceHex, "--price", "1000", "--description", "EN to DE", "Translator"), "agent 0 registered")
	c.run("fund", bobHex, "20000")

	quote := c.run("quote", "0", "10")
	assert.Contains(t, quote, "Total:   10000")
	assert.Contains(t, quote, "Fee:     500")

	// Without --value the quoted cost is paid.
	assert.Contains(t, c.run("--from", bobHex, "rent", "0", "10"), "agent 0 rented")
	assert.Contains(t, c.run("balance", aliceHex), "9500 planck")
	assert.Contains(t, c.run("--from", bobHex, "balance"), "10000 planck")

	agent := c.run("agent", "0")
	assert.Contains(t, agent, "Translator")
	assert.Contains(t, agent, "active")
	assert.Contains(t, agent, "Rentals:      1")

	assert.Equal(t, "1\n", c.run("total"))
	assert.Contains(t, c.run("owner"), "Fee:   5%")

	logs := c.run("logs")
	assert.Contains(t, logs, "AgentRegistered")
	assert.Contains(t, logs, "AgentRented")

	err := c.fail("deactivate", "--from", bobHex, "0")
	assert.Contains(t, err.Error(), "unauthorized")
	c.run("deactivate", "--from", aliceHex, "0")
	assert.Contains(t, c.run("agents"), "inactive")

	err = c.fail("--from", bobHex, "--value", "10000", "rent", "0", "1")
	assert.Contains(t, err.Error(), "not active")
	assert.Contains(t, c.run("balance", bobHex), "10000 planck")
}

func TestCommandErrors(t *testing.T) {
	c := &cliTester{t: t, dir: t.TempDir()}

	assert.Contains(t, c.fail("total").Error(), "not deployed")
	assert.Equal(t, errMissingFrom, c.fail("deploy"))
	assert.Contains(t, c.fail("--from", platformHex, "deploy", "--fee", "101").Error(), "fee")

	c.run("--from", platformHex, "deploy")
	assert.Contains(t, c.fail("--from", platformHex, "deploy").Error(), "already deployed")
	assert.Contains(t, c.fail("--from", "0x12", "register", "x").Error(), "invalid address")
	assert.Contains(t, c.fail("--from", aliceHex, "rent", "x", "1").Error(), "invalid agent id")
	assert.Contains(t, c.fail("--from", aliceHex, "rent", "0").Error(), "expected 2 arguments")
	assert.Contains(t, c.fail("--from", aliceHex, "--value", "5", "register", "x").Error(), "not payable")
	assert.Contains(t, c.fail("agent", "4").Error(), "not found")
}

func TestAccountNew(t *testing.T) {
	c := &cliTester{t: t, dir: t.TempDir()}

	out := c.run("account", "new")
	assert.Contains(t, out, "Public address of the key:")
	matches, err := filepath.Glob(filepath.Join(c.dir, "keys", "*.key"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Contains(t, c.run("account", "list"), "Account #0")
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want *uint256.Int
		fail bool
	}{
		{in: "", want: types.NewBalance(0)},
		{in: "1000", want: types.NewBalance(1000)},
		{in: "0x10", want: types.NewBalance(16)},
		{in: "3DOT", want: types.NewBalance(30_000_000_000)},
		{in: "2 dot", want: types.NewBalance(20_000_000_000)},
		{in: "0xffffffffffffffffffffffffffffffff", want: types.MaxBalance},
		{in: "0x100000000000000000000000000000000", fail: true},
		{in: "-1", fail: true},
		{in: "ten", fail: true},
	}
	for _, tt := range tests {
		have, err := parseAmount(tt.in)
		if tt.fail {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, have, "input %q", tt.in)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0 DOT", formatAmount(types.NewBalance(0)))
	assert.Equal(t, "1 DOT", formatAmount(types.NewBalance(10_000_000_000)))
	assert.Equal(t, "1.5 DOT", formatAmount(types.NewBalance(15_000_000_000)))
	assert.Equal(t, "0.0000000001 DOT", formatAmount(types.NewBalance(1)))
}

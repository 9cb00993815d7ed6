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
	"io"
	"math/big"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/jellyfishtechnology/polka-agent/core/types"
	"github.com/jellyfishtechnology/polka-agent/params"
	"gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the registry database and keys",
		Value: defaultDataDir(),
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	fromFlag = cli.StringFlag{
		Name:  "from",
		Usage: "Account making the call",
	}
	valueFlag = cli.StringFlag{
		Name:  "value",
		Usage: "Value attached to the call, in planck (decimal or 0x hex)",
	}
	metricsEnabledFlag = cli.BoolFlag{
		Name:  "metrics",
		Usage: "Enable metrics collection and reporting",
	}

	feeFlag = cli.IntFlag{
		Name:  "fee",
		Usage: "Platform fee in percent charged on every rental",
		Value: int(params.DefaultRegistryConfig.PlatformFeePercent),
	}
	priceFlag = cli.StringFlag{
		Name:  "price",
		Usage: "Rental price per day, in planck",
		Value: "0",
	}
	descriptionFlag = cli.StringFlag{
		Name:  "description",
		Usage: "Agent description",
	}

	httpListenAddrFlag = cli.StringFlag{
		Name:  "http.addr",
		Usage: "HTTP-RPC server listening interface",
		Value: defaultNodeConfig().HTTPHost,
	}
	httpPortFlag = cli.IntFlag{
		Name:  "http.port",
		Usage: "HTTP-RPC server listening port",
		Value: defaultNodeConfig().HTTPPort,
	}
	httpCORSDomainFlag = cli.StringFlag{
		Name:  "http.corsdomain",
		Usage: "Comma separated list of domains from which to accept cross origin requests (browser enforced)",
	}
	wsAllowedOriginsFlag = cli.StringFlag{
		Name:  "ws.origins",
		Usage: "Origins from which to accept websockets requests",
	}
)

// Fatalf formats a message to standard error and exits the program.
// The message is also printed to standard output if standard error
// is redirected to a different file.
func Fatalf(format string, args ...interface{}) {
	w := io.MultiWriter(os.Stdout, os.Stderr)
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		}
	}
	fmt.Fprintf(w, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

// migrateFlags copies every command level flag that is set into the global
// flag set, so that
//
//	agentreg rent --from 0x.. 0 3
//
// reads the same flags as agentreg --from 0x.. rent 0 3.
func migrateFlags(action func(ctx *cli.Context) error) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		for _, name := range ctx.FlagNames() {
			if ctx.IsSet(name) {
				ctx.GlobalSet(name, ctx.String(name))
			}
		}
		return action(ctx)
	}
}

// splitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func splitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}

// parseAddress parses a hex account address.
func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// parseAmount parses a decimal or hex planck amount. A trailing token symbol
// multiplies the integer part by one DOT, e.g. "3DOT".
func parseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(uint256.Int), nil
	}
	multiplier := big.NewInt(params.Planck)
	if trimmed := strings.TrimSuffix(strings.ToUpper(s), params.TokenSymbol); len(trimmed) != len(s) {
		s, multiplier = strings.TrimSpace(trimmed), big.NewInt(params.DOT)
	}
	v, ok := math.ParseBig256(s)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	v.Mul(v, multiplier)
	if v.Cmp(types.MaxBalance.ToBig()) > 0 {
		return nil, fmt.Errorf("amount %v exceeds 128 bits", v)
	}
	return types.BalanceFromBig(v), nil
}

// parseUint32 parses a decimal agent id or day count.
func parseUint32(what, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return uint32(v), nil
}

// formatAmount renders a planck amount as DOT.
func formatAmount(v *uint256.Int) string {
	var (
		unit  = new(uint256.Int).SetUint64(params.DOT)
		whole = new(uint256.Int).Div(v, unit)
		frac  = new(uint256.Int).Mod(v, unit)
	)
	if frac.IsZero() {
		return fmt.Sprintf("%s %s", whole.ToBig(), params.TokenSymbol)
	}
	digits := fmt.Sprintf("%0*d", params.TokenDecimals, frac.Uint64())
	return fmt.Sprintf("%s.%s %s", whole.ToBig(), strings.TrimRight(digits, "0"), params.TokenSymbol)
}

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
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/holiman/uint256"
	"github.com/jellyfishtechnology/polka-agent/core"
	"github.com/jellyfishtechnology/polka-agent/core/types"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"
)

var (
	txFlags = []cli.Flag{fromFlag, valueFlag}

	deployCommand = cli.Command{
		Action:    migrateFlags(deploy),
		Name:      "deploy",
		Usage:     "Deploy the registry owned by --from",
		ArgsUsage: "",
		Flags:     append([]cli.Flag{feeFlag}, txFlags...),
		Category:  "REGISTRY COMMANDS",
		Description: `
The deploy command creates the registry in the data directory. The --from
account becomes the platform owner. The platform fee defaults to the value
of the configuration file and cannot be changed later.`,
	}
	registerCommand = cli.Command{
		Action:    migrateFlags(register),
		Name:      "register",
		Usage:     "Register a new agent owned by --from",
		ArgsUsage: "<name>",
		Flags:     append([]cli.Flag{priceFlag, descriptionFlag}, txFlags...),
		Category:  "REGISTRY COMMANDS",
	}
	rentCommand = cli.Command{
		Action:    migrateFlags(rent),
		Name:      "rent",
		Usage:     "Rent an agent for a number of days",
		ArgsUsage: "<id> <days>",
		Flags:     txFlags,
		Category:  "REGISTRY COMMANDS",
		Description: `
The rent command pays --value to the registry for renting the agent. Without
--value the exact rental cost is paid.`,
	}
	deactivateCommand = cli.Command{
		Action:    migrateFlags(deactivate),
		Name:      "deactivate",
		Usage:     "Deactivate an agent owned by --from",
		ArgsUsage: "<id>",
		Flags:     txFlags,
		Category:  "REGISTRY COMMANDS",
	}
	fundCommand = cli.Command{
		Action:    migrateFlags(fund),
		Name:      "fund",
		Usage:     "Credit an account with development funds",
		ArgsUsage: "<address> <amount>",
		Category:  "REGISTRY COMMANDS",
	}
	agentCommand = cli.Command{
		Action:    migrateFlags(showAgent),
		Name:      "agent",
		Usage:     "Show a registered agent",
		ArgsUsage: "<id>",
		Category:  "QUERY COMMANDS",
	}
	agentsCommand = cli.Command{
		Action:   migrateFlags(listAgents),
		Name:     "agents",
		Usage:    "List every registered agent",
		Category: "QUERY COMMANDS",
	}
	totalCommand = cli.Command{
		Action:   migrateFlags(showTotal),
		Name:     "total",
		Usage:    "Show the number of registrations",
		Category: "QUERY COMMANDS",
	}
	ownerCommand = cli.Command{
		Action:   migrateFlags(showOwner),
		Name:     "owner",
		Usage:    "Show the platform owner and fee",
		Category: "QUERY COMMANDS",
	}
	balanceCommand = cli.Command{
		Action:    migrateFlags(showBalance),
		Name:      "balance",
		Usage:     "Show the ledger balance of an account",
		ArgsUsage: "[<address>]",
		Category:  "QUERY COMMANDS",
	}
	quoteCommand = cli.Command{
		Action:    migrateFlags(showQuote),
		Name:      "quote",
		Usage:     "Show the cost of renting an agent",
		ArgsUsage: "<id> <days>",
		Category:  "QUERY COMMANDS",
	}
	logsCommand = cli.Command{
		Action:   migrateFlags(listLogs),
		Name:     "logs",
		Usage:    "List the registry event log",
		Category: "QUERY COMMANDS",
	}
)

var errMissingFrom = errors.New("no caller, set --from")

func caller(ctx *cli.Context) (common.Address, error) {
	from := ctx.GlobalString(fromFlag.Name)
	if from == "" {
		return common.Address{}, errMissingFrom
	}
	return parseAddress(from)
}

func wantArgs(ctx *cli.Context, n int) error {
	if ctx.NArg() != n {
		return fmt.Errorf("expected %d arguments, got %d (usage: %s %s)", n, ctx.NArg(), ctx.Command.Name, ctx.Command.ArgsUsage)
	}
	return nil
}

func success(ctx *cli.Context, format string, args ...interface{}) {
	fmt.Fprintf(ctx.App.Writer, "%s %s\n", color.GreenString("OK"), fmt.Sprintf(format, args...))
}

func deploy(ctx *cli.Context) error {
	from, err := caller(ctx)
	if err != nil {
		return err
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	fee := int(cfg.Registry.PlatformFeePercent)
	if ctx.IsSet(feeFlag.Name) {
		fee = ctx.Int(feeFlag.Name)
	}
	if fee < 0 || fee > 255 {
		return fmt.Errorf("invalid fee %d", fee)
	}
	executor, closer, err := openExecutorWithConfig(&cfg)
	if err != nil {
		return err
	}
	defer closer()

	if err := executor.Deploy(from, uint8(fee)); err != nil {
		return err
	}
	success(ctx, "registry deployed, owner %s, fee %d%%", from.Hex(), fee)
	return nil
}

func register(ctx *cli.Context) error {
	if err := wantArgs(ctx, 1); err != nil {
		return err
	}
	from, err := caller(ctx)
	if err != nil {
		return err
	}
	price, err := parseAmount(ctx.String(priceFlag.Name))
	if err != nil {
		return err
	}
	value, err := parseAmount(ctx.GlobalString(valueFlag.Name))
	if err != nil {
		return err
	}
	executor, closer, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer closer()

	msg := core.NewRegisterMessage(from, ctx.Args().First(), ctx.String(descriptionFlag.Name), price)
	msg.Value = value
	res, err := executor.ApplyMessage(msg)
	if err != nil {
		return err
	}
	success(ctx, "agent %d registered", res.AgentID)
	return nil
}

func rent(ctx *cli.Context) error {
	if err := wantArgs(ctx, 2); err != nil {
		return err
	}
	from, err := caller(ctx)
	if err != nil {
		return err
	}
	id, err := parseUint32("agent id", ctx.Args().Get(0))
	if err != nil {
		return err
	}
	days, err := parseUint32("duration", ctx.Args().Get(1))
	if err != nil {
		return err
	}
	executor, closer, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer closer()

	var value *uint256.Int
	if ctx.GlobalIsSet(valueFlag.Name) {
		if value, err = parseAmount(ctx.GlobalString(valueFlag.Name)); err != nil {
			return err
		}
	} else {
		if value, _, _, err = executor.Quote(id, days); err != nil {
			return err
		}
	}
	if err := executor.RentAgent(from, value, id, days); err != nil {
		return err
	}
	success(ctx, "agent %d rented for %d days, paid %s", id, days, formatAmount(value))
	return nil
}

func deactivate(ctx *cli.Context) error {
	if err := wantArgs(ctx, 1); err != nil {
		return err
	}
	from, err := caller(ctx)
	if err != nil {
		return err
	}
	id, err := parseUint32("agent id", ctx.Args().First())
	if err != nil {
		return err
	}
	executor, closer, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer closer()

	if err := executor.DeactivateAgent(from, id); err != nil {
		return err
	}
	success(ctx, "agent %d deactivated", id)
	return nil
}

func fund(ctx *cli.Context) error {
	if err := wantArgs(ctx, 2); err != nil {
		return err
	}
	addr, err := parseAddress(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx.Args().Get(1))
	if err != nil {
		return err
	}
	executor, closer, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer closer()

	if err := executor.Fund(addr, amount); err != nil {
		return err
	}
	success(ctx, "%s funded, balance %s", addr.Hex(), formatAmount(executor.Balance(addr)))
	return nil
}

func showAgent(ctx *cli.Context) error {
	if err := wantArgs(ctx, 1); err != nil {
		return err
	}
	id, err := parseUint32("agent id", ctx.Args().First())
	if err != nil {
		return err
	}
	executor, closer, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer closer()

	agent, err := executor.Agent(id)
	if err != nil {
		return err
	}
	if agent == nil {
		return fmt.Errorf("agent %d not found", id)
	}
	w := ctx.App.Writer
	fmt.Fprintf(w, "ID:           %d\n", agent.ID)
	fmt.Fprintf(w, "Owner:        %s\n", agent.Owner.Hex())
	fmt.Fprintf(w, "Name:         %s\n", agent.Name)
	fmt.Fprintf(w, "Description:  %s\n", agent.Description)
	fmt.Fprintf(w, "Price/day:    %s\n", formatAmount(agent.PricePerDay))
	fmt.Fprintf(w, "Status:       %s\n", status(agent.Active))
	fmt.Fprintf(w, "Rentals:      %d\n", agent.TotalRentals)
	return nil
}

func status(active bool) string {
	if active {
		return color.GreenString("active")
	}
	return color.RedString("inactive")
}

func listAgents(ctx *cli.Context) error {
	executor, closer, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer closer()

	agents, err := executor.Agents()
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"ID", "Owner", "Name", "Price/day", "Status", "Rentals"})
	for _, agent := range agents {
		table.Append([]string{
			strconv.FormatUint(uint64(agent.ID), 10),
			agent.Owner.Hex(),
			agent.Name,
			formatAmount(agent.PricePerDay),
			status(agent.Active),
			strconv.FormatUint(agent.TotalRentals, 10),
		})
	}
	table.Render()
	return nil
}

func showTotal(ctx *cli.Context) error {
	executor, closer, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer closer()

	total, err := executor.TotalAgents()
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, total)
	return nil
}

func showOwner(ctx *cli.Context) error {
	executor, closer, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer closer()

	owner, err := executor.Owner()
	if err != nil {
		return err
	}
	fee, err := executor.PlatformFeePercent()
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Owner: %s\nFee:   %d%%\n", owner.Hex(), fee)
	return nil
}

func showBalance(ctx *cli.Context) error {
	var (
		addr common.Address
		err  error
	)
	if ctx.NArg() > 0 {
		addr, err = parseAddress(ctx.Args().First())
	} else {
		addr, err = caller(ctx)
	}
	if err != nil {
		return err
	}
	executor, closer, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer closer()

	balance := executor.Balance(addr)
	fmt.Fprintf(ctx.App.Writer, "%s planck (%s)\n", balance.ToBig(), formatAmount(balance))
	return nil
}

func showQuote(ctx *cli.Context) error {
	if err := wantArgs(ctx, 2); err != nil {
		return err
	}
	id, err := parseUint32("agent id", ctx.Args().Get(0))
	if err != nil {
		return err
	}
	days, err := parseUint32("duration", ctx.Args().Get(1))
	if err != nil {
		return err
	}
	executor, closer, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer closer()

	total, fee, creator, err := executor.Quote(id, days)
	if err != nil {
		return err
	}
	w := ctx.App.Writer
	fmt.Fprintf(w, "Total:   %s\n", total.ToBig())
	fmt.Fprintf(w, "Fee:     %s\n", fee.ToBig())
	fmt.Fprintf(w, "Creator: %s\n", creator.ToBig())
	return nil
}

func listLogs(ctx *cli.Context) error {
	executor, closer, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer closer()

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Index", "Event", "Agent", "Account", "Detail"})
	for _, l := range executor.Logs() {
		row := []string{strconv.FormatUint(l.Index, 10), "unknown", "", "", ""}
		ev, err := types.DecodeEvent(l)
		switch ev := ev.(type) {
		case *types.AgentRegistered:
			row[1], row[2], row[3], row[4] = ev.Kind(), strconv.FormatUint(uint64(ev.AgentID), 10), ev.Owner.Hex(), ev.Name
		case *types.AgentRented:
			row[1], row[2], row[3], row[4] = ev.Kind(), strconv.FormatUint(uint64(ev.AgentID), 10), ev.Renter.Hex(), formatAmount(ev.AmountPaid)
		default:
			if err != nil {
				row[4] = err.Error()
			}
		}
		table.Append(row)
	}
	table.Render()
	return nil
}

// Copyright 2025 The jcc-moac-abi Authors
// This file is part of the jcc-moac-abi library.
//
// The jcc-moac-abi library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The jcc-moac-abi library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the jcc-moac-abi library. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	moacabi "github.com/JCCDex/jcc-moac-abi"
	"github.com/JCCDex/jcc-moac-abi/internal/flags"
	"github.com/JCCDex/jcc-moac-abi/mcclient"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var (
	logFileFlag = &flags.PathFlag{
		Name:     "file",
		Usage:    "JSON file holding an array of raw logs, - for stdin",
		Category: flags.ABICategory,
	}
	txFlag = &cli.StringFlag{
		Name:     "tx",
		Usage:    "Decode the receipt logs of this transaction hash",
		Category: flags.RPCCategory,
	}
	fromBlockFlag = &flags.BigFlag{
		Name:     "from",
		Usage:    "First block of the log query",
		Category: flags.RPCCategory,
	}
	toBlockFlag = &flags.BigFlag{
		Name:        "to",
		Usage:       "Last block of the log query",
		DefaultText: "latest",
		Category:    flags.RPCCategory,
	}
	addressFlag = &cli.StringSliceFlag{
		Name:     "address",
		Usage:    "Contract addresses the log query is restricted to",
		Category: flags.RPCCategory,
	}
)

var (
	codecFlags = []cli.Flag{abiFlag, logOutputFlag, strictFlag}

	encodeCommand = &cli.Command{
		Action:    encode,
		Name:      "encode",
		Usage:     "Encode a contract call",
		ArgsUsage: "<function> [args...]",
		Flags:     codecFlags,
		Description: `
The encode command prints the call data of a function call. Arguments are
parsed as JSON where possible, so numbers, booleans, arrays and tuples can be
given literally; anything else is taken as a string.

    moacabi encode --abi erc20.json transfer 0x533243557dfdc87ae5bda885e22db00f87499971 30000000000000000`,
	}
	decodeCommand = &cli.Command{
		Action:    decode,
		Name:      "decode",
		Usage:     "Decode contract call data",
		ArgsUsage: "<calldata>",
		Flags:     codecFlags,
	}
	logsCommand = &cli.Command{
		Action:    decodeLogs,
		Name:      "logs",
		Usage:     "Decode contract event logs",
		ArgsUsage: "",
		Flags: append(append([]cli.Flag{}, codecFlags...),
			logFileFlag, rpcFlag, namespaceFlag, txFlag, fromBlockFlag, toBlockFlag, addressFlag),
		Description: `
The logs command decodes raw logs read from a file, the receipt of a
transaction or a log query against a MOAC node.`,
	}
	selectorsCommand = &cli.Command{
		Action:    listSelectors,
		Name:      "selectors",
		Usage:     "List the selectors of an ABI, or look some up",
		ArgsUsage: "[selector...]",
		Flags:     codecFlags,
	}
	dumpConfigCommand = &cli.Command{
		Action:    dumpConfig,
		Name:      "dumpconfig",
		Usage:     "Export configuration values in a TOML format",
		ArgsUsage: "",
		Flags:     append(append([]cli.Flag{}, codecFlags...), rpcFlag, namespaceFlag),
	}
)

func encode(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return errors.New("function name required")
	}
	codec, _, err := makeCodec(ctx)
	if err != nil {
		return err
	}
	var (
		name = ctx.Args().First()
		args = make([]interface{}, 0, ctx.NArg()-1)
	)
	for _, arg := range ctx.Args().Tail() {
		args = append(args, parseArg(arg))
	}
	data, err := codec.Encode(name, args...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.App.Writer, data)
	return err
}

func decode(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("call data required")
	}
	codec, _, err := makeCodec(ctx)
	if err != nil {
		return err
	}
	call, err := codec.Decode(ctx.Args().First())
	if err != nil {
		return err
	}
	return printJSON(ctx.App.Writer, call)
}

func decodeLogs(ctx *cli.Context) error {
	if err := flags.CheckExclusive(ctx, logFileFlag, txFlag); err != nil {
		return err
	}
	if err := flags.CheckExclusive(ctx, txFlag, fromBlockFlag); err != nil {
		return err
	}
	codec, cfg, err := makeCodec(ctx)
	if err != nil {
		return err
	}
	var decoded []moacabi.DecodedLog
	if ctx.IsSet(logFileFlag.Name) {
		logs, err := readLogs(flags.Path(ctx, logFileFlag.Name), ctx.App.Reader)
		if err != nil {
			return err
		}
		if decoded, err = codec.DecodeLogs(logs); err != nil {
			return err
		}
		return printJSON(ctx.App.Writer, decoded)
	}
	if cfg.RPC.Endpoint == "" {
		return fmt.Errorf("no log source given, use --%s or --%s", logFileFlag.Name, rpcFlag.Name)
	}
	client, err := mcclient.DialContext(ctx.Context, cfg.RPC.Endpoint)
	if err != nil {
		return err
	}
	defer client.Close()
	client = client.WithNamespace(cfg.RPC.Namespace)

	if tx := ctx.String(txFlag.Name); tx != "" {
		log.Debug("Fetching receipt logs", "endpoint", cfg.RPC.Endpoint, "tx", tx)
		decoded, err = codec.TransactionLogs(ctx.Context, client, common.HexToHash(tx))
	} else {
		q := ethereum.FilterQuery{
			FromBlock: flags.GlobalBig(ctx, fromBlockFlag.Name),
			ToBlock:   flags.GlobalBig(ctx, toBlockFlag.Name),
		}
		for _, addr := range ctx.StringSlice(addressFlag.Name) {
			if !common.IsHexAddress(addr) {
				return fmt.Errorf("invalid address %q", addr)
			}
			q.Addresses = append(q.Addresses, common.HexToAddress(addr))
		}
		log.Debug("Querying logs", "endpoint", cfg.RPC.Endpoint, "from", q.FromBlock, "to", q.ToBlock, "addresses", len(q.Addresses))
		decoded, err = codec.FilterLogs(ctx.Context, client, q)
	}
	if err != nil {
		return err
	}
	return printJSON(ctx.App.Writer, decoded)
}

func listSelectors(ctx *cli.Context) error {
	codec, _, err := makeCodec(ctx)
	if err != nil {
		return err
	}
	w := ctx.App.Writer
	if ctx.NArg() == 0 {
		contract := codec.Contract()
		for _, m := range contract.Methods {
			fmt.Fprintf(w, "0x%s  function  %s\n", m.Selector(), m.Sig)
		}
		for _, e := range contract.Events {
			if e.Anonymous {
				fmt.Fprintf(w, "-  event  %s (anonymous)\n", e.Sig)
				continue
			}
			fmt.Fprintf(w, "0x%s  event  %s\n", e.Selector(), e.Sig)
		}
		return nil
	}
	table := codec.Table()
	if err := table.Register(codec.Contract()); err != nil {
		return err
	}
	for _, sel := range ctx.Args().Slice() {
		item, ok := table.Lookup(sel)
		if !ok {
			return fmt.Errorf("selector %s is not declared by the ABI", sel)
		}
		if err := printJSON(w, item); err != nil {
			return err
		}
	}
	return nil
}

// parseArg reads a command line argument as JSON, falling back to the raw
// string. Numbers are kept as json.Number so big integers survive.
func parseArg(arg string) interface{} {
	dec := json.NewDecoder(strings.NewReader(arg))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil || v == nil {
		return arg
	}
	// Trailing input after a valid value, e.g. "1 2"
	if _, err := dec.Token(); err != io.EOF {
		return arg
	}
	return v
}

func readLogs(path string, stdin io.Reader) ([]moacabi.Log, error) {
	var blob []byte
	var err error
	if path == "-" {
		blob, err = io.ReadAll(stdin)
	} else {
		blob, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	blob = bytes.TrimSpace(blob)

	var logs []moacabi.Log
	if len(blob) > 0 && blob[0] == '{' {
		var single moacabi.Log
		if err := json.Unmarshal(blob, &single); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return []moacabi.Log{single}, nil
	}
	if err := json.Unmarshal(blob, &logs); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return logs, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

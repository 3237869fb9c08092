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

// moacabi is a command-line tool encoding and decoding MOAC contract calls and
// event logs.
package main

import (
	"fmt"
	"os"

	"github.com/JCCDex/jcc-moac-abi/internal/debug"
	"github.com/JCCDex/jcc-moac-abi/internal/flags"
	"github.com/urfave/cli/v2"
)

var app = newApp()

func newApp() *cli.App {
	app := flags.NewApp("MOAC contract call data and event log codec")
	app.Flags = append([]cli.Flag{configFileFlag}, debug.Flags...)
	app.Commands = []*cli.Command{
		encodeCommand,
		decodeCommand,
		logsCommand,
		selectorsCommand,
		dumpConfigCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		return debug.Setup(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
	return app
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

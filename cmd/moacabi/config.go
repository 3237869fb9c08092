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
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	moacabi "github.com/JCCDex/jcc-moac-abi"
	"github.com/JCCDex/jcc-moac-abi/internal/flags"
	"github.com/JCCDex/jcc-moac-abi/mcclient"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

var (
	configFileFlag = &flags.PathFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
	abiFlag = &flags.PathFlag{
		Name:     "abi",
		Usage:    "Contract ABI JSON file",
		EnvVars:  []string{"MOACABI_ABI"},
		Category: flags.ABICategory,
	}
	logOutputFlag = &cli.StringFlag{
		Name:     "logs.output",
		Usage:    "Shape of decoded logs (reduced|merged)",
		Category: flags.ABICategory,
	}
	strictFlag = &cli.BoolFlag{
		Name:     "strict",
		Usage:    "Only decode selectors declared by the given ABI",
		Category: flags.ABICategory,
	}
	rpcFlag = &cli.StringFlag{
		Name:     "rpc",
		Usage:    "MOAC node RPC endpoint (http, ws or ipc)",
		EnvVars:  []string{"MOACABI_RPC"},
		Category: flags.RPCCategory,
	}
	namespaceFlag = &cli.StringFlag{
		Name:     "rpc.namespace",
		Usage:    "RPC namespace of the log methods (mc|eth)",
		Category: flags.RPCCategory,
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
			link = fmt.Sprintf(", see https://pkg.go.dev/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type rpcConfig struct {
	Endpoint  string
	Namespace string
}

type moacabiConfig struct {
	ABI   string
	Codec moacabi.Config
	RPC   rpcConfig
}

func loadConfig(file string, cfg *moacabiConfig) error {
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

func defaultConfig() moacabiConfig {
	return moacabiConfig{
		Codec: moacabi.DefaultConfig,
		RPC:   rpcConfig{Namespace: mcclient.Namespace},
	}
}

// loadBaseConfig loads the configuration based on the given command line
// parameters and config file.
func loadBaseConfig(ctx *cli.Context) (moacabiConfig, error) {
	cfg := defaultConfig()

	if file := flags.Path(ctx, configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	// Apply flags.
	if ctx.IsSet(abiFlag.Name) {
		cfg.ABI = flags.Path(ctx, abiFlag.Name)
	}
	if ctx.IsSet(logOutputFlag.Name) {
		if err := cfg.Codec.LogOutput.UnmarshalText([]byte(ctx.String(logOutputFlag.Name))); err != nil {
			return cfg, err
		}
	}
	if ctx.IsSet(strictFlag.Name) {
		cfg.Codec.StrictOwnership = ctx.Bool(strictFlag.Name)
	}
	if ctx.IsSet(rpcFlag.Name) {
		cfg.RPC.Endpoint = ctx.String(rpcFlag.Name)
	}
	if ctx.IsSet(namespaceFlag.Name) {
		cfg.RPC.Namespace = ctx.String(namespaceFlag.Name)
	}
	return cfg, nil
}

// makeCodec loads the configured ABI and builds its codec.
func makeCodec(ctx *cli.Context) (*moacabi.Codec, moacabiConfig, error) {
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return nil, cfg, err
	}
	if cfg.ABI == "" {
		return nil, cfg, fmt.Errorf("no contract ABI given, use --%s or the ABI config field", abiFlag.Name)
	}
	f, err := os.Open(cfg.ABI)
	if err != nil {
		return nil, cfg, err
	}
	defer f.Close()

	codec, err := moacabi.NewFromJSON(f, &cfg.Codec)
	if err != nil {
		return nil, cfg, fmt.Errorf("%s: %w", cfg.ABI, err)
	}
	return codec, cfg, nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(out)
	return err
}

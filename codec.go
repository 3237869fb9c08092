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

// Package moacabi encodes and decodes MOAC contract call data and event logs
// against a JSON ABI.
//
// Encoding resolves the function by name and argument count, so overloaded
// functions are called like any other:
//
//	codec, _ := moacabi.NewFromJSON(reader, nil)
//	data, err := codec.Encode("safeTransferFrom", from, to, "1", "0xaa")
//
// Decoding works the other way around, from the 4-byte selector of a payload
// or the first topic of a log.
package moacabi

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/JCCDex/jcc-moac-abi/schema"
	"github.com/JCCDex/jcc-moac-abi/selector"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
)

// Codec is the encoder and decoder bound to a single contract ABI.
// Codec 是绑定到单个合约 ABI 的编码器和解码器。
type Codec struct {
	contract *schema.Contract
	byName   map[string][]*schema.Method // function name index, declaration order
	methods  map[[4]byte]*schema.Method  // own selectors, used in strict mode
	events   map[common.Hash]*schema.Event
	table    *selector.Table
	config   Config
}

// New creates a codec for the given ABI. A nil config selects DefaultConfig.
func New(abi schema.ABI, config *Config) (*Codec, error) {
	if abi == nil {
		return nil, ErrInvalidInstance
	}
	contract, err := schema.Compile(abi)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstance, err)
	}
	cfg := DefaultConfig
	if config != nil {
		cfg = *config
	}
	if cfg.LogOutput == "" {
		cfg.LogOutput = LogOutputReduced
	}
	if cfg.Table == nil {
		cfg.Table = selector.New()
	}
	c := &Codec{
		contract: contract,
		byName:   make(map[string][]*schema.Method),
		methods:  make(map[[4]byte]*schema.Method),
		events:   make(map[common.Hash]*schema.Event),
		table:    cfg.Table,
		config:   cfg,
	}
	for _, m := range contract.Methods {
		c.byName[m.Name] = append(c.byName[m.Name], m)
		if _, ok := c.methods[m.ID]; !ok {
			c.methods[m.ID] = m
		}
	}
	for _, e := range contract.Events {
		if _, ok := c.events[e.ID]; !ok && !e.Anonymous {
			c.events[e.ID] = e
		}
	}
	if cfg.EagerRegister {
		if err := c.table.Register(contract); err != nil {
			return nil, err
		}
	}
	log.Debug("Created abi codec", "methods", len(contract.Methods), "events", len(contract.Events), "output", cfg.LogOutput)
	return c, nil
}

// NewFromJSON creates a codec from a JSON encoded ABI.
func NewFromJSON(reader io.Reader, config *Config) (*Codec, error) {
	abi, err := schema.JSON(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstance, err)
	}
	return New(abi, config)
}

// Contract returns the compiled ABI of the codec.
func (c *Codec) Contract() *schema.Contract {
	return c.contract
}

// Table returns the selector table used for decoding.
func (c *Codec) Table() *selector.Table {
	return c.table
}

// Close unregisters the ABI of the codec from its selector table. Entries
// shared with other registered contracts stay in place.
func (c *Codec) Close() {
	c.table.Unregister(c.contract)
}

// ensureRegistered populates the selector table with the codec ABI once.
func (c *Codec) ensureRegistered() error {
	if c.table.Registered(c.contract) {
		return nil
	}
	return c.table.Register(c.contract)
}

// Encode packs a call of the named function. Overloads are resolved by the
// number of arguments. The result is the 0x prefixed selector followed by the
// encoded arguments.
//
// Encode 按函数名打包调用数据，重载函数按参数个数解析。
func (c *Codec) Encode(name string, args ...interface{}) (string, error) {
	method, err := c.Resolve(name, len(args))
	if err != nil {
		return "", err
	}
	values := make([]interface{}, len(args))
	for i, arg := range args {
		if i >= len(method.Inputs) {
			// Left for the codec to reject with its count mismatch error.
			values[i] = arg
			continue
		}
		if values[i], err = coerce(method.Inputs[i].Type, arg); err != nil {
			return "", fmt.Errorf("%s argument %d: %w", method.Sig, i, err)
		}
	}
	packed, err := method.Inputs.Pack(values...)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(append(method.ID[:], packed...)), nil
}

// Decode resolves a call payload back to the invoked function and its
// arguments.
//
// Decode 将调用数据解析回被调用的函数及其参数。
func (c *Codec) Decode(payload string) (*DecodedCall, error) {
	if err := c.ensureRegistered(); err != nil {
		return nil, err
	}
	calldata, err := decodeCallData(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid call data: %w", err)
	}
	if len(calldata) < 4 {
		return nil, fmt.Errorf("invalid call data, incomplete method signature (%d bytes < 4)", len(calldata))
	}
	method, err := c.lookupMethod(calldata[:4])
	if err != nil {
		return nil, fmt.Errorf("%w: unrecognized method selector %#x", ErrUnknownFunction, calldata[:4])
	}
	values, err := method.Inputs.UnpackValues(calldata[4:])
	if err != nil {
		return nil, fmt.Errorf("signature %q matches, but arguments mismatch: %w", method.Sig, err)
	}
	params := make([]DecodedParam, len(method.Inputs))
	for i, arg := range method.Inputs {
		params[i] = DecodedParam{
			Name:  arg.Name,
			Type:  method.Item.Inputs[i].Type,
			Value: normalize(arg.Type, values[i]),
		}
	}
	return &DecodedCall{Name: method.Name, Params: params}, nil
}

// lookupMethod finds the method behind a 4-byte id. In strict mode only the
// codec's own methods qualify, whatever else the shared table holds.
func (c *Codec) lookupMethod(id []byte) (*schema.Method, error) {
	if !c.config.StrictOwnership {
		return c.table.Method(id)
	}
	if m, ok := c.methods[[4]byte(id)]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: method %x", selector.ErrNotFound, id)
}

// lookupEvent finds the event behind a log's first topic, following the same
// rules as lookupMethod.
func (c *Codec) lookupEvent(topic common.Hash) (*schema.Event, error) {
	if !c.config.StrictOwnership {
		return c.table.Event(topic)
	}
	if e, ok := c.events[topic]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: event %x", selector.ErrNotFound, topic)
}

var (
	errEmptyHex = errors.New("empty hex string")
	errOddHex   = errors.New("hex string of odd length")
)

// decodeHex decodes a hex string with or without 0x prefix. Odd lengths are
// left padded, as some MOAC nodes trim leading zeros of log fields.
func decodeHex(s string) ([]byte, error) {
	s = strip0x(s)
	if s == "" {
		return nil, errEmptyHex
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

// decodeCallData decodes a call payload. Padding would shift the selector, so
// odd lengths are rejected.
func decodeCallData(s string) ([]byte, error) {
	s = strip0x(s)
	if s == "" {
		return nil, errEmptyHex
	}
	if len(s)%2 == 1 {
		return nil, errOddHex
	}
	return hex.DecodeString(s)
}

func strip0x(s string) string {
	if has0xPrefix(s) {
		return s[2:]
	}
	return s
}

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

// Package schema holds the JSON ABI data model of a MOAC contract and compiles
// its items into the argument lists understood by the Solidity ABI codec.
package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Item kinds as they appear in the "type" field of a JSON ABI entry.
const (
	FunctionType    = "function"
	EventType       = "event"
	ConstructorType = "constructor"
	FallbackType    = "fallback"
	ReceiveType     = "receive"
	ErrorType       = "error"
)

// Parameter is a single input or output of an ABI item.
// Parameter 是 ABI 条目的单个输入或输出参数。
type Parameter struct {
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	InternalType string      `json:"internalType,omitempty"`
	Indexed      bool        `json:"indexed,omitempty"` // events only 仅用于事件
	Components   []Parameter `json:"components,omitempty"`
}

// Item is one entry of a JSON ABI, following
// https://solidity.readthedocs.io/en/latest/abi-spec.html#json.
//
// Item 是 JSON ABI 中的一个条目。加载后不可变。
type Item struct {
	Type            string      `json:"type,omitempty"`
	Name            string      `json:"name,omitempty"`
	Inputs          []Parameter `json:"inputs"`
	Outputs         []Parameter `json:"outputs,omitempty"`
	StateMutability string      `json:"stateMutability,omitempty"`
	Payable         bool        `json:"payable,omitempty"`
	Constant        bool        `json:"constant,omitempty"`
	Anonymous       bool        `json:"anonymous,omitempty"`
}

// Kind returns the item type, defaulting to "function" as the Solidity ABI
// specification mandates for entries without one.
func (item Item) Kind() string {
	if item.Type == "" {
		return FunctionType
	}
	return item.Type
}

// IsFunction reports whether the item is an invocable method.
func (item Item) IsFunction() bool { return item.Kind() == FunctionType }

// IsEvent reports whether the item describes a log event.
func (item Item) IsEvent() bool { return item.Kind() == EventType }

// ABI is a contract interface: the items in their declaration order.
// ABI 是合约接口：按声明顺序排列的条目。
type ABI []Item

// JSON parses a JSON encoded ABI.
// JSON 解析 JSON 编码的 ABI。
func JSON(reader io.Reader) (ABI, error) {
	var abi ABI
	if err := json.NewDecoder(reader).Decode(&abi); err != nil {
		return nil, err
	}
	return abi, nil
}

// Load reads and parses an ABI file.
func Load(path string) (ABI, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	abi, err := JSON(f)
	if err != nil {
		return nil, fmt.Errorf("invalid abi file %s: %w", path, err)
	}
	return abi, nil
}

// Functions returns the function items with the given name in declaration
// order.
func (abi ABI) Functions(name string) []Item {
	var items []Item
	for _, item := range abi {
		if item.IsFunction() && item.Name == name {
			items = append(items, item)
		}
	}
	return items
}

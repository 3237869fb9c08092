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

package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var errMissingName = errors.New("abi: function or event without a name")

// Method is a compiled function item.
// Method 是编译后的函数条目。
type Method struct {
	Item

	// Sig is the canonical signature, e.g. "transfer(address,uint256)".
	// Sig 是规范签名，例如 "transfer(address,uint256)"。
	Sig string

	// ID is the 4-byte selector, the first bytes of keccak256(Sig).
	// ID 是 4 字节选择器，即 keccak256(Sig) 的前 4 个字节。
	ID [4]byte

	Inputs abi.Arguments
}

// Selector returns the method id as lowercase hex without 0x prefix.
func (m *Method) Selector() string {
	return common.Bytes2Hex(m.ID[:])
}

// Event is a compiled event item. Anonymous events are kept but cannot be
// looked up by topic.
// Event 是编译后的事件条目。
type Event struct {
	Item

	Sig string

	// ID is keccak256(Sig), carried by a log as topics[0].
	// ID 是 keccak256(Sig)，日志的 topics[0] 携带该值。
	ID common.Hash

	Inputs abi.Arguments
}

// Selector returns the event topic as lowercase hex without 0x prefix.
func (e *Event) Selector() string {
	return common.Bytes2Hex(e.ID[:])
}

// Contract is a compiled ABI. Methods and events keep declaration order.
// Contract 是编译后的 ABI，方法与事件保持声明顺序。
type Contract struct {
	ABI     ABI
	Methods []*Method
	Events  []*Event

	fingerprint string
}

// Compile builds the codec argument lists, canonical signatures and selectors
// of every function and event in the ABI. Other item kinds are kept in the ABI
// but not compiled.
func Compile(items ABI) (*Contract, error) {
	c := &Contract{ABI: items}
	for i, item := range items {
		switch item.Kind() {
		case FunctionType:
			m, err := NewMethod(item)
			if err != nil {
				return nil, fmt.Errorf("abi item %d: %w", i, err)
			}
			c.Methods = append(c.Methods, m)
		case EventType:
			e, err := NewEvent(item)
			if err != nil {
				return nil, fmt.Errorf("abi item %d: %w", i, err)
			}
			c.Events = append(c.Events, e)
		}
	}
	blob, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	c.fingerprint = crypto.Keccak256Hash(blob).Hex()
	return c, nil
}

// Fingerprint identifies the ABI content. Two contracts compiled from equal
// ABIs share the fingerprint.
func (c *Contract) Fingerprint() string {
	return c.fingerprint
}

// NewMethod compiles a function item.
func NewMethod(item Item) (*Method, error) {
	if item.Name == "" {
		return nil, errMissingName
	}
	inputs, sig, err := compile(item)
	if err != nil {
		return nil, err
	}
	m := &Method{Item: item, Sig: sig, Inputs: inputs}
	copy(m.ID[:], crypto.Keccak256([]byte(sig))[:4])
	return m, nil
}

// NewEvent compiles an event item.
func NewEvent(item Item) (*Event, error) {
	if item.Name == "" {
		return nil, errMissingName
	}
	inputs, sig, err := compile(item)
	if err != nil {
		return nil, err
	}
	return &Event{
		Item:   item,
		Sig:    sig,
		ID:     crypto.Keccak256Hash([]byte(sig)),
		Inputs: inputs,
	}, nil
}

// compile turns the item inputs into codec arguments and derives the
// canonical signature from the codec types.
func compile(item Item) (abi.Arguments, string, error) {
	var (
		args  = make(abi.Arguments, len(item.Inputs))
		types = make([]string, len(item.Inputs))
	)
	for i, input := range item.Inputs {
		typ, err := NewType(input)
		if err != nil {
			return nil, "", fmt.Errorf("%s input %d (%s): %w", item.Name, i, input.Type, err)
		}
		args[i] = abi.Argument{Name: input.Name, Type: typ, Indexed: input.Indexed}
		types[i] = typ.String()
	}
	return args, fmt.Sprintf("%s(%s)", item.Name, strings.Join(types, ",")), nil
}

// NewType creates the codec type of a parameter, canonicalising the "int",
// "uint" and "byte" aliases which the codec does not accept.
func NewType(p Parameter) (abi.Type, error) {
	return abi.NewType(canonicalType(p.Type), p.InternalType, marshaling(p.Components))
}

func marshaling(params []Parameter) []abi.ArgumentMarshaling {
	if len(params) == 0 {
		return nil
	}
	out := make([]abi.ArgumentMarshaling, len(params))
	for i, p := range params {
		out[i] = abi.ArgumentMarshaling{
			Name:         p.Name,
			Type:         canonicalType(p.Type),
			InternalType: p.InternalType,
			Components:   marshaling(p.Components),
			Indexed:      p.Indexed,
		}
	}
	return out
}

// canonicalType rewrites the alias at the base of a (possibly array) type.
func canonicalType(t string) string {
	base, suffix := t, ""
	if i := strings.Index(t, "["); i >= 0 {
		base, suffix = t[:i], t[i:]
	}
	switch base {
	case "uint":
		base = "uint256"
	case "int":
		base = "int256"
	case "byte":
		base = "bytes1"
	}
	return base + suffix
}

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

package moacabi

import (
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
)

// Log is a raw transaction log as returned by a MOAC node. The codec only
// reads Topics and Data, every other field is carried through untouched.
//
// Field values are kept but the JSON encoding is canonical: a log read with
// "TxData" is written back with "data", and quantities are always written as
// 0x hex whether they were read as decimal or hex.
//
// Log 是 MOAC 节点返回的原始交易日志。编解码器只读取 Topics 和 Data，其他字段原样保留。
type Log struct {
	Address          string              `json:"address"`
	Topics           []string            `json:"topics"`
	Data             string              `json:"data"`
	BlockNumber      math.HexOrDecimal64 `json:"blockNumber"`
	TransactionHash  string              `json:"transactionHash"`
	TransactionIndex math.HexOrDecimal64 `json:"transactionIndex"`
	BlockHash        string              `json:"blockHash"`
	LogIndex         math.HexOrDecimal64 `json:"logIndex"`
	Removed          bool                `json:"removed"`
}

// UnmarshalJSON decodes a log, accepting the "TxData" field some MOAC nodes
// emit in place of "data".
func (l *Log) UnmarshalJSON(input []byte) error {
	type plainLog Log
	var dec struct {
		plainLog
		TxData *string `json:"TxData"`
	}
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	*l = Log(dec.plainLog)
	if l.Data == "" && dec.TxData != nil {
		l.Data = *dec.TxData
	}
	return nil
}

// FromTypesLog converts a go-ethereum log into the raw log shape.
func FromTypesLog(l *types.Log) Log {
	topics := make([]string, len(l.Topics))
	for i, topic := range l.Topics {
		topics[i] = topic.Hex()
	}
	return Log{
		Address:          strings.ToLower(l.Address.Hex()),
		Topics:           topics,
		Data:             hexutil.Encode(l.Data),
		BlockNumber:      math.HexOrDecimal64(l.BlockNumber),
		TransactionHash:  l.TxHash.Hex(),
		TransactionIndex: math.HexOrDecimal64(l.TxIndex),
		BlockHash:        l.BlockHash.Hex(),
		LogIndex:         math.HexOrDecimal64(l.Index),
		Removed:          l.Removed,
	}
}

// DecodedParam is a named, typed and normalised argument value.
// DecodedParam 是带名称、类型且已规范化的参数值。
type DecodedParam struct {
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// DecodedCall is a call payload resolved back to its function.
type DecodedCall struct {
	Name   string         `json:"name"`
	Params []DecodedParam `json:"params"`
}

// DecodedLog is the result of decoding a single log. Logs of unknown events
// carry the original log and no name. Decoded logs either carry the full
// original log (merged output) or only its address (reduced output). The
// carried log marshals in the canonical Log encoding, not byte for byte as
// it was received.
//
// DecodedLog 是单条日志的解码结果。未知事件的日志保留原始内容且没有名称。
type DecodedLog struct {
	Log
	Name   string         `json:"name,omitempty"`
	Events []DecodedParam `json:"events,omitempty"`

	reduced bool
}

// Decoded reports whether the log was matched to an event.
func (d DecodedLog) Decoded() bool {
	return d.Name != ""
}

// Reduced reports whether the log is in the reduced {address, events, name}
// shape.
func (d DecodedLog) Reduced() bool {
	return d.reduced
}

// MarshalJSON encodes the log in its configured output shape.
func (d DecodedLog) MarshalJSON() ([]byte, error) {
	if d.reduced {
		return json.Marshal(struct {
			Address string         `json:"address"`
			Events  []DecodedParam `json:"events"`
			Name    string         `json:"name"`
		}{d.Address, d.Events, d.Name})
	}
	type merged struct {
		Log
		Name   string         `json:"name,omitempty"`
		Events []DecodedParam `json:"events,omitempty"`
	}
	return json.Marshal(merged{d.Log, d.Name, d.Events})
}

// UnmarshalJSON decodes a merged or pass-through log.
func (d *DecodedLog) UnmarshalJSON(input []byte) error {
	if err := d.Log.UnmarshalJSON(input); err != nil {
		return err
	}
	var dec struct {
		Name   string         `json:"name"`
		Events []DecodedParam `json:"events"`
	}
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	d.Name, d.Events = dec.Name, dec.Events
	return nil
}

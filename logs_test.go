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
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/JCCDex/jcc-moac-abi/schema"
	"github.com/JCCDex/jcc-moac-abi/selector"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const transferTopic = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

const transferLogJSON = `{
	"TxData": "0x00000000000000000000000000000000000000000000017aedbc9d648c780000",
	"address": "0x4c6007cea426e543551f2cb6392e6d6768f74706",
	"blockHash": "0x181c92ab726131010021473d6e444d2f682e013eb12b2d4faa0946a8847c56f1",
	"blockNumber": 3175749,
	"logIndex": 0,
	"removed": false,
	"topics": [
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		"0x000000000000000000000000687f6ab056708fcfd34b3226c0b70ddf95b2eab2",
		"0x00000000000000000000000066c9b619215db959ec137ede6b96f3fa6fd35a8a"
	],
	"transactionHash": "0x9a7da10a30ad4c8e1bb4461107497130a19f53a844069dd3e019557ee1a423b8",
	"transactionIndex": 1
}`

var transferEvents = []DecodedParam{
	{Name: "_from", Type: "address", Value: "0x687f6ab056708fcfd34b3226c0b70ddf95b2eab2"},
	{Name: "_to", Type: "address", Value: "0x66c9b619215db959ec137ede6b96f3fa6fd35a8a"},
	{Name: "_value", Type: "uint256", Value: "6990000000000000000000"},
}

func transferLog(t *testing.T) Log {
	t.Helper()

	var l Log
	require.NoError(t, json.Unmarshal([]byte(transferLogJSON), &l))
	return l
}

func TestLogUnmarshal(t *testing.T) {
	l := transferLog(t)

	assert.Equal(t, "0x00000000000000000000000000000000000000000000017aedbc9d648c780000", l.Data, "TxData should be read as data")
	assert.Equal(t, uint64(3175749), uint64(l.BlockNumber))
	assert.Equal(t, uint64(1), uint64(l.TransactionIndex))
	assert.Len(t, l.Topics, 3)

	// data wins over TxData
	var both Log
	require.NoError(t, json.Unmarshal([]byte(`{"data": "0x01", "TxData": "0x02", "blockNumber": "0x10"}`), &both))
	assert.Equal(t, "0x01", both.Data)
	assert.Equal(t, uint64(16), uint64(both.BlockNumber))
}

func TestDecodeTransferLog(t *testing.T) {
	codec := newCodec(t, "testdata/erc20.json", nil)

	decoded, err := codec.DecodeLogs([]Log{transferLog(t)})
	require.NoError(t, err)
	require.Len(t, decoded, 1)

	assert.True(t, decoded[0].Decoded())
	assert.True(t, decoded[0].Reduced())
	assert.Equal(t, "Transfer", decoded[0].Name)
	assert.Equal(t, transferEvents, decoded[0].Events)

	blob, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"name": "Transfer",
		"events": [
			{"name": "_from", "type": "address", "value": "0x687f6ab056708fcfd34b3226c0b70ddf95b2eab2"},
			{"name": "_to", "type": "address", "value": "0x66c9b619215db959ec137ede6b96f3fa6fd35a8a"},
			{"name": "_value", "type": "uint256", "value": "6990000000000000000000"}
		],
		"address": "0x4c6007cea426e543551f2cb6392e6d6768f74706"
	}]`, string(blob))
}

func TestDecodeLogsMerged(t *testing.T) {
	codec := newCodec(t, "testdata/erc20.json", &Config{LogOutput: LogOutputMerged})
	raw := transferLog(t)

	decoded, err := codec.DecodeLogs([]Log{raw})
	require.NoError(t, err)
	require.Len(t, decoded, 1)

	assert.False(t, decoded[0].Reduced())
	assert.Equal(t, raw, decoded[0].Log, "merged output keeps the original log")
	assert.Equal(t, transferEvents, decoded[0].Events)

	blob, err := json.Marshal(decoded[0])
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(blob, &fields))
	assert.Equal(t, "Transfer", fields["name"])
	assert.Equal(t, raw.TransactionHash, fields["transactionHash"])
	assert.Equal(t, raw.Data, fields["data"])

	var back DecodedLog
	require.NoError(t, json.Unmarshal(blob, &back))
	assert.Equal(t, decoded[0], back)
}

func TestDecodeLogsPassThrough(t *testing.T) {
	codec := newCodec(t, "testdata/erc20.json", nil)

	unknown := Log{
		Address: "0x4c6007cea426e543551f2cb6392e6d6768f74706",
		Topics:  []string{"0x" + common.Bytes2Hex(common.LeftPadBytes([]byte{0x01}, 32))},
		Data:    "0x",
	}
	invalid := Log{Topics: []string{"0x1234"}}
	empty := Log{Address: "0x4c6007cea426e543551f2cb6392e6d6768f74706"}

	decoded, err := codec.DecodeLogs([]Log{empty, unknown, transferLog(t), invalid})
	require.NoError(t, err)
	require.Len(t, decoded, 3, "logs without topics are dropped")

	assert.False(t, decoded[0].Decoded())
	assert.Equal(t, unknown, decoded[0].Log)
	assert.True(t, decoded[1].Decoded())
	assert.False(t, decoded[2].Decoded())
	assert.Equal(t, invalid, decoded[2].Log)

	blob, err := json.Marshal(decoded[0])
	require.NoError(t, err)
	assert.NotContains(t, string(blob), `"name"`)

	_, ok, err := codec.DecodeLog(empty)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPassThroughCanonicalJSON(t *testing.T) {
	codec := newCodec(t, "testdata/erc20.json", nil)

	// A foreign event with the MOAC TxData field and decimal quantities
	raw := transferLog(t)
	raw.Topics = []string{"0x" + common.Bytes2Hex(common.LeftPadBytes([]byte{0x02}, 32))}

	decoded, err := codec.DecodeLogs([]Log{raw})
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	require.False(t, decoded[0].Decoded())

	blob, err := json.Marshal(decoded[0])
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(blob, &fields))
	assert.Equal(t, raw.Data, fields["data"])
	assert.NotContains(t, fields, "TxData")
	assert.Equal(t, "0x307545", fields["blockNumber"])
	assert.Equal(t, "0x1", fields["transactionIndex"])

	// Reading it back yields the same log
	var back Log
	require.NoError(t, json.Unmarshal(blob, &back))
	assert.Equal(t, raw, back)
}

func TestDecodeLogsMalformed(t *testing.T) {
	codec := newCodec(t, "testdata/erc20.json", nil)

	// Test case 1: missing indexed topic
	missing := transferLog(t)
	missing.Topics = missing.Topics[:2]
	_, err := codec.DecodeLogs([]Log{transferLog(t), missing})
	assert.ErrorIs(t, err, ErrMalformedLog)
	assert.Contains(t, err.Error(), "log 1")

	// Test case 2: data too short for the non-indexed inputs
	short := transferLog(t)
	short.Data = "0x"
	_, _, err = codec.DecodeLog(short)
	assert.ErrorIs(t, err, ErrMalformedLog)

	// Test case 3: broken hex
	broken := transferLog(t)
	broken.Data = "0xzz"
	_, _, err = codec.DecodeLog(broken)
	assert.ErrorIs(t, err, ErrMalformedLog)
}

// erc721TransferLog is a Transfer of token 1 from alice to bob. The token id
// is indexed, so the data is empty.
func erc721TransferLog() Log {
	pad := func(hex string) string {
		return "0x" + common.Bytes2Hex(common.LeftPadBytes(common.FromHex(hex), 32))
	}
	return Log{
		Address: "0x9a1f8e6e0c7e8e0a6a0f2cfa7d1b3a7a4dbe36b1",
		Topics: []string{
			"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
			pad(alice),
			pad(bob),
			pad("0x01"),
		},
		Data: "0x",
	}
}

func TestDecodeLogsSharedTableCollision(t *testing.T) {
	table := selector.New()

	// ERC20 declares Transfer with a non-indexed value and takes the slot
	newCodec(t, "testdata/erc20.json", &Config{Table: table, EagerRegister: true})
	strict := newCodec(t, "testdata/erc721.json", &Config{Table: table, StrictOwnership: true})
	loose := newCodec(t, "testdata/erc721.json", &Config{Table: table})

	decoded, err := strict.DecodeLogs([]Log{erc721TransferLog()})
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "Transfer", decoded[0].Name)
	assert.Equal(t, []DecodedParam{
		{Name: "_from", Type: "address", Value: alice},
		{Name: "_to", Type: "address", Value: bob},
		{Name: "_tokenId", Type: "uint256", Value: "1"},
	}, decoded[0].Events)

	assert.False(t, table.OwnedBy(transferTopic, strict.Contract()), "shadowed item is not owned")

	// Without ownership checks the first registered item wins
	_, err = loose.DecodeLogs([]Log{erc721TransferLog()})
	assert.ErrorIs(t, err, ErrMalformedLog)
}

func TestDecodeIndexedIntegers(t *testing.T) {
	codec, err := New(schema.ABI{{
		Type: schema.EventType,
		Name: "Moved",
		Inputs: []schema.Parameter{
			{Name: "id", Type: "uint8", Indexed: true},
			{Name: "delta", Type: "int", Indexed: true},
			{Name: "tag", Type: "string", Indexed: true},
			{Name: "note", Type: "bytes"},
			{Name: "amount", Type: "uint64"},
		},
	}}, nil)
	require.NoError(t, err)

	event := codec.Contract().Events[0]
	data, err := event.Inputs.NonIndexed().Pack([]byte{0xbe, 0xef}, uint64(42))
	require.NoError(t, err)

	tag := "0x" + common.Bytes2Hex(common.LeftPadBytes([]byte("tag"), 32))
	l := Log{
		Topics: []string{
			event.ID.Hex(),
			"0x" + common.Bytes2Hex(common.LeftPadBytes([]byte{0x07}, 32)),
			"0xfffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffe",
			tag,
		},
		Data: "0x" + common.Bytes2Hex(data),
	}
	d, ok, err := codec.DecodeLog(l)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []DecodedParam{
		{Name: "id", Type: "uint8", Value: "7"},
		{Name: "delta", Type: "int", Value: "-2"},
		{Name: "tag", Type: "string", Value: tag},
		{Name: "note", Type: "bytes", Value: "0xbeef"},
		{Name: "amount", Type: "uint64", Value: "42"},
	}, d.Events)
}

func TestFromTypesLog(t *testing.T) {
	raw := transferLog(t)
	l := &types.Log{
		Address:     common.HexToAddress(raw.Address),
		Data:        common.FromHex(raw.Data),
		BlockNumber: uint64(raw.BlockNumber),
		TxHash:      common.HexToHash(raw.TransactionHash),
		TxIndex:     uint(raw.TransactionIndex),
		BlockHash:   common.HexToHash(raw.BlockHash),
	}
	for _, topic := range raw.Topics {
		l.Topics = append(l.Topics, common.HexToHash(topic))
	}
	assert.Equal(t, raw, FromTypesLog(l))
}

type stubSource struct {
	logs []Log
	err  error
}

func (s *stubSource) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]Log, error) {
	return s.logs, s.err
}

func (s *stubSource) TransactionLogs(ctx context.Context, hash common.Hash) ([]Log, error) {
	return s.logs, s.err
}

func TestFilterLogs(t *testing.T) {
	codec := newCodec(t, "testdata/erc20.json", nil)

	decoded, err := codec.FilterLogs(context.Background(), &stubSource{logs: []Log{transferLog(t)}}, ethereum.FilterQuery{})
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "Transfer", decoded[0].Name)

	failure := errors.New("connection refused")
	_, err = codec.TransactionLogs(context.Background(), &stubSource{err: failure}, common.Hash{})
	assert.ErrorIs(t, err, failure)
}

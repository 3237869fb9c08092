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
	"math/big"
	"os"
	"strings"
	"testing"

	"github.com/JCCDex/jcc-moac-abi/schema"
	"github.com/JCCDex/jcc-moac-abi/selector"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "0x533243557dfdc87ae5bda885e22db00f87499971"
	bob   = "0xae832592b6d697cd6b3d053866bfe5f334e7c667"
	carol = "0x09344477fdc71748216a7b8bbe7f2013b893def8"
)

func newCodec(t *testing.T, path string, config *Config) *Codec {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	codec, err := NewFromJSON(f, config)
	require.NoError(t, err)
	return codec
}

func TestNewInvalidInstance(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInstance)

	_, err = NewFromJSON(strings.NewReader(`{"not": "an abi"}`), nil)
	assert.ErrorIs(t, err, ErrInvalidInstance)

	_, err = New(schema.ABI{{Name: "f", Inputs: []schema.Parameter{{Type: "decimal"}}}}, nil)
	assert.ErrorIs(t, err, ErrInvalidInstance)
}

func TestCallRoundTrip(t *testing.T) {
	var (
		erc20  = newCodec(t, "testdata/erc20.json", nil)
		erc721 = newCodec(t, "testdata/erc721.json", nil)
	)
	tests := []struct {
		codec  *Codec
		name   string
		args   []interface{}
		data   string
		params []DecodedParam
	}{
		{
			codec: erc20,
			name:  "transfer",
			args:  []interface{}{alice, "30000000000000000"},
			data:  "0xa9059cbb000000000000000000000000533243557dfdc87ae5bda885e22db00f87499971000000000000000000000000000000000000000000000000006a94d74f430000",
			params: []DecodedParam{
				{Name: "_to", Type: "address", Value: alice},
				{Name: "_value", Type: "uint256", Value: "30000000000000000"},
			},
		},
		{
			codec: erc20,
			name:  "approve",
			args:  []interface{}{carol, "30000000000000000"},
			data:  "0x095ea7b300000000000000000000000009344477fdc71748216a7b8bbe7f2013b893def8000000000000000000000000000000000000000000000000006a94d74f430000",
			params: []DecodedParam{
				{Name: "_spender", Type: "address", Value: carol},
				{Name: "_value", Type: "uint256", Value: "30000000000000000"},
			},
		},
		{
			codec: erc20,
			name:  "transferFrom",
			args:  []interface{}{carol, bob, "30000000000000000"},
			data:  "0x23b872dd00000000000000000000000009344477fdc71748216a7b8bbe7f2013b893def8000000000000000000000000ae832592b6d697cd6b3d053866bfe5f334e7c667000000000000000000000000000000000000000000000000006a94d74f430000",
			params: []DecodedParam{
				{Name: "_from", Type: "address", Value: carol},
				{Name: "_to", Type: "address", Value: bob},
				{Name: "_value", Type: "uint256", Value: "30000000000000000"},
			},
		},
		{
			codec: erc721,
			name:  "safeTransferFrom",
			args:  []interface{}{bob, alice, 1},
			data:  "0x42842e0e000000000000000000000000ae832592b6d697cd6b3d053866bfe5f334e7c667000000000000000000000000533243557dfdc87ae5bda885e22db00f874999710000000000000000000000000000000000000000000000000000000000000001",
			params: []DecodedParam{
				{Name: "_from", Type: "address", Value: bob},
				{Name: "_to", Type: "address", Value: alice},
				{Name: "_tokenId", Type: "uint256", Value: "1"},
			},
		},
		{
			codec: erc721,
			name:  "safeTransferFrom",
			args:  []interface{}{bob, alice, 1, "0xaa"},
			data:  "0xb88d4fde000000000000000000000000ae832592b6d697cd6b3d053866bfe5f334e7c667000000000000000000000000533243557dfdc87ae5bda885e22db00f87499971000000000000000000000000000000000000000000000000000000000000000100000000000000000000000000000000000000000000000000000000000000800000000000000000000000000000000000000000000000000000000000000001aa00000000000000000000000000000000000000000000000000000000000000",
			params: []DecodedParam{
				{Name: "_from", Type: "address", Value: bob},
				{Name: "_to", Type: "address", Value: alice},
				{Name: "_tokenId", Type: "uint256", Value: "1"},
				{Name: "_data", Type: "bytes", Value: "0xaa"},
			},
		},
		{
			codec: erc721,
			name:  "mint",
			args:  []interface{}{alice, 1, "https://jccdex.cn/1"},
			data:  "0xd3fc9864000000000000000000000000533243557dfdc87ae5bda885e22db00f8749997100000000000000000000000000000000000000000000000000000000000000010000000000000000000000000000000000000000000000000000000000000060000000000000000000000000000000000000000000000000000000000000001368747470733a2f2f6a63636465782e636e2f3100000000000000000000000000",
			params: []DecodedParam{
				{Name: "_to", Type: "address", Value: alice},
				{Name: "_tokenId", Type: "uint256", Value: "1"},
				{Name: "_uri", Type: "string", Value: "https://jccdex.cn/1"},
			},
		},
		{
			codec: erc721,
			name:  "burn",
			args:  []interface{}{alice, 1},
			data:  "0x9dc29fac000000000000000000000000533243557dfdc87ae5bda885e22db00f874999710000000000000000000000000000000000000000000000000000000000000001",
			params: []DecodedParam{
				{Name: "_owner", Type: "address", Value: alice},
				{Name: "_tokenId", Type: "uint256", Value: "1"},
			},
		},
		{
			codec: erc721,
			name:  "transferFrom",
			args:  []interface{}{bob, alice, 1},
			data:  "0x23b872dd000000000000000000000000ae832592b6d697cd6b3d053866bfe5f334e7c667000000000000000000000000533243557dfdc87ae5bda885e22db00f874999710000000000000000000000000000000000000000000000000000000000000001",
			params: []DecodedParam{
				{Name: "_from", Type: "address", Value: bob},
				{Name: "_to", Type: "address", Value: alice},
				{Name: "_tokenId", Type: "uint256", Value: "1"},
			},
		},
		{
			codec: erc721,
			name:  "approve",
			args:  []interface{}{alice, 1},
			data:  "0x095ea7b3000000000000000000000000533243557dfdc87ae5bda885e22db00f874999710000000000000000000000000000000000000000000000000000000000000001",
			params: []DecodedParam{
				{Name: "_approved", Type: "address", Value: alice},
				{Name: "_tokenId", Type: "uint256", Value: "1"},
			},
		},
		{
			codec: erc721,
			name:  "setApprovalForAll",
			args:  []interface{}{alice, true},
			data:  "0xa22cb465000000000000000000000000533243557dfdc87ae5bda885e22db00f874999710000000000000000000000000000000000000000000000000000000000000001",
			params: []DecodedParam{
				{Name: "_operator", Type: "address", Value: alice},
				{Name: "_approved", Type: "bool", Value: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.codec.Encode(tt.name, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.data, data)

			call, err := tt.codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, &DecodedCall{Name: tt.name, Params: tt.params}, call)
		})
	}
}

func TestEncodeArgumentForms(t *testing.T) {
	codec := newCodec(t, "testdata/erc20.json", nil)
	want := "0xa9059cbb000000000000000000000000533243557dfdc87ae5bda885e22db00f87499971000000000000000000000000000000000000000000000000006a94d74f430000"

	forms := []interface{}{
		"30000000000000000",
		"0x6a94d74f430000",
		int64(30000000000000000),
		uint64(30000000000000000),
		big.NewInt(30000000000000000),
		float64(30000000000000000),
	}
	for _, value := range forms {
		data, err := codec.Encode("transfer", common.HexToAddress(alice), value)
		require.NoError(t, err, "%T", value)
		assert.Equal(t, want, data, "%T", value)
	}
}

func TestEncodeUnknownFunction(t *testing.T) {
	codec := newCodec(t, "testdata/erc20.json", nil)

	_, err := codec.Encode("test")
	assert.ErrorIs(t, err, ErrUnknownFunction)
	assert.Contains(t, err.Error(), `"test"`)

	// events are not callable
	_, err = codec.Encode("Transfer", alice, bob, 1)
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

func TestEncodeInvalidArgumentCount(t *testing.T) {
	codec := newCodec(t, "testdata/erc721.json", nil)

	_, err := codec.Encode("safeTransferFrom", alice, true)
	assert.ErrorIs(t, err, ErrInvalidArgumentCount)

	// single overload functions leave the check to the codec
	_, err = codec.Encode("burn", alice)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidArgumentCount)
}

func TestEncodeInvalidValue(t *testing.T) {
	codec := newCodec(t, "testdata/erc20.json", nil)

	tests := []struct {
		name string
		args []interface{}
	}{
		{"transfer", []interface{}{"533243557dfdc87ae5bda885e22db00f87499971", "30000000000000000"}},
		{"transfer", []interface{}{"0x533243557dfdc87ae5bda885e22db00f8749997", "1"}},
		{"transfer", []interface{}{alice, "3e16"}},
		{"transfer", []interface{}{alice, "-1"}},
		{"transfer", []interface{}{alice, 1.5}},
		{"transfer", []interface{}{alice, "0x1" + strings.Repeat("0", 64)}},
		{"transferFrom", []interface{}{alice, bob, ""}},
	}
	for _, tt := range tests {
		_, err := codec.Encode(tt.name, tt.args...)
		assert.ErrorIs(t, err, ErrEncodingProducedInvalidValue, "%v", tt.args)
	}
}

func TestDecodeErrors(t *testing.T) {
	codec := newCodec(t, "testdata/erc20.json", nil)

	_, err := codec.Decode("0x")
	assert.Error(t, err)

	_, err = codec.Decode("0xa905")
	assert.Error(t, err, "payload shorter than a selector")

	_, err = codec.Decode("0xzz")
	assert.Error(t, err)

	_, err = codec.Decode("0xdeadbeef")
	assert.ErrorIs(t, err, ErrUnknownFunction)

	// truncated arguments
	_, err = codec.Decode("0xa9059cbb000000000000000000000000533243557dfdc87ae5bda885e22db00f87499971")
	assert.Error(t, err)

	// a dropped nibble must not shift the selector
	transfer, err := codec.Encode("transfer", alice, 1)
	require.NoError(t, err)
	_, err = codec.Decode(transfer[:len(transfer)-1])
	assert.ErrorIs(t, err, errOddHex)
	assert.NotErrorIs(t, err, ErrUnknownFunction)
}

func TestDecodeWithoutPrefix(t *testing.T) {
	codec := newCodec(t, "testdata/erc721.json", nil)

	call, err := codec.Decode("9dc29fac000000000000000000000000533243557dfdc87ae5bda885e22db00f874999710000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, "burn", call.Name)
}

func TestResolveOverloads(t *testing.T) {
	codec := newCodec(t, "testdata/erc721.json", nil)

	m, err := codec.Resolve("safeTransferFrom", 3)
	require.NoError(t, err)
	assert.Equal(t, "safeTransferFrom(address,address,uint256)", m.Sig)

	m, err = codec.Resolve("safeTransferFrom", 4)
	require.NoError(t, err)
	assert.Equal(t, "safeTransferFrom(address,address,uint256,bytes)", m.Sig)

	// arity is not checked without overloads
	m, err = codec.Resolve("burn", 7)
	require.NoError(t, err)
	assert.Equal(t, "burn(address,uint256)", m.Sig)
}

func TestResolveAmbiguous(t *testing.T) {
	codec, err := New(schema.ABI{
		{Name: "set", Inputs: []schema.Parameter{{Name: "a", Type: "uint256"}}},
		{Name: "set", Inputs: []schema.Parameter{{Name: "a", Type: "address"}}},
		{Name: "set", Inputs: []schema.Parameter{}},
	}, nil)
	require.NoError(t, err)

	m, err := codec.Resolve("set", 1)
	require.NoError(t, err)
	assert.Equal(t, "set(uint256)", m.Sig, "first declared overload should win")
}

func TestEncodeTuple(t *testing.T) {
	codec, err := New(schema.ABI{{
		Name: "settle",
		Inputs: []schema.Parameter{
			{Name: "order", Type: "tuple", Components: []schema.Parameter{
				{Name: "maker", Type: "address"},
				{Name: "amounts", Type: "uint[]"},
			}},
			{Name: "flags", Type: "bytes2"},
			{Name: "delta", Type: "int8"},
		},
	}}, nil)
	require.NoError(t, err)

	positional, err := codec.Encode("settle", []interface{}{alice, []interface{}{1, "2"}}, "0x0102", -3)
	require.NoError(t, err)

	named, err := codec.Encode("settle",
		map[string]interface{}{"maker": common.HexToAddress(alice), "amounts": []*big.Int{big.NewInt(1), big.NewInt(2)}},
		[]byte{0x01, 0x02}, int8(-3))
	require.NoError(t, err)
	assert.Equal(t, positional, named)

	call, err := codec.Decode(named)
	require.NoError(t, err)
	require.Len(t, call.Params, 3)

	assert.Equal(t, "tuple", call.Params[0].Type)
	assert.Equal(t, []DecodedParam{
		{Name: "maker", Type: "address", Value: alice},
		{Name: "amounts", Type: "uint256[]", Value: []interface{}{"1", "2"}},
	}, call.Params[0].Value)
	assert.Equal(t, "0x0102", call.Params[1].Value)
	assert.Equal(t, "-3", call.Params[2].Value)

	_, err = codec.Encode("settle", []interface{}{alice}, "0x0102", 0)
	assert.Error(t, err, "tuple component count mismatch")

	_, err = codec.Encode("settle", []interface{}{alice, []interface{}{1}}, "0x0102", 128)
	assert.ErrorIs(t, err, ErrEncodingProducedInvalidValue, "int8 overflow")
}

func TestSharedTableStrictOwnership(t *testing.T) {
	table := selector.New()

	erc20 := newCodec(t, "testdata/erc20.json", &Config{Table: table, EagerRegister: true})
	loose := newCodec(t, "testdata/erc721.json", &Config{Table: table})
	strict := newCodec(t, "testdata/erc721.json", &Config{Table: table, StrictOwnership: true})

	transfer, err := erc20.Encode("transfer", alice, 1)
	require.NoError(t, err)

	// Any codec on the table can decode the ERC20 call
	call, err := loose.Decode(transfer)
	require.NoError(t, err)
	assert.Equal(t, "transfer", call.Name)

	// unless ownership is enforced
	_, err = strict.Decode(transfer)
	assert.ErrorIs(t, err, ErrUnknownFunction)

	burn, err := strict.Encode("burn", alice, 1)
	require.NoError(t, err)
	call, err = strict.Decode(burn)
	require.NoError(t, err)
	assert.Equal(t, "burn", call.Name)
}

func TestClose(t *testing.T) {
	table := selector.New()
	erc20 := newCodec(t, "testdata/erc20.json", &Config{Table: table, EagerRegister: true})
	erc721 := newCodec(t, "testdata/erc721.json", &Config{Table: table, EagerRegister: true})

	erc20.Close()
	assert.False(t, table.Registered(erc20.Contract()))

	_, ok := table.Lookup("a9059cbb")
	assert.False(t, ok, "erc20 only selectors should be gone")
	_, ok = table.Lookup("42842e0e")
	assert.True(t, ok)

	// A closed codec registers again on its next decode
	transfer, err := erc20.Encode("transfer", alice, 1)
	require.NoError(t, err)
	_, err = erc20.Decode(transfer)
	require.NoError(t, err)

	erc721.Close()
	erc20.Close()
	methods, events := table.Size()
	assert.Zero(t, methods)
	assert.Zero(t, events)
}

func TestLazyRegistration(t *testing.T) {
	codec := newCodec(t, "testdata/erc20.json", nil)
	assert.False(t, codec.Table().Registered(codec.Contract()))

	_, err := codec.Encode("transfer", alice, 1)
	require.NoError(t, err)
	assert.False(t, codec.Table().Registered(codec.Contract()), "encoding does not need the table")

	transfer, err := codec.Encode("transfer", alice, "30000000000000000")
	require.NoError(t, err)

	first, err := codec.Decode(transfer)
	require.NoError(t, err)
	assert.True(t, codec.Table().Registered(codec.Contract()))
	methods, events := codec.Table().Size()

	// Registration happens once, later decodes see the same table
	second, err := codec.Decode(transfer)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	m, e := codec.Table().Size()
	assert.Equal(t, methods, m)
	assert.Equal(t, events, e)
	assert.Equal(t, 9, m)
	assert.Equal(t, 2, e)

	_, err = codec.Decode("0xdeadbeef")
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

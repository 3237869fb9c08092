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
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
)

// normalize converts a value unpacked by the ABI codec into its JSON friendly
// form: lowercase hex addresses, base-10 integers, 0x hex byte strings, lists
// for arrays and ordered parameter lists for tuples.
//
// normalize 将 ABI 解码出的值转换为便于 JSON 表示的形式。
func normalize(t abi.Type, v interface{}) interface{} {
	switch t.T {
	case abi.AddressTy:
		if addr, ok := v.(common.Address); ok {
			return strings.ToLower(addr.Hex())
		}
	case abi.IntTy, abi.UintTy:
		return decimal(v)
	case abi.BytesTy:
		if b, ok := v.([]byte); ok {
			return hexutil.Encode(b)
		}
	case abi.FixedBytesTy, abi.FunctionTy, abi.HashTy:
		if b, ok := byteArray(v); ok {
			return hexutil.Encode(b)
		}
	case abi.SliceTy, abi.ArrayTy:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return v
		}
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = normalize(*t.Elem, rv.Index(i).Interface())
		}
		return out
	case abi.TupleTy:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Struct {
			return v
		}
		out := make([]DecodedParam, len(t.TupleElems))
		for i, elem := range t.TupleElems {
			out[i] = DecodedParam{
				Name:  t.TupleRawNames[i],
				Type:  elem.String(),
				Value: normalize(*elem, rv.Field(i).Interface()),
			}
		}
		return out
	}
	return v
}

// decimal renders any integer the codec produces in base 10.
func decimal(v interface{}) interface{} {
	switch n := v.(type) {
	case *big.Int:
		return n.String()
	case big.Int:
		return n.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	}
	return v
}

// normalizeTopic converts an indexed event argument. Indexed dynamic types
// are only present as their hash, so everything besides addresses and
// integers is returned as the raw topic.
//
// normalizeTopic 转换索引事件参数。除地址和整数外，其余类型返回原始主题。
func normalizeTopic(t abi.Type, topic common.Hash, raw string) interface{} {
	switch t.T {
	case abi.AddressTy:
		return strings.ToLower(common.BytesToAddress(topic[:]).Hex())
	case abi.UintTy:
		return new(uint256.Int).SetBytes(topic[:]).Dec()
	case abi.IntTy:
		return math.S256(new(big.Int).SetBytes(topic[:])).String()
	}
	return raw
}

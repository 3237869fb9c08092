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
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	cmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
)

var big1 = big.NewInt(1)

// coerce converts a caller supplied argument into the Go value the ABI codec
// packs for type t. Values of a Go type that has no conversion are returned
// as is and left for the codec to reject.
//
// coerce 将调用方提供的参数转换为 ABI 编解码器打包所需的 Go 值。
func coerce(t abi.Type, arg interface{}) (interface{}, error) {
	switch t.T {
	case abi.AddressTy:
		return toAddress(arg)
	case abi.IntTy, abi.UintTy:
		return toInteger(t, arg)
	case abi.BoolTy:
		return toBool(arg)
	case abi.StringTy:
		switch v := arg.(type) {
		case []byte:
			return string(v), nil
		case json.Number:
			return string(v), nil
		}
		return arg, nil
	case abi.BytesTy:
		return toBytes(arg)
	case abi.FixedBytesTy:
		return toFixedBytes(t, arg)
	case abi.SliceTy, abi.ArrayTy:
		return toList(t, arg)
	case abi.TupleTy:
		return toTuple(t, arg)
	}
	return arg, nil
}

func toAddress(arg interface{}) (interface{}, error) {
	switch v := arg.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		if v == nil {
			return nil, invalidValue("address", v)
		}
		return *v, nil
	case string:
		if !has0xPrefix(v) || !common.IsHexAddress(v) {
			return nil, invalidValue("address", v)
		}
		return common.HexToAddress(v), nil
	}
	return arg, nil
}

func toInteger(t abi.Type, arg interface{}) (interface{}, error) {
	kind := "uint"
	if t.T == abi.IntTy {
		kind = "int"
	}
	kind = fmt.Sprintf("%s%d", kind, t.Size)

	b, ok, err := parseInteger(arg)
	if err != nil {
		return nil, invalidValue(kind, arg)
	}
	if !ok {
		return arg, nil
	}
	if !fits(b, t.Size, t.T == abi.IntTy) {
		return nil, invalidValue(kind, arg)
	}
	typ := t.GetType()
	if typ.Kind() == reflect.Ptr {
		return b, nil
	}
	v := reflect.New(typ).Elem()
	if t.T == abi.UintTy {
		v.SetUint(b.Uint64())
	} else {
		v.SetInt(b.Int64())
	}
	return v.Interface(), nil
}

// parseInteger reads an integer out of the supported numeric inputs. The
// boolean result is false if arg is of a type that carries no integer.
func parseInteger(arg interface{}) (*big.Int, bool, error) {
	switch v := arg.(type) {
	case *big.Int:
		if v == nil {
			return nil, true, fmt.Errorf("nil integer")
		}
		return new(big.Int).Set(v), true, nil
	case big.Int:
		return new(big.Int).Set(&v), true, nil
	case *uint256.Int:
		if v == nil {
			return nil, true, fmt.Errorf("nil integer")
		}
		return v.ToBig(), true, nil
	case int:
		return big.NewInt(int64(v)), true, nil
	case int8:
		return big.NewInt(int64(v)), true, nil
	case int16:
		return big.NewInt(int64(v)), true, nil
	case int32:
		return big.NewInt(int64(v)), true, nil
	case int64:
		return big.NewInt(v), true, nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), true, nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), true, nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), true, nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), true, nil
	case uint64:
		return new(big.Int).SetUint64(v), true, nil
	case float32:
		b, err := floatInteger(float64(v))
		return b, true, err
	case float64:
		b, err := floatInteger(v)
		return b, true, err
	case json.Number:
		if b, err := stringInteger(v.String()); err == nil {
			return b, true, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, true, err
		}
		b, err := floatInteger(f)
		return b, true, err
	case string:
		b, err := stringInteger(v)
		return b, true, err
	}
	return nil, false, nil
}

// stringInteger parses a decimal or 0x prefixed hex integer with an optional
// leading minus sign.
func stringInteger(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	b, ok := cmath.ParseBig256(s)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	if neg {
		b.Neg(b)
	}
	return b, nil
}

func floatInteger(f float64) (*big.Int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("non-integral number %v", f)
	}
	b, _ := big.NewFloat(f).Int(nil)
	return b, nil
}

// fits reports whether b is representable in size bits.
func fits(b *big.Int, size int, signed bool) bool {
	if !signed {
		return b.Sign() >= 0 && b.BitLen() <= size
	}
	limit := new(big.Int).Lsh(big1, uint(size-1))
	if b.Cmp(limit) >= 0 {
		return false
	}
	return b.Cmp(limit.Neg(limit)) >= 0
}

func toBool(arg interface{}) (interface{}, error) {
	if s, ok := arg.(string); ok {
		switch strings.ToLower(s) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, invalidValue("bool", s)
	}
	return arg, nil
}

func toBytes(arg interface{}) (interface{}, error) {
	switch v := arg.(type) {
	case []byte:
		return v, nil
	case string:
		if !has0xPrefix(v) {
			return []byte(v), nil
		}
		b, err := hexutil.Decode(v)
		if err != nil {
			return nil, invalidValue("bytes", v)
		}
		return b, nil
	}
	if b, ok := byteArray(arg); ok {
		return b, nil
	}
	return arg, nil
}

func toFixedBytes(t abi.Type, arg interface{}) (interface{}, error) {
	var src []byte
	switch v := arg.(type) {
	case []byte:
		src = v
	case string:
		b, err := hexutil.Decode(v)
		if err != nil {
			return nil, invalidValue(t.String(), v)
		}
		src = b
	default:
		b, ok := byteArray(arg)
		if !ok {
			return arg, nil
		}
		src = b
	}
	if len(src) > t.Size {
		return nil, invalidValue(t.String(), arg)
	}
	out := reflect.New(t.GetType()).Elem()
	reflect.Copy(out, reflect.ValueOf(src))
	return out.Interface(), nil
}

// byteArray copies a [N]byte value of any length.
func byteArray(arg interface{}) ([]byte, bool) {
	rv := reflect.ValueOf(arg)
	if rv.Kind() != reflect.Array || rv.Type().Elem().Kind() != reflect.Uint8 {
		return nil, false
	}
	out := make([]byte, rv.Len())
	reflect.Copy(reflect.ValueOf(out), rv)
	return out, true
}

func toList(t abi.Type, arg interface{}) (interface{}, error) {
	rv := reflect.ValueOf(arg)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return arg, nil
	}
	n := rv.Len()

	var out reflect.Value
	if t.T == abi.ArrayTy {
		if n != t.Size {
			return nil, fmt.Errorf("%s: expected %d elements, got %d", t.String(), t.Size, n)
		}
		out = reflect.New(t.GetType()).Elem()
	} else {
		out = reflect.MakeSlice(t.GetType(), n, n)
	}
	for i := 0; i < n; i++ {
		elem, err := coerce(*t.Elem, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if err := assign(out.Index(i), elem); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return out.Interface(), nil
}

func toTuple(t abi.Type, arg interface{}) (interface{}, error) {
	var fields []interface{}
	switch v := arg.(type) {
	case []interface{}:
		if len(v) != len(t.TupleElems) {
			return nil, fmt.Errorf("%s: expected %d components, got %d", t.String(), len(t.TupleElems), len(v))
		}
		fields = v
	case map[string]interface{}:
		fields = make([]interface{}, len(t.TupleElems))
		for i, name := range t.TupleRawNames {
			field, ok := v[name]
			if !ok {
				return nil, fmt.Errorf("%s: missing component %q", t.String(), name)
			}
			fields[i] = field
		}
	default:
		return arg, nil
	}
	out := reflect.New(t.TupleType).Elem()
	for i, elem := range t.TupleElems {
		value, err := coerce(*elem, fields[i])
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		if err := assign(out.Field(i), value); err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
	}
	return out.Interface(), nil
}

func assign(dst reflect.Value, value interface{}) error {
	src := reflect.ValueOf(value)
	if !src.IsValid() || !src.Type().AssignableTo(dst.Type()) {
		return fmt.Errorf("cannot use %T as %v", value, dst.Type())
	}
	dst.Set(src)
	return nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

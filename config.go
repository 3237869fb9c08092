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
	"fmt"

	"github.com/JCCDex/jcc-moac-abi/selector"
)

// LogOutputMode selects the shape of decoded logs.
type LogOutputMode string

const (
	// LogOutputReduced returns fresh {address, events, name} records.
	LogOutputReduced LogOutputMode = "reduced"

	// LogOutputMerged returns the original log augmented with {events, name}.
	LogOutputMerged LogOutputMode = "merged"
)

// UnmarshalText parses the mode from configuration files and flags.
func (m *LogOutputMode) UnmarshalText(input []byte) error {
	switch mode := LogOutputMode(input); mode {
	case LogOutputReduced, LogOutputMerged:
		*m = mode
		return nil
	case "":
		*m = LogOutputReduced
		return nil
	default:
		return fmt.Errorf("unknown log output mode %q (want %q or %q)", input, LogOutputReduced, LogOutputMerged)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m LogOutputMode) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

// Config contains the settings of a codec.
// Config 包含编解码器的配置项。
type Config struct {
	// LogOutput is the shape of decoded logs.
	LogOutput LogOutputMode

	// StrictOwnership makes decoding ignore table entries which were only
	// registered by other contracts sharing the table.
	// StrictOwnership 使解码忽略仅由共享该表的其他合约注册的条目。
	StrictOwnership bool

	// EagerRegister populates the selector table at construction instead of on
	// the first decode.
	EagerRegister bool

	// Table is the selector table to use. A private table is created if nil.
	Table *selector.Table `toml:"-"`
}

// DefaultConfig contains the default codec settings.
var DefaultConfig = Config{
	LogOutput: LogOutputReduced,
}

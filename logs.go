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
	"errors"
	"fmt"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// DecodeLogs decodes the event of every log.
//
// Logs without topics are dropped. Logs whose first topic is not a known
// event selector are returned unchanged. Known events are decoded by walking
// the event inputs in declaration order, indexed inputs taking the next topic
// and the others the next value unpacked from the log data.
//
// DecodeLogs 解码每条日志的事件。没有主题的日志被丢弃，未知事件的日志原样返回。
// 已知事件按输入声明顺序还原参数：索引参数取下一个主题，非索引参数取数据中的下一个值。
func (c *Codec) DecodeLogs(logs []Log) ([]DecodedLog, error) {
	if err := c.ensureRegistered(); err != nil {
		return nil, err
	}
	decoded := make([]DecodedLog, 0, len(logs))
	for i, l := range logs {
		d, ok, err := c.decodeLog(l)
		if err != nil {
			return nil, fmt.Errorf("log %d: %w", i, err)
		}
		if ok {
			decoded = append(decoded, d)
		}
	}
	log.Trace("Decoded contract logs", "logs", len(logs), "kept", len(decoded))
	return decoded, nil
}

// DecodeLog decodes a single log. The boolean result is false if the log has
// no topics and would be dropped by DecodeLogs.
func (c *Codec) DecodeLog(l Log) (DecodedLog, bool, error) {
	if err := c.ensureRegistered(); err != nil {
		return DecodedLog{}, false, err
	}
	return c.decodeLog(l)
}

func (c *Codec) decodeLog(l Log) (DecodedLog, bool, error) {
	if len(l.Topics) == 0 {
		return DecodedLog{}, false, nil
	}
	passthrough := DecodedLog{Log: l}

	selector, err := parseTopic(l.Topics[0])
	if err != nil {
		return passthrough, true, nil
	}
	event, err := c.lookupEvent(selector)
	if err != nil {
		return passthrough, true, nil
	}
	data, err := decodeData(l.Data)
	if err != nil {
		return DecodedLog{}, false, fmt.Errorf("%w: %s data: %v", ErrMalformedLog, event.Name, err)
	}
	values, err := event.Inputs.UnpackValues(data)
	if err != nil {
		return DecodedLog{}, false, fmt.Errorf("%w: %s data: %v", ErrMalformedLog, event.Name, err)
	}
	var (
		params = make([]DecodedParam, len(event.Inputs))
		topic  = 1
		value  = 0
	)
	for i, arg := range event.Inputs {
		param := DecodedParam{Name: arg.Name, Type: event.Item.Inputs[i].Type}
		if arg.Indexed {
			if topic >= len(l.Topics) {
				return DecodedLog{}, false, fmt.Errorf("%w: %s is missing topic %d", ErrMalformedLog, event.Name, topic)
			}
			hash, err := parseTopic(l.Topics[topic])
			if err != nil {
				return DecodedLog{}, false, fmt.Errorf("%w: %s topic %d: %v", ErrMalformedLog, event.Name, topic, err)
			}
			param.Value = normalizeTopic(arg.Type, hash, l.Topics[topic])
			topic++
		} else {
			param.Value = normalize(arg.Type, values[value])
			value++
		}
		params[i] = param
	}
	if c.config.LogOutput == LogOutputMerged {
		return DecodedLog{Log: l, Name: event.Name, Events: params}, true, nil
	}
	return DecodedLog{
		Log:     Log{Address: l.Address},
		Name:    event.Name,
		Events:  params,
		reduced: true,
	}, true, nil
}

// FilterLogs queries logs from src and decodes them.
// FilterLogs 从日志源查询日志并解码。
func (c *Codec) FilterLogs(ctx context.Context, src LogFilterer, q ethereum.FilterQuery) ([]DecodedLog, error) {
	logs, err := src.FilterLogs(ctx, q)
	if err != nil {
		return nil, err
	}
	return c.DecodeLogs(logs)
}

// TransactionLogs fetches the receipt logs of a transaction and decodes them.
func (c *Codec) TransactionLogs(ctx context.Context, src ReceiptLogReader, txHash common.Hash) ([]DecodedLog, error) {
	logs, err := src.TransactionLogs(ctx, txHash)
	if err != nil {
		return nil, err
	}
	return c.DecodeLogs(logs)
}

func parseTopic(s string) (common.Hash, error) {
	b, err := decodeHex(s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("topic has %d bytes, want %d", len(b), common.HashLength)
	}
	return common.BytesToHash(b), nil
}

// decodeData decodes the log data, which may be empty.
func decodeData(s string) ([]byte, error) {
	b, err := decodeHex(s)
	if errors.Is(err, errEmptyHex) {
		return nil, nil
	}
	return b, err
}

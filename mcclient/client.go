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

// Package mcclient provides a log source for the MOAC RPC API.
package mcclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	moacabi "github.com/JCCDex/jcc-moac-abi"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	// Namespace is the RPC namespace served by MOAC nodes.
	Namespace = "mc"

	// EthNamespace is the namespace of Ethereum compatible gateways.
	EthNamespace = "eth"
)

// Client reads logs over the MOAC RPC API.
// Client 通过 MOAC RPC API 读取日志。
type Client struct {
	c  *rpc.Client
	ns string // RPC 命名空间，mc 或 eth
}

// Dial connects a client to the given URL.
func Dial(rawurl string) (*Client, error) {
	return DialContext(context.Background(), rawurl)
}

// DialContext connects a client to the given URL with context.
// DialContext 使用提供的上下文连接到指定的 URL。
func DialContext(ctx context.Context, rawurl string) (*Client, error) {
	c, err := rpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return NewClient(c), nil
}

// NewClient creates a client that uses the given RPC client and the mc
// namespace.
func NewClient(c *rpc.Client) *Client {
	return &Client{c: c, ns: Namespace}
}

// WithNamespace returns a client issuing its calls in the given namespace.
func (mc *Client) WithNamespace(ns string) *Client {
	if ns == "" {
		ns = Namespace
	}
	return &Client{c: mc.c, ns: ns}
}

// Namespace returns the RPC namespace of the client.
func (mc *Client) Namespace() string {
	return mc.ns
}

// Close closes the underlying RPC connection.
func (mc *Client) Close() {
	mc.c.Close()
}

// Client gets the underlying RPC client.
func (mc *Client) Client() *rpc.Client {
	return mc.c
}

func (mc *Client) method(name string) string {
	return mc.ns + "_" + name
}

// BlockNumber returns the most recent block number.
// BlockNumber 通过 "mc_blockNumber" 获取当前链的最新区块号。
func (mc *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var result hexutil.Uint64
	err := mc.c.CallContext(ctx, &result, mc.method("blockNumber"))
	return uint64(result), err
}

// FilterLogs executes a filter query.
// FilterLogs 通过 "mc_getLogs" 执行日志过滤查询。
func (mc *Client) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]moacabi.Log, error) {
	arg, err := toFilterArg(q)
	if err != nil {
		return nil, err
	}
	var result []moacabi.Log
	if err := mc.c.CallContext(ctx, &result, mc.method("getLogs"), arg); err != nil {
		return nil, fmt.Errorf("%s: %w", mc.method("getLogs"), err)
	}
	log.Trace("Fetched contract logs", "method", mc.method("getLogs"), "logs", len(result))
	return result, nil
}

// TransactionLogs returns the logs carried by the receipt of a transaction.
// Pending transactions have no receipt and yield ethereum.NotFound.
//
// TransactionLogs 通过 "mc_getTransactionReceipt" 获取交易收据中的日志，待处理交易无收据。
func (mc *Client) TransactionLogs(ctx context.Context, txHash common.Hash) ([]moacabi.Log, error) {
	var r *struct {
		Logs []moacabi.Log `json:"logs"`
	}
	if err := mc.c.CallContext(ctx, &r, mc.method("getTransactionReceipt"), txHash); err != nil {
		return nil, fmt.Errorf("%s: %w", mc.method("getTransactionReceipt"), err)
	}
	if r == nil {
		return nil, ethereum.NotFound
	}
	return r.Logs, nil
}

func toFilterArg(q ethereum.FilterQuery) (interface{}, error) {
	arg := map[string]interface{}{
		"address": q.Addresses,
		"topics":  q.Topics,
	}
	if q.BlockHash != nil {
		arg["blockHash"] = *q.BlockHash
		if q.FromBlock != nil || q.ToBlock != nil {
			return nil, errors.New("cannot specify both BlockHash and FromBlock/ToBlock")
		}
	} else {
		if q.FromBlock == nil {
			arg["fromBlock"] = "0x0"
		} else {
			arg["fromBlock"] = toBlockNumArg(q.FromBlock)
		}
		arg["toBlock"] = toBlockNumArg(q.ToBlock)
	}
	return arg, nil
}

func toBlockNumArg(number *big.Int) string {
	if number == nil {
		return "latest"
	}
	if number.Sign() >= 0 {
		return hexutil.EncodeBig(number)
	}
	// It's negative.
	if number.IsInt64() {
		return rpc.BlockNumber(number.Int64()).String()
	}
	return fmt.Sprintf("<invalid %d>", number)
}

var (
	_ moacabi.LogFilterer       = (*Client)(nil)
	_ moacabi.ReceiptLogReader  = (*Client)(nil)
	_ moacabi.BlockNumberReader = (*Client)(nil)
)

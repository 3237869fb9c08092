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

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// 日志（Logs）：由合约通过 emit 语句生成，存储在交易收据中，包含地址、主题和数据。
// 链重组时节点返回的日志可能将 Removed 设置为 true。

// LogFilterer provides access to contract log events using a one-off query.
// The logs are returned in the raw node shape so MOAC specific fields such as
// TxData survive.
//
// LogFilterer 提供一次性查询合约日志事件的能力，对应 mc_getLogs。
type LogFilterer interface {
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]Log, error)
}

// ReceiptLogReader provides access to the logs of a mined transaction.
// ReceiptLogReader 提供对已打包交易日志的访问，对应 mc_getTransactionReceipt。
type ReceiptLogReader interface {
	TransactionLogs(ctx context.Context, txHash common.Hash) ([]Log, error)
}

// BlockNumberReader provides access to the current block number.
// BlockNumberReader 提供对当前区块号的访问。
type BlockNumberReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

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

// Package version reads the version of the moacabi build from the release
// constants and the VCS stamp embedded by the go tool.
package version

import (
	"fmt"

	"github.com/JCCDex/jcc-moac-abi/version"
)

const ourPath = "github.com/JCCDex/jcc-moac-abi" // 本模块路径，用于识别主模块的构建信息

// Semantic holds the textual version string for major.minor.patch.
// Semantic 保存 major.minor.patch 形式的版本字符串。
var Semantic = fmt.Sprintf("%d.%d.%d", version.Major, version.Minor, version.Patch)

// WithMeta holds the textual version string including the metadata.
var WithMeta = func() string {
	v := Semantic
	if version.Meta != "" {
		v += "-" + version.Meta // 例如 0.3.0-unstable
	}
	return v
}()

// WithCommit appends the short commit hash and, for unstable builds, the
// commit date to the version string.
// WithCommit 在版本号后追加提交哈希，非稳定版本还会追加提交日期。
func WithCommit(gitCommit, gitDate string) string {
	vsn := WithMeta
	if len(gitCommit) >= 8 {
		vsn += "-" + gitCommit[:8]
	}
	if (version.Meta != "stable") && (gitDate != "") {
		vsn += "-" + gitDate
	}
	return vsn
}

// Full is the version shown by the command line tools: WithCommit for the
// embedded VCS state, marked when the working tree was modified.
// Full 是命令行工具显示的版本号，工作区有未提交修改时会带上 dirty 标记。
func Full() string {
	info, ok := VCS()
	if !ok {
		return WithMeta
	}
	vsn := WithCommit(info.Commit, info.Date)
	if info.Dirty {
		vsn += "-dirty"
	}
	return vsn
}

// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import "github.com/q191201771/naza/pkg/nazalog"

var Log = nazalog.GetGlobalLogger()

var (
	// TsPacketSize TS packet固定大小
	TsPacketSize = 188

	// OutputChunkSize 每次调用sink发送的最大字节数，7个TS packet，保证在常见MTU下不分片
	OutputChunkSize = 1316

	// CarouselCycleMs 默认情况下一个完整的NIT每秒重复发送一次
	CarouselCycleMs = 1000
)

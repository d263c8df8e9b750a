// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

// StatCarousel 发送循环的统计，计数从进程启动开始
type StatCarousel struct {
	Output        string `json:"output"`
	Pid           uint16 `json:"pid"`
	Cycles        uint64 `json:"cycles"`
	Packets       uint64 `json:"packets"`
	Bytes         uint64 `json:"bytes"`
	SendErrors    uint64 `json:"send_errors"`
	Cc            uint8  `json:"cc"`
	ChunkInterval int64  `json:"chunk_interval_ns"`
	Bitrate       int    `json:"bitrate"` // kbit/s
}

// StatNit 当前发送的NIT的概要
type StatNit struct {
	TableId     uint8         `json:"table_id"`
	Version     uint8         `json:"version"`
	NetworkId   uint16        `json:"network_id"`
	NetworkName string        `json:"network_name"`
	Order       string        `json:"order"`
	Sections    int           `json:"sections"`
	Packets     int           `json:"packets"`
	Items       []StatNitItem `json:"items"`
}

type StatNitItem struct {
	Tsid       uint16 `json:"tsid"`
	Onid       uint16 `json:"onid"`
	Frequency  uint64 `json:"frequency"` // Hz
	SymbolRate uint32 `json:"symbol_rate"`
	Modulation string `json:"modulation"`
	Services   int    `json:"services"`
}

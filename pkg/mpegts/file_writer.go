// Copyright 2019, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"os"

	"github.com/q191201771/nitstream/pkg/base"
)

// FileWriter 把收到的TS数据原样落盘，可以用其他工具分析
type FileWriter struct {
	fp    *os.File
	count int
}

func (fw *FileWriter) Create(filename string) (err error) {
	fw.fp, err = os.Create(filename)
	return
}

func (fw *FileWriter) Write(b []byte) (err error) {
	if fw.fp == nil {
		return base.ErrMpegts
	}
	if len(b)%TsPacketSize != 0 {
		Log.Warnf("write data not aligned to ts packet. len=%d, file=%s", len(b), fw.fp.Name())
	}
	_, err = fw.fp.Write(b)
	fw.count += len(b)
	return
}

// WrittenPackets 已经写入的TS packet个数
func (fw *FileWriter) WrittenPackets() int {
	return fw.count / TsPacketSize
}

func (fw *FileWriter) Dispose() error {
	if fw.fp == nil {
		return base.ErrMpegts
	}
	return fw.fp.Close()
}

func (fw *FileWriter) Name() string {
	if fw.fp == nil {
		return ""
	}
	return fw.fp.Name()
}

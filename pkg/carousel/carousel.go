// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package carousel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/q191201771/naza/pkg/bitrate"
	"github.com/q191201771/naza/pkg/nazaatomic"
	"github.com/q191201771/nitstream/pkg/base"
	"github.com/q191201771/nitstream/pkg/mpegts"
	"github.com/q191201771/nitstream/pkg/output"
)

// Packer 把表打包成TS packet，追加到out后面
//
// *mpegts.Nit 实现了该接口
type Packer interface {
	Pack(pid uint16, cc *uint8, out []byte) ([]byte, error)
}

// Sink 一次Send对应一次发送
//
// *output.Output 实现了该接口
type Sink interface {
	Send(b []byte) error
}

type Option struct {
	Pid uint16

	// CycleDuration 一个完整的表发送完所用的时间
	CycleDuration time.Duration

	// ChunkSize 每次调用Sink.Send的最大字节数，需要是188的整数倍
	ChunkSize int

	InitialCc uint8

	// IsFatal 判断Sink返回的错误是否需要结束发送循环，默认使用output.IsFatal
	IsFatal func(err error) bool
}

var defaultOption = Option{
	Pid:           mpegts.PidNit,
	CycleDuration: time.Duration(base.CarouselCycleMs) * time.Millisecond,
	ChunkSize:     base.OutputChunkSize,
	InitialCc:     0,
	IsFatal:       output.IsFatal,
}

type ModOption func(option *Option)

// Carousel 周期性的把表编码并按固定节奏发送出去
//
// RunOnce和RunLoop只能在一个协程中调用，Stat和Cc可以在其他协程中调用
type Carousel struct {
	option Option
	table  Packer
	sink   Sink

	buf []byte
	cc  nazaatomic.Uint32 // 只在发送循环中修改

	cycles        nazaatomic.Uint64
	packets       nazaatomic.Uint64
	bytes         nazaatomic.Uint64
	sendErrors    nazaatomic.Uint64
	chunkInterval nazaatomic.Int64

	brMutex sync.Mutex
	br      bitrate.Bitrate
}

func New(table Packer, sink Sink, modOptions ...ModOption) *Carousel {
	option := defaultOption
	for _, fn := range modOptions {
		fn(&option)
	}
	if option.ChunkSize < mpegts.TsPacketSize {
		option.ChunkSize = mpegts.TsPacketSize
	}
	option.ChunkSize -= option.ChunkSize % mpegts.TsPacketSize
	if option.IsFatal == nil {
		option.IsFatal = output.IsFatal
	}

	c := &Carousel{
		option: option,
		table:  table,
		sink:   sink,
		br: bitrate.New(func(option *bitrate.Option) {
			option.WindowMs = 5000
		}),
	}
	c.cc.Store(uint32(option.InitialCc & 0x0F))
	return c
}

// CalcChunkInterval 两次发送之间的间隔
//
// 一个周期内发送ceil(packetCount/7)次，间隔均分周期时长，所以 次数*间隔 ≈ 周期时长
func CalcChunkInterval(packetCount int, cycle time.Duration) time.Duration {
	return CalcChunkIntervalWithSize(packetCount, cycle, base.OutputChunkSize)
}

func CalcChunkIntervalWithSize(packetCount int, cycle time.Duration, chunkSize int) time.Duration {
	perChunk := chunkSize / mpegts.TsPacketSize
	if perChunk <= 0 {
		perChunk = 1
	}
	chunkCount := (packetCount + perChunk - 1) / perChunk
	if chunkCount <= 0 {
		return cycle
	}
	return cycle / time.Duration(chunkCount)
}

// RunOnce 发送一个完整的周期
//
// ctx被取消时返回ctx.Err()，Sink返回不可恢复的错误时返回该错误，其他发送错误只记录日志
func (c *Carousel) RunOnce(ctx context.Context) error {
	cc := uint8(c.cc.Load())
	var err error
	c.buf, err = c.table.Pack(c.option.Pid, &cc, c.buf[:0])
	if err != nil {
		return err
	}
	c.cc.Store(uint32(cc))

	packetCount := len(c.buf) / mpegts.TsPacketSize
	interval := CalcChunkIntervalWithSize(packetCount, c.option.CycleDuration, c.option.ChunkSize)
	c.chunkInterval.Store(int64(interval))

	// 每次发送之后再开始计时
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for pos := 0; pos < len(c.buf); pos += c.option.ChunkSize {
		end := pos + c.option.ChunkSize
		if end > len(c.buf) {
			end = len(c.buf)
		}
		chunk := c.buf[pos:end]

		if err := c.sink.Send(chunk); err != nil {
			c.sendErrors.Increment()
			if c.option.IsFatal(err) {
				Log.Errorf("send fatal. err=%+v", err)
				return err
			}
			Log.Warnf("send failed. err=%+v", err)
		} else {
			c.packets.Add(uint64(len(chunk) / mpegts.TsPacketSize))
			c.bytes.Add(uint64(len(chunk)))
			c.brMutex.Lock()
			c.br.Add(len(chunk))
			c.brMutex.Unlock()
		}

		if timer == nil {
			timer = time.NewTimer(interval)
		} else {
			timer.Reset(interval)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	c.cycles.Increment()
	return nil
}

// RunLoop 阻塞直到ctx被取消(返回nil)，或者发生不可恢复的错误(返回该错误)
func (c *Carousel) RunLoop(ctx context.Context) error {
	Log.Infof("carousel start. pid=%d, cycle=%s, chunk=%d, cc=%d",
		c.option.Pid, c.option.CycleDuration, c.option.ChunkSize, c.Cc())
	for {
		if err := c.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				Log.Infof("carousel stop. cycles=%d", c.cycles.Load())
				return nil
			}
			return err
		}
	}
}

// Cc 下一个TS packet将要使用的continuity counter
func (c *Carousel) Cc() uint8 {
	return uint8(c.cc.Load())
}

func (c *Carousel) Stat() base.StatCarousel {
	c.brMutex.Lock()
	rate := int(c.br.Rate())
	c.brMutex.Unlock()

	stat := base.StatCarousel{
		Pid:           c.option.Pid,
		Cycles:        c.cycles.Load(),
		Packets:       c.packets.Load(),
		Bytes:         c.bytes.Load(),
		SendErrors:    c.sendErrors.Load(),
		Cc:            c.Cc(),
		ChunkInterval: c.chunkInterval.Load(),
		Bitrate:       rate,
	}
	if s, ok := c.sink.(fmt.Stringer); ok {
		stat.Output = s.String()
	}
	return stat
}

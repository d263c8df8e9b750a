// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package carousel_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/nitstream/pkg/base"
	"github.com/q191201771/nitstream/pkg/carousel"
	"github.com/q191201771/nitstream/pkg/mpegts"
)

// packetPacker 每次Pack生成packetCount个TS packet
type packetPacker struct {
	packetCount int
}

func (p *packetPacker) Pack(pid uint16, cc *uint8, out []byte) ([]byte, error) {
	for i := 0; i < p.packetCount; i++ {
		packet := make([]byte, mpegts.TsPacketSize)
		for j := range packet {
			packet[j] = 0xFF
		}
		mpegts.PackTsPacketHeader(packet, mpegts.TsPacketHeader{
			Sync:             0x47,
			PayloadUnitStart: 1,
			Pid:              pid,
			Adaptation:       1,
			Cc:               *cc,
		})
		*cc = (*cc + 1) & 0x0F
		out = append(out, packet...)
	}
	return out, nil
}

type captureSink struct {
	mu     sync.Mutex
	chunks [][]byte
	errs   []error // 依次作为Send的返回值
}

func (s *captureSink) Send(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errs) != 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return err
		}
	}
	s.chunks = append(s.chunks, append([]byte(nil), b...))
	return nil
}

func (s *captureSink) packets() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ret [][]byte
	for _, c := range s.chunks {
		for i := 0; i < len(c); i += mpegts.TsPacketSize {
			ret = append(ret, c[i:i+mpegts.TsPacketSize])
		}
	}
	return ret
}

func fastCycle(option *carousel.Option) {
	option.CycleDuration = time.Millisecond
}

// slowSink 记录每次Send开始的时间，第一次Send耗时delay
type slowSink struct {
	mu    sync.Mutex
	delay time.Duration
	times []time.Time
}

func (s *slowSink) Send(b []byte) error {
	s.mu.Lock()
	s.times = append(s.times, time.Now())
	first := len(s.times) == 1
	s.mu.Unlock()
	if first {
		time.Sleep(s.delay)
	}
	return nil
}

func TestRunOnceIntervalAfterSend(t *testing.T) {
	sink := &slowSink{delay: 30 * time.Millisecond}
	// 8个packet切割为2次发送，间隔20ms
	c := carousel.New(&packetPacker{packetCount: 8}, sink, func(option *carousel.Option) {
		option.CycleDuration = 40 * time.Millisecond
	})
	assert.Equal(t, nil, c.RunOnce(context.Background()))
	assert.Equal(t, int64(20*time.Millisecond), c.Stat().ChunkInterval)

	// 间隔从上一次发送完成之后开始计算，不包含发送本身的耗时
	assert.Equal(t, 2, len(sink.times))
	assert.Equal(t, true, sink.times[1].Sub(sink.times[0]) >= 50*time.Millisecond)
}

func TestCalcChunkInterval(t *testing.T) {
	assert.Equal(t, time.Second, carousel.CalcChunkInterval(1, time.Second))
	assert.Equal(t, time.Second, carousel.CalcChunkInterval(7, time.Second))
	assert.Equal(t, 500*time.Millisecond, carousel.CalcChunkInterval(8, time.Second))
	assert.Equal(t, time.Duration(333333333), carousel.CalcChunkInterval(15, time.Second))
	assert.Equal(t, time.Second, carousel.CalcChunkInterval(0, time.Second))

	// 与 1e9/((6+P)/7) 纳秒一致
	for p := 1; p < 2000; p++ {
		expected := time.Duration(1000000000 / ((6 + p) / 7))
		assert.Equal(t, expected, carousel.CalcChunkInterval(p, time.Second))
	}

	// 发送次数*间隔 ≈ 周期，误差不超过发送次数纳秒
	for p := 1; p < 2000; p++ {
		chunkCount := (p + 6) / 7
		total := time.Duration(chunkCount) * carousel.CalcChunkInterval(p, time.Second)
		assert.Equal(t, true, total <= time.Second)
		assert.Equal(t, true, time.Second-total < time.Duration(chunkCount))
	}
}

func TestRunOnce(t *testing.T) {
	sink := &captureSink{}
	c := carousel.New(&packetPacker{packetCount: 10}, sink, fastCycle)
	err := c.RunOnce(context.Background())
	assert.Equal(t, nil, err)

	// 10个packet切割为 7+3
	assert.Equal(t, 2, len(sink.chunks))
	assert.Equal(t, base.OutputChunkSize, len(sink.chunks[0]))
	assert.Equal(t, 3*mpegts.TsPacketSize, len(sink.chunks[1]))

	stat := c.Stat()
	assert.Equal(t, uint64(1), stat.Cycles)
	assert.Equal(t, uint64(10), stat.Packets)
	assert.Equal(t, uint64(10*mpegts.TsPacketSize), stat.Bytes)
	assert.Equal(t, uint64(0), stat.SendErrors)
	assert.Equal(t, uint8(10), stat.Cc)
	assert.Equal(t, int64(time.Millisecond/2), stat.ChunkInterval)
}

func TestContinuityAcrossCycles(t *testing.T) {
	sink := &captureSink{}
	nit := mpegts.NewNit(0, 7)
	nit.Items = append(nit.Items, mpegts.NitItem{Tsid: 101, Onid: 3})
	c := carousel.New(nit, sink, fastCycle, func(option *carousel.Option) {
		option.InitialCc = 14
	})
	for i := 0; i < 20; i++ {
		assert.Equal(t, nil, c.RunOnce(context.Background()))
	}

	packets := sink.packets()
	assert.Equal(t, 20, len(packets))
	for i, packet := range packets {
		h := mpegts.ParseTsPacketHeader(packet)
		assert.Equal(t, uint16(mpegts.PidNit), h.Pid)
		assert.Equal(t, uint8((14+i)%16), h.Cc)
		// 除了cc，每次发送的内容相同
		assert.Equal(t, packets[0][4:], packet[4:])
	}
	assert.Equal(t, uint8((14+20)%16), c.Cc())
}

func TestTransientError(t *testing.T) {
	sink := &captureSink{
		errs: []error{errors.New("write: connection refused")},
	}
	c := carousel.New(&packetPacker{packetCount: 8}, sink, fastCycle)
	assert.Equal(t, nil, c.RunOnce(context.Background()))
	assert.Equal(t, nil, c.RunOnce(context.Background()))

	stat := c.Stat()
	assert.Equal(t, uint64(1), stat.SendErrors)
	assert.Equal(t, uint64(2), stat.Cycles)
	// 第一个chunk丢失，但cc依然连续增长
	assert.Equal(t, 3, len(sink.chunks))
	assert.Equal(t, uint8(16%16), c.Cc())
}

func TestFatalError(t *testing.T) {
	sink := &captureSink{
		errs: []error{nil, nil, base.ErrOutputClosed},
	}
	c := carousel.New(&packetPacker{packetCount: 1}, sink, fastCycle)
	err := c.RunLoop(context.Background())
	assert.Equal(t, true, errors.Is(err, base.ErrOutputClosed))
	assert.Equal(t, uint64(2), c.Stat().Cycles)
	assert.Equal(t, uint64(1), c.Stat().SendErrors)
}

func TestPackError(t *testing.T) {
	nit := mpegts.NewNit(0, 1)
	nit.Items = append(nit.Items, mpegts.NitItem{Tsid: 1, Onid: 1})
	for i := 0; i < 5; i++ {
		nit.Items[0].Descriptors = append(nit.Items[0].Descriptors, mpegts.Descriptor{
			Tag:     0x80,
			Unknown: make([]byte, 250),
		})
	}
	c := carousel.New(nit, &captureSink{}, fastCycle)
	err := c.RunLoop(context.Background())
	assert.Equal(t, true, errors.Is(err, base.ErrSectionOverflow))
}

func TestCancel(t *testing.T) {
	sink := &captureSink{}
	c := carousel.New(&packetPacker{packetCount: 1}, sink, func(option *carousel.Option) {
		option.CycleDuration = time.Hour
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.RunLoop(ctx)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Equal(t, nil, err)
	case <-time.After(2 * time.Second):
		t.Fatal("carousel not stopped")
	}
	assert.Equal(t, 1, len(sink.packets()))
	assert.Equal(t, uint64(0), c.Stat().Cycles)
}

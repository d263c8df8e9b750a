// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package innertest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/asticode/go-astits"
	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/naza/pkg/nazaatomic"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/naza/pkg/nazanet"
	"github.com/q191201771/nitstream/pkg/base"
	"github.com/q191201771/nitstream/pkg/logic"
	"github.com/q191201771/nitstream/pkg/mpegts"
)

// 写一份配置文件，启动ServerManager，通过udp发送到本地
// 用udp接收，落盘成ts文件，再用astits解析出NIT，检查内容
// 同时检查http api的统计，以及continuity counter的连续性

var confTmpl = `
output = udp://%s
network_id = 7
network = innertest
onid = 3
cycle_ms = 100
http_api_addr = 127.0.0.1:0
log_level = debug

[multiplex]
tsid = 101

[dvb-c]
frequency = 474
symbolrate = 6875
fec = 3
modulation = QAM256

[service]
pnr = 5001
type = 1
lcn = 12

[multiplex]
tsid = 202
enable = false

[dvb-c]
frequency = 482
symbolrate = 6875

[service]
pnr = 6001
`

// 至少收到这么多个datagram再检查
var expectedDatagramCount = 5

func Entry(t *testing.T) {
	_ = nazalog.Init(func(option *nazalog.Option) {
		option.Level = nazalog.LevelDebug
		option.AssertBehavior = nazalog.AssertError
	})

	dir := t.TempDir()

	pool := nazanet.NewAvailUdpConnPool(1024, 10240)
	port, err := pool.Peek()
	assert.Equal(t, nil, err)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	confFile := filepath.Join(dir, "nitstream.conf.ini")
	err = os.WriteFile(confFile, []byte(fmt.Sprintf(confTmpl, addr)), 0644)
	assert.Equal(t, nil, err)

	var fw mpegts.FileWriter
	err = fw.Create(filepath.Join(dir, "innertest.ts"))
	assert.Equal(t, nil, err)

	// 接收端
	var (
		mu       sync.Mutex
		received []byte
		stopped  bool
		done     = make(chan struct{})

		recvDatagramCount nazaatomic.Uint32
	)
	recvConn, err := nazanet.NewUdpConnection(func(option *nazanet.UdpConnectionOption) {
		option.LAddr = addr
	})
	assert.Equal(t, nil, err)
	go func() {
		_ = recvConn.RunLoop(func(b []byte, raddr *net.UDPAddr, err error) bool {
			if err != nil {
				return false
			}
			mu.Lock()
			defer mu.Unlock()
			if stopped {
				return false
			}
			assert.Equal(t, 0, len(b)%mpegts.TsPacketSize)
			assert.Equal(t, true, len(b) <= base.OutputChunkSize)
			received = append(received, b...)
			assert.Equal(t, nil, fw.Write(b))
			recvDatagramCount.Increment()
			if recvDatagramCount.Load() == uint32(expectedDatagramCount) {
				close(done)
			}
			return true
		})
	}()

	// 发送端
	config, err := logic.LoadConfAndInitLog(confFile)
	assert.Equal(t, nil, err)
	sm, err := logic.NewServerManager(config)
	assert.Equal(t, nil, err)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() {
		runErr <- sm.RunLoop(ctx)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("receive timeout")
	}

	checkHttpApi(t, sm.HttpApiAddr())
	nitStat := sm.StatNit()
	assert.Equal(t, uint16(7), nitStat.NetworkId)
	assert.Equal(t, 1, len(nitStat.Items))
	assert.Equal(t, 1, nitStat.Packets)

	cancel()
	assert.Equal(t, nil, <-runErr)
	assert.Equal(t, true, sm.StatCarousel().Packets >= uint64(expectedDatagramCount))
	sm.Dispose()
	_ = recvConn.Dispose()

	mu.Lock()
	b := append([]byte(nil), received...)
	assert.Equal(t, true, fw.WrittenPackets() >= expectedDatagramCount)
	assert.Equal(t, nil, fw.Dispose())
	stopped = true
	mu.Unlock()
	fileContent, err := os.ReadFile(fw.Name())
	assert.Equal(t, nil, err)
	assert.Equal(t, true, bytes.HasPrefix(fileContent, b[:expectedDatagramCount*mpegts.TsPacketSize]))

	checkContinuity(t, b)
	checkNit(t, b)
}

func checkContinuity(t *testing.T, b []byte) {
	var prev uint8
	for i := 0; i+mpegts.TsPacketSize <= len(b); i += mpegts.TsPacketSize {
		h := mpegts.ParseTsPacketHeader(b[i:])
		assert.Equal(t, uint8(0x47), h.Sync)
		assert.Equal(t, uint16(mpegts.PidNit), h.Pid)
		if i != 0 {
			assert.Equal(t, (prev+1)&0x0F, h.Cc)
		}
		prev = h.Cc
	}
}

func checkNit(t *testing.T, b []byte) {
	dmx := astits.NewDemuxer(context.Background(), bytes.NewReader(b))
	var nits []*astits.NITData
	for {
		d, err := dmx.NextData()
		if err != nil {
			if errors.Is(err, astits.ErrNoMorePackets) {
				break
			}
			t.Fatalf("demux failed. err=%+v", err)
		}
		if d.NIT != nil {
			nits = append(nits, d.NIT)
		}
	}
	assert.Equal(t, true, len(nits) >= 1)

	for _, d := range nits {
		assert.Equal(t, uint16(7), d.NetworkID)
		assert.Equal(t, 1, len(d.NetworkDescriptors))
		assert.Equal(t, []byte("innertest"), d.NetworkDescriptors[0].NetworkName.Name)

		// tsid 202 被禁用
		assert.Equal(t, 1, len(d.TransportStreams))
		ts := d.TransportStreams[0]
		assert.Equal(t, uint16(101), ts.TransportStreamID)
		assert.Equal(t, uint16(3), ts.OriginalNetworkID)
		assert.Equal(t, 3, len(ts.TransportDescriptors))
		assert.Equal(t, uint8(mpegts.DescriptorTagCableDeliverySystem), ts.TransportDescriptors[0].Tag)
		assert.Equal(t, uint8(mpegts.DescriptorTagServiceList), ts.TransportDescriptors[1].Tag)
		assert.Equal(t, uint8(mpegts.DescriptorTagLogicalChannel), ts.TransportDescriptors[2].Tag)
	}
}

func checkHttpApi(t *testing.T, addr string) {
	resp, err := http.Get(fmt.Sprintf("http://%s/api/stat/carousel", addr))
	assert.Equal(t, nil, err)
	defer resp.Body.Close()

	var v base.ApiStatCarousel
	err = json.NewDecoder(resp.Body).Decode(&v)
	assert.Equal(t, nil, err)
	assert.Equal(t, base.ErrorCodeSucc, v.ErrorCode)
	assert.Equal(t, uint16(mpegts.PidNit), v.Data.Pid)
	assert.Equal(t, true, v.Data.Packets >= uint64(expectedDatagramCount-1))
	assert.Equal(t, uint64(0), v.Data.SendErrors)
}

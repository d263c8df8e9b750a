// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/naza/pkg/nazanet"
	"github.com/q191201771/nitstream/pkg/mpegts"
)

func tsPacket(pid uint16, cc uint8) []byte {
	b := make([]byte, mpegts.TsPacketSize)
	b[0] = 0x47
	b[1] = uint8(pid>>8) & 0x1F
	b[2] = uint8(pid)
	b[3] = 0x10 | (cc & 0x0F)
	return b
}

func TestListenUdp(t *testing.T) {
	pool := nazanet.NewAvailUdpConnPool(1024, 10240)
	port, err := pool.Peek()
	assert.Equal(t, nil, err)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	conn, err := listenUdp(addr)
	assert.Equal(t, nil, err)

	recv := make(chan []byte, 1)
	go func() {
		_ = conn.RunLoop(func(b []byte, raddr *net.UDPAddr, err error) bool {
			if err != nil {
				return false
			}
			recv <- append([]byte(nil), b...)
			return false
		})
	}()

	sender, err := nazanet.NewUdpConnection(func(option *nazanet.UdpConnectionOption) {
		option.RAddr = addr
	})
	assert.Equal(t, nil, err)
	pkt := tsPacket(mpegts.PidNit, 3)
	assert.Equal(t, nil, sender.Write(pkt))

	select {
	case b := <-recv:
		assert.Equal(t, pkt, b)
	case <-time.After(2 * time.Second):
		t.Fatal("receive timeout")
	}
	_ = sender.Dispose()
	_ = conn.Dispose()

	_, err = listenUdp("127.0.0.1:notaport")
	assert.IsNotNil(t, err)
}

func TestListenUdpMulticast(t *testing.T) {
	pool := nazanet.NewAvailUdpConnPool(1024, 10240)
	port, err := pool.Peek()
	assert.Equal(t, nil, err)

	// 没有支持组播的网卡时加入组播组会失败
	conn, err := listenUdp(fmt.Sprintf("239.255.1.1:%d", port))
	if err != nil {
		t.Skipf("multicast not available. err=%+v", err)
	}
	assert.Equal(t, nil, conn.Dispose())
}

func TestCcChecker(t *testing.T) {
	c := newCcChecker()
	var b []byte
	b = append(b, tsPacket(mpegts.PidNit, 14)...)
	b = append(b, tsPacket(mpegts.PidNit, 15)...)
	b = append(b, tsPacket(mpegts.PidNit, 0)...)
	c.Check(b)
	assert.Equal(t, 3, c.packets)
	assert.Equal(t, 0, c.discontinuity)

	// 跨datagram也要连续
	c.Check(tsPacket(mpegts.PidNit, 2))
	assert.Equal(t, 4, c.packets)
	assert.Equal(t, 1, c.discontinuity)

	// 不同pid分别计数
	c.Check(tsPacket(0x11, 9))
	assert.Equal(t, 1, c.discontinuity)

	// 同步字节错误的包不计数
	bad := tsPacket(mpegts.PidNit, 3)
	bad[0] = 0x00
	c.Check(bad)
	assert.Equal(t, 5, c.packets)
}

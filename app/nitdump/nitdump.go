// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/asticode/go-astits"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/naza/pkg/nazanet"
	"github.com/q191201771/nitstream/pkg/base"
	"github.com/q191201771/nitstream/pkg/model"
	"github.com/q191201771/nitstream/pkg/mpegts"
	"golang.org/x/sync/errgroup"
)

// 接收nitstream发出的udp数据，检查continuity counter，解析并打印NIT
//
// Example:
//   ./bin/nitdump -i 127.0.0.1:10000 -o /tmp/nit.ts -n 10
//   ./bin/nitdump -i 239.255.1.1:10000

func main() {
	_ = nazalog.Init(func(option *nazalog.Option) {
		option.AssertBehavior = nazalog.AssertFatal
	})
	defer nazalog.Sync()

	addr, outFile, tableNum := parseFlag()
	if err := run(addr, outFile, tableNum); err != nil {
		nazalog.Errorf("run failed. err=%+v", err)
		nazalog.Sync()
		os.Exit(1)
	}
}

func run(addr string, outFile string, tableNum int) error {
	conn, err := listenUdp(addr)
	if err != nil {
		return err
	}

	var fw *mpegts.FileWriter
	if outFile != "" {
		fw = &mpegts.FileWriter{}
		if err = fw.Create(outFile); err != nil {
			return err
		}
		defer func() {
			nazalog.Infof("dump file done. file=%s, packets=%d", fw.Name(), fw.WrittenPackets())
			_ = fw.Dispose()
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	pr, pw := io.Pipe()
	checker := newCcChecker()
	ld := base.NewLogDump(nazalog.GetGlobalLogger(), 8)

	g.Go(func() error {
		err := conn.RunLoop(func(b []byte, raddr *net.UDPAddr, err error) bool {
			if err != nil {
				return false
			}
			if ld.ShouldDump() {
				ld.OutTsPackets(fmt.Sprintf("recv. raddr=%s, len=%d,", raddr.String(), len(b)), b)
			}
			checker.Check(b)
			if fw != nil {
				if err := fw.Write(b); err != nil {
					nazalog.Errorf("write file failed. err=%+v", err)
				}
			}
			_, err = pw.Write(b)
			return err == nil
		})
		_ = pw.CloseWithError(io.EOF)
		return ignoreClosed(err)
	})

	g.Go(func() error {
		defer cancel()
		return demux(gctx, pr, tableNum)
	})

	g.Go(func() error {
		<-gctx.Done()
		_ = pr.Close()
		return conn.Dispose()
	})

	go base.RunSignalHandler(gctx, cancel)

	err = g.Wait()
	nazalog.Infof("exit. packets=%d, discontinuity=%d", checker.packets, checker.discontinuity)
	return err
}

// listenUdp 组播地址需要加入组播组，在默认网卡上加入
func listenUdp(addr string) (*nazanet.UdpConnection, error) {
	uaddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	var mconn *net.UDPConn
	if uaddr.IP.IsMulticast() {
		if mconn, err = net.ListenMulticastUDP("udp", nil, uaddr); err != nil {
			return nil, err
		}
	}

	conn, err := nazanet.NewUdpConnection(func(option *nazanet.UdpConnectionOption) {
		if mconn != nil {
			option.Conn = mconn
		} else {
			option.LAddr = addr
		}
	})
	if err != nil {
		return nil, err
	}
	nazalog.Infof("listen succ. addr=%s, multicast=%t", addr, mconn != nil)
	return conn, nil
}

// demux 解析出tableNum个NIT之后返回，tableNum为0时一直运行
func demux(ctx context.Context, r io.Reader, tableNum int) error {
	dmx := astits.NewDemuxer(ctx, r, astits.DemuxerOptPacketSize(mpegts.TsPacketSize))
	count := 0
	for {
		d, err := dmx.NextData()
		if err != nil {
			if errors.Is(err, astits.ErrNoMorePackets) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if d.NIT == nil {
			continue
		}

		count++
		logNit(count, d.NIT)
		if tableNum > 0 && count >= tableNum {
			return nil
		}
	}
}

func logNit(index int, nit *astits.NITData) {
	nazalog.Infof("[%d] NIT. network_id=%d, network_descriptors=%d, transport_streams=%d",
		index, nit.NetworkID, len(nit.NetworkDescriptors), len(nit.TransportStreams))
	for _, d := range nit.NetworkDescriptors {
		if d.NetworkName != nil {
			nazalog.Infof("    network_name. raw=%s", hex.EncodeToString(d.NetworkName.Name))
		}
	}
	for _, ts := range nit.TransportStreams {
		nazalog.Infof("    ts. tsid=%d, onid=%d, descriptors=%d", ts.TransportStreamID, ts.OriginalNetworkID, len(ts.TransportDescriptors))
		for _, d := range ts.TransportDescriptors {
			nazalog.Infof("        descriptor. tag=0x%02x, len=%d, %s", d.Tag, d.Length, describeDescriptor(d))
		}
	}
}

// describeDescriptor astits没有解析这几个descriptor，取原始payload自己解析
func describeDescriptor(d *astits.Descriptor) string {
	var payload []byte
	if d.Unknown != nil {
		payload = d.Unknown.Content
	} else if d.UserDefined != nil {
		payload = d.UserDefined
	}

	switch d.Tag {
	case mpegts.DescriptorTagCableDeliverySystem:
		cd, err := mpegts.ParseDescriptorCableDelivery(payload)
		if err != nil {
			return fmt.Sprintf("cable_delivery_system. err=%+v", err)
		}
		return fmt.Sprintf("cable_delivery_system. frequency=%dHz, symbolrate=%dKsym/s, modulation=%s, fec_inner=%d",
			cd.Frequency, cd.SymbolRate, model.Modulation(cd.Modulation).String(), cd.FecInner)
	case mpegts.DescriptorTagServiceList:
		sl := mpegts.ParseDescriptorServiceList(payload)
		return fmt.Sprintf("service_list. items=%+v", sl.Items)
	case mpegts.DescriptorTagLogicalChannel:
		lc := mpegts.ParseDescriptorLogicalChannel(payload)
		return fmt.Sprintf("logical_channel. items=%+v", lc.Items)
	}
	return hex.EncodeToString(payload)
}

func ignoreClosed(err error) error {
	if err == nil || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

type ccChecker struct {
	last          map[uint16]uint8
	packets       int
	discontinuity int
}

func newCcChecker() *ccChecker {
	return &ccChecker{
		last: make(map[uint16]uint8),
	}
}

func (c *ccChecker) Check(b []byte) {
	for i := 0; i+mpegts.TsPacketSize <= len(b); i += mpegts.TsPacketSize {
		h := mpegts.ParseTsPacketHeader(b[i:])
		if h.Sync != 0x47 {
			nazalog.Warnf("invalid sync byte. sync=0x%02x", h.Sync)
			continue
		}
		c.packets++
		if last, ok := c.last[h.Pid]; ok && (last+1)&0x0F != h.Cc {
			c.discontinuity++
			nazalog.Warnf("cc discontinuity. pid=%d, expected=%d, got=%d", h.Pid, (last+1)&0x0F, h.Cc)
		}
		c.last[h.Pid] = h.Cc
	}
}

func parseFlag() (addr string, outFile string, tableNum int) {
	i := flag.String("i", "", "specify udp listen addr, e.g. 127.0.0.1:10000")
	o := flag.String("o", "", "specify output ts file, optional")
	n := flag.Int("n", 0, "exit after n NIT tables, 0 means forever")
	flag.Parse()
	if *i == "" {
		flag.Usage()
		_, _ = fmt.Fprintf(os.Stderr, `
Example:
  %s -i 127.0.0.1:10000 -o /tmp/nit.ts -n 10
`, os.Args[0])
		base.OsExitAndWaitPressIfWindows(1)
	}
	return *i, *o, *n
}

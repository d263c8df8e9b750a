// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package logic

import (
	"context"
	"time"

	"github.com/q191201771/nitstream/pkg/base"
	"github.com/q191201771/nitstream/pkg/carousel"
	"github.com/q191201771/nitstream/pkg/conf"
	"github.com/q191201771/nitstream/pkg/httpapi"
	"github.com/q191201771/nitstream/pkg/mpegts"
	"github.com/q191201771/nitstream/pkg/nit"
	"github.com/q191201771/nitstream/pkg/output"
	"golang.org/x/sync/errgroup"
)

// ServerManager 持有组好的表、output、发送循环，以及可选的http api
type ServerManager struct {
	config *conf.Config

	table    *mpegts.Nit
	nitStat  base.StatNit
	output   *output.Output
	carousel *carousel.Carousel
	httpApi  *httpapi.HttpApiServer
}

// NewServerManager 组表并打开output，表在之后的每个周期重复编码，内容不再变化
func NewServerManager(config *conf.Config) (*ServerManager, error) {
	sm := &ServerManager{
		config: config,
	}

	sm.table = nit.Assemble(&config.Instance, config.Order)
	var err error
	if sm.nitStat, err = nit.Stat(&config.Instance, config.Order, sm.table); err != nil {
		return nil, err
	}
	Log.Infof("assemble nit succ. network_id=%d, version=%d, items=%d, sections=%d, packets=%d",
		sm.nitStat.NetworkId, sm.nitStat.Version, len(sm.nitStat.Items), sm.nitStat.Sections, sm.nitStat.Packets)

	if config.Output != "" {
		if sm.output, err = output.Open(config.Output); err != nil {
			return nil, err
		}
	}

	sm.carousel = carousel.New(sm.table, sm.output, func(option *carousel.Option) {
		option.CycleDuration = time.Duration(config.CycleMs) * time.Millisecond
	})

	if config.HttpApi.Enable {
		sm.httpApi = httpapi.NewHttpApiServer(config.HttpApi.Addr, sm.carousel, sm.nitStat)
		if err = sm.httpApi.Listen(); err != nil {
			_ = sm.output.Dispose()
			return nil, err
		}
	}
	return sm, nil
}

// RunLoop 发送循环和http api在同一个errgroup中，任意一个返回错误时另一个也退出
func (sm *ServerManager) RunLoop(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sm.carousel.RunLoop(gctx)
	})

	if sm.httpApi != nil {
		g.Go(func() error {
			return sm.httpApi.RunLoop()
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), httpApiShutdownTimeout)
			defer cancel()
			return sm.httpApi.Dispose(shutdownCtx)
		})
	}

	err := g.Wait()
	Log.Infof("server manager loop break. err=%+v", err)
	return err
}

func (sm *ServerManager) Dispose() {
	if err := sm.output.Dispose(); err != nil {
		Log.Warnf("dispose output failed. err=%+v", err)
	}
}

func (sm *ServerManager) StatCarousel() base.StatCarousel {
	return sm.carousel.Stat()
}

func (sm *ServerManager) StatNit() base.StatNit {
	return sm.nitStat
}

func (sm *ServerManager) HttpApiAddr() string {
	if sm.httpApi == nil {
		return ""
	}
	return sm.httpApi.Addr()
}

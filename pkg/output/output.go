// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package output

import (
	"errors"
	"fmt"
	"net"

	"github.com/q191201771/naza/pkg/nazaatomic"
	"github.com/q191201771/naza/pkg/nazanet"
	"github.com/q191201771/nitstream/pkg/base"
)

// Output 发送目的地，目前只支持udp
//
// 零值(以及nil)是一个空的Output，Send什么也不做并返回nil
type Output struct {
	urlCtx base.UrlContext
	conn   *nazanet.UdpConnection

	disposed nazaatomic.Bool
}

// Open
//
// @param rawUrl: e.g. udp://239.255.1.1:10000
//                可以通过localaddr参数指定本地地址，用于选择组播出口网卡，e.g. udp://239.255.1.1:10000?localaddr=192.168.1.2:0
func Open(rawUrl string) (*Output, error) {
	urlCtx, err := base.ParseUrl(rawUrl)
	if err != nil {
		return nil, err
	}

	switch urlCtx.Scheme {
	case base.SchemeUdp:
		return openUdp(rawUrl)
	}
	return nil, fmt.Errorf("%w [%s]", base.ErrOutputScheme, urlCtx.Scheme)
}

func openUdp(rawUrl string) (*Output, error) {
	urlCtx, err := base.ParseUdpUrl(rawUrl)
	if err != nil {
		return nil, err
	}

	conn, err := nazanet.NewUdpConnection(func(option *nazanet.UdpConnectionOption) {
		if laddr := urlCtx.Query.Get("localaddr"); laddr != "" {
			option.LAddr = laddr
		}
		option.RAddr = urlCtx.HostWithPort
	})
	if err != nil {
		return nil, err
	}

	Log.Infof("open output succ. url=%s", rawUrl)
	return &Output{
		urlCtx: urlCtx,
		conn:   conn,
	}, nil
}

// Send 一次调用对应一次发送，内部不再切割
func (o *Output) Send(b []byte) error {
	if o == nil || o.conn == nil {
		return nil
	}
	if o.disposed.Load() {
		return base.ErrOutputClosed
	}
	return o.conn.Write(b)
}

func (o *Output) IsOpen() bool {
	return o != nil && o.conn != nil && !o.disposed.Load()
}

func (o *Output) Dispose() error {
	if o == nil || o.conn == nil {
		return nil
	}
	if o.disposed.Load() {
		return nil
	}
	o.disposed.Store(true)
	Log.Infof("dispose output. url=%s", o.urlCtx.Url)
	return o.conn.Dispose()
}

func (o *Output) String() string {
	if o == nil || o.conn == nil {
		return "none"
	}
	return o.urlCtx.Url
}

// IsFatal 发送错误是否不可恢复
//
// output被关闭之后的错误是不可恢复的，发送循环应该退出；
// 其他错误(比如ICMP不可达引起的ECONNREFUSED、ENOBUFS)视为暂时的，记录日志后继续发送
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, base.ErrOutputClosed) || errors.Is(err, net.ErrClosed)
}

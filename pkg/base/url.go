// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// 见单元测试

const (
	SchemeUdp = "udp"
)

type UrlContext struct {
	Url string

	Scheme       string
	StdHost      string // host or host:port
	HostWithPort string
	Host         string
	Port         int

	Path     string
	RawQuery string // 参数
	Query    url.Values
}

// ParseUrl 解析`<scheme>://<scheme-specific-part>`格式的地址
//
// 和 net/url 不同的是，scheme必须存在
func ParseUrl(rawUrl string) (ctx UrlContext, err error) {
	ctx.Url = rawUrl

	if !strings.Contains(rawUrl, "://") {
		return ctx, fmt.Errorf("%w. url=%s", ErrInvalidUrl, rawUrl)
	}

	stdUrl, err := url.Parse(rawUrl)
	if err != nil {
		return ctx, fmt.Errorf("%w. url=%s, err=%s", ErrInvalidUrl, rawUrl, err.Error())
	}
	if stdUrl.Scheme == "" {
		return ctx, fmt.Errorf("%w. url=%s", ErrInvalidUrl, rawUrl)
	}

	ctx.Scheme = stdUrl.Scheme
	ctx.StdHost = stdUrl.Host
	ctx.Path = stdUrl.Path
	ctx.RawQuery = stdUrl.RawQuery
	ctx.Query = stdUrl.Query()

	h, p, err := net.SplitHostPort(stdUrl.Host)
	if err != nil {
		// url中端口不存在
		ctx.Host = stdUrl.Host
		ctx.HostWithPort = stdUrl.Host
		return ctx, nil
	}

	ctx.Port, err = strconv.Atoi(p)
	if err != nil {
		return ctx, fmt.Errorf("%w. url=%s, port=%s", ErrInvalidUrl, rawUrl, p)
	}
	ctx.Host = h
	ctx.HostWithPort = stdUrl.Host
	return ctx, nil
}

// ParseUdpUrl e.g. udp://239.255.1.1:10000?localaddr=192.168.1.2:0
//
// udp地址必须同时包含host和port
func ParseUdpUrl(rawUrl string) (ctx UrlContext, err error) {
	ctx, err = ParseUrl(rawUrl)
	if err != nil {
		return
	}
	if ctx.Scheme != SchemeUdp || ctx.Host == "" || ctx.Port <= 0 || ctx.Port > 65535 {
		return ctx, fmt.Errorf("%w. url=%s", ErrInvalidUrl, rawUrl)
	}
	return
}

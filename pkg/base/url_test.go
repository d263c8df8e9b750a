// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base_test

import (
	"errors"
	"testing"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/nitstream/pkg/base"
)

func TestParseUrl(t *testing.T) {
	// 非法url
	_, err := base.ParseUrl("invalidurl")
	assert.IsNotNil(t, err)
	assert.Equal(t, true, errors.Is(err, base.ErrInvalidUrl))

	ctx, err := base.ParseUrl("udp://239.255.1.1:10000")
	assert.Equal(t, nil, err)
	assert.Equal(t, "udp", ctx.Scheme)
	assert.Equal(t, "239.255.1.1", ctx.Host)
	assert.Equal(t, 10000, ctx.Port)
	assert.Equal(t, "239.255.1.1:10000", ctx.HostWithPort)
	assert.Equal(t, "", ctx.RawQuery)

	// 端口不存在
	ctx, err = base.ParseUrl("udp://localhost")
	assert.Equal(t, nil, err)
	assert.Equal(t, "localhost", ctx.Host)
	assert.Equal(t, 0, ctx.Port)
}

func TestParseUdpUrl(t *testing.T) {
	ctx, err := base.ParseUdpUrl("udp://239.255.1.1:10000?localaddr=192.168.1.2:0")
	assert.Equal(t, nil, err)
	assert.Equal(t, "239.255.1.1:10000", ctx.HostWithPort)
	assert.Equal(t, "192.168.1.2:0", ctx.Query.Get("localaddr"))

	golden := []string{
		"udp://239.255.1.1",       // 没有端口
		"udp://:10000",            // 没有host
		"srt://239.255.1.1:10000", // 不是udp
		"239.255.1.1:10000",       // 没有scheme
		"udp://239.255.1.1:70000", // 端口越界
	}
	for _, item := range golden {
		_, err = base.ParseUdpUrl(item)
		assert.IsNotNil(t, err, item)
	}
}

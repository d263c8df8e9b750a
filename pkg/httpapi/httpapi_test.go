// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/nitstream/pkg/base"
	"github.com/q191201771/nitstream/pkg/httpapi"
)

type fakeCarousel struct {
	stat base.StatCarousel
}

func (f *fakeCarousel) Stat() base.StatCarousel {
	return f.stat
}

var goldenNit = base.StatNit{
	TableId:   0x40,
	NetworkId: 7,
	Order:     "insertion",
	Sections:  1,
	Packets:   1,
	Items: []base.StatNitItem{
		{Tsid: 101, Onid: 3, Frequency: 474000000, SymbolRate: 6875, Modulation: "QAM256", Services: 1},
	},
}

func newServer() *httpapi.HttpApiServer {
	c := &fakeCarousel{
		stat: base.StatCarousel{
			Output:  "udp://127.0.0.1:10000",
			Pid:     0x10,
			Cycles:  3,
			Packets: 3,
			Bytes:   3 * 188,
			Cc:      3,
		},
	}
	return httpapi.NewHttpApiServer("127.0.0.1:0", c, goldenNit)
}

func get(t *testing.T, h http.Handler, path string) (int, http.Header, []byte) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	body, err := io.ReadAll(rec.Result().Body)
	assert.Equal(t, nil, err)
	return rec.Code, rec.Header(), body
}

func TestStatCarousel(t *testing.T) {
	code, header, body := get(t, newServer().Handler(), "/api/stat/carousel")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, base.NitStreamHttpApiServer, header.Get("Server"))
	assert.Equal(t, "application/json", header.Get("Content-Type"))
	assert.Equal(t, "*", header.Get("Access-Control-Allow-Origin"))

	var v base.ApiStatCarousel
	assert.Equal(t, nil, json.Unmarshal(body, &v))
	assert.Equal(t, base.ErrorCodeSucc, v.ErrorCode)
	assert.Equal(t, base.DespSucc, v.Desp)
	assert.Equal(t, uint64(3), v.Data.Cycles)
	assert.Equal(t, uint8(3), v.Data.Cc)
	assert.Equal(t, "udp://127.0.0.1:10000", v.Data.Output)
}

func TestStatNit(t *testing.T) {
	code, _, body := get(t, newServer().Handler(), "/api/stat/nit")
	assert.Equal(t, http.StatusOK, code)

	var v base.ApiStatNit
	assert.Equal(t, nil, json.Unmarshal(body, &v))
	assert.Equal(t, goldenNit, v.Data)
}

func TestStatInfo(t *testing.T) {
	code, _, body := get(t, newServer().Handler(), "/api/stat/info")
	assert.Equal(t, http.StatusOK, code)

	var v base.ApiStatInfo
	assert.Equal(t, nil, json.Unmarshal(body, &v))
	assert.Equal(t, base.NitStreamVersion, v.Data.Version)
	assert.Equal(t, base.HttpApiVersion, v.Data.ApiVersion)
	assert.Equal(t, base.StartTime(), v.Data.StartTime)
}

func TestNotFound(t *testing.T) {
	code, _, body := get(t, newServer().Handler(), "/api/ctrl/kick")
	assert.Equal(t, http.StatusNotFound, code)

	var v base.HttpResponseBasic
	assert.Equal(t, nil, json.Unmarshal(body, &v))
	assert.Equal(t, base.ErrorCodePageNotFound, v.ErrorCode)
}

func TestRunLoop(t *testing.T) {
	assert.Equal(t, base.ErrHttpApiAddrEmpty, httpapi.NewHttpApiServer("", &fakeCarousel{}, goldenNit).Listen())

	s := newServer()
	assert.Equal(t, nil, s.Listen())

	done := make(chan error, 1)
	go func() {
		done <- s.RunLoop()
	}()

	resp, err := http.Get(fmt.Sprintf("http://%s/api/stat/nit", s.Addr()))
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Equal(t, nil, s.Dispose(ctx))
	assert.Equal(t, nil, <-done)
}

// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/q191201771/naza/pkg/bininfo"
	"github.com/q191201771/nitstream/pkg/base"
)

// 只读的统计接口：
//
//   GET /api/stat/info
//   GET /api/stat/carousel
//   GET /api/stat/nit
//
// 响应格式 {"error_code": 0, "desp": "succ", "data": {...}}

// CarouselStater *carousel.Carousel 实现了该接口
type CarouselStater interface {
	Stat() base.StatCarousel
}

type HttpApiServer struct {
	addr     string
	carousel CarouselStater
	nit      base.StatNit

	ln  net.Listener
	srv http.Server
}

// NewHttpApiServer
//
// @param nit: 组表在启动时完成，之后不再变化
func NewHttpApiServer(addr string, carousel CarouselStater, nit base.StatNit) *HttpApiServer {
	h := &HttpApiServer{
		addr:     addr,
		carousel: carousel,
		nit:      nit,
	}
	h.srv.Handler = h.Handler()
	h.srv.ReadHeaderTimeout = 5 * time.Second
	return h
}

func (h *HttpApiServer) Listen() (err error) {
	if h.addr == "" {
		return base.ErrHttpApiAddrEmpty
	}
	if h.ln, err = net.Listen("tcp", h.addr); err != nil {
		return
	}
	Log.Infof("start httpapi server listen. addr=%s", h.ln.Addr().String())
	return
}

// Addr 实际监听的地址，Listen之后有效
func (h *HttpApiServer) Addr() string {
	if h.ln == nil {
		return h.addr
	}
	return h.ln.Addr().String()
}

// RunLoop 阻塞直到 Dispose 被调用(返回nil)或者发生错误
func (h *HttpApiServer) RunLoop() error {
	err := h.srv.Serve(h.ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (h *HttpApiServer) Dispose(ctx context.Context) error {
	Log.Infof("dispose httpapi server. addr=%s", h.Addr())
	return h.srv.Shutdown(ctx)
}

func (h *HttpApiServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.GetHead)
	r.Use(middleware.Recoverer)
	r.Use(accessLog)

	r.Route("/api/stat", func(r chi.Router) {
		r.Get("/info", h.statInfoHandler)
		r.Get("/carousel", h.statCarouselHandler)
		r.Get("/nit", h.statNitHandler)
	})
	r.NotFound(h.notFoundHandler)
	return r
}

func (h *HttpApiServer) statInfoHandler(w http.ResponseWriter, req *http.Request) {
	var v base.ApiStatInfo
	v.ErrorCode = base.ErrorCodeSucc
	v.Desp = base.DespSucc
	v.Data.BinInfo = bininfo.StringifySingleLine()
	v.Data.Version = base.NitStreamVersion
	v.Data.ApiVersion = base.HttpApiVersion
	v.Data.StartTime = base.StartTime()
	feedback(w, http.StatusOK, v)
}

func (h *HttpApiServer) statCarouselHandler(w http.ResponseWriter, req *http.Request) {
	var v base.ApiStatCarousel
	v.ErrorCode = base.ErrorCodeSucc
	v.Desp = base.DespSucc
	v.Data = h.carousel.Stat()
	feedback(w, http.StatusOK, v)
}

func (h *HttpApiServer) statNitHandler(w http.ResponseWriter, req *http.Request) {
	var v base.ApiStatNit
	v.ErrorCode = base.ErrorCodeSucc
	v.Desp = base.DespSucc
	v.Data = h.nit
	feedback(w, http.StatusOK, v)
}

func (h *HttpApiServer) notFoundHandler(w http.ResponseWriter, req *http.Request) {
	var v base.HttpResponseBasic
	v.ErrorCode = base.ErrorCodePageNotFound
	v.Desp = base.DespPageNotFound
	feedback(w, http.StatusNotFound, v)
}

func feedback(w http.ResponseWriter, status int, v interface{}) {
	resp, _ := json.Marshal(v)
	w.Header().Set("Server", base.NitStreamHttpApiServer)
	w.Header().Set("Content-Type", "application/json")
	base.AddCorsHeaders(w)
	w.WriteHeader(status)
	_, _ = w.Write(resp)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		begin := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		Log.Debugf("http api. method=%s, path=%s, status=%d, bytes=%d, cost=%s, remote=%s",
			req.Method, req.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(begin), req.RemoteAddr)
	})
}

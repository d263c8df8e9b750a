// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

const (
	ErrorCodeSucc         = 0
	DespSucc              = "succ"
	ErrorCodePageNotFound = 1001
	DespPageNotFound      = "page not found"
)

type HttpResponseBasic struct {
	ErrorCode int    `json:"error_code"`
	Desp      string `json:"desp"`
}

type NitStreamInfo struct {
	BinInfo    string `json:"bin_info"`
	Version    string `json:"version"`
	ApiVersion string `json:"api_version"`
	StartTime  string `json:"start_time"`
}

type ApiStatInfo struct {
	HttpResponseBasic
	Data NitStreamInfo `json:"data"`
}

type ApiStatCarousel struct {
	HttpResponseBasic
	Data StatCarousel `json:"data"`
}

type ApiStatNit struct {
	HttpResponseBasic
	Data StatNit `json:"data"`
}

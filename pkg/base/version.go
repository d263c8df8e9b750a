// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import "strings"

const NitStreamVersion = "v0.3.0"

const HttpApiVersion = "v0.1.0"

var (
	NitStreamLibraryName = "nitstream"
	NitStreamGithubRepo  = "github.com/q191201771/nitstream"

	// NitStreamFullInfo e.g. nitstream v0.3.0 (github.com/q191201771/nitstream)
	NitStreamFullInfo = NitStreamLibraryName + " " + NitStreamVersion + " (" + NitStreamGithubRepo + ")"

	// NitStreamVersionDot e.g. 0.3.0
	NitStreamVersionDot string

	// NitStreamHttpApiServer http api响应中的Server header, e.g. nitstream/0.3.0
	NitStreamHttpApiServer string
)

func init() {
	NitStreamVersionDot = strings.TrimPrefix(NitStreamVersion, "v")
	NitStreamHttpApiServer = NitStreamLibraryName + "/" + NitStreamVersionDot
}

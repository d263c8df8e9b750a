// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import "net/http"

// AddCorsHeaders stat接口只读，只允许GET和HEAD
func AddCorsHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, HEAD")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

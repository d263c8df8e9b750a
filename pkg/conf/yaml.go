// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package conf

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/q191201771/nitstream/pkg/base"
	"gopkg.in/yaml.v3"
)

// yaml格式的结构与json格式完全相同，转换为json之后走json的流程

func loadYamlFile(filename string) (*Config, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w. file=%s, err=%+v", base.ErrConfigSource, filename, err)
	}
	return parseYaml(raw)
}

func parseYaml(raw []byte) (*Config, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w. err=%+v", base.ErrConfigSource, err)
	}
	if doc == nil {
		doc = make(map[string]interface{})
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w. err=%+v", base.ErrConfigSource, err)
	}
	return parseJson(b)
}

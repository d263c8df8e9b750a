// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/nitstream/pkg/base"
	"github.com/q191201771/nitstream/pkg/model"
	"github.com/q191201771/nitstream/pkg/nit"
)

type Config struct {
	Instance model.Instance
	Output   string // 为空时不发送

	Order   nit.OrderPolicy
	CycleMs int

	HttpApi HttpApiConfig
	Log     nazalog.Option
}

type HttpApiConfig struct {
	Enable bool   `json:"enable"`
	Addr   string `json:"addr"`
}

const (
	defaultCycleMs     = 1000
	defaultHttpApiAddr = ":8084"
)

// LoadConf 根据扩展名选择格式：.json、.yaml/.yml，其他都按ini处理
//
// 任何错误都会导致加载失败，不会返回部分结果
func LoadConf(filename string) (*Config, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("%w. %s, file=%s", base.ErrConfigSource, base.ErrFileNotExist.Error(), filename)
	}

	var (
		c   *Config
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		c, err = loadJsonFile(filename)
	case ".yaml", ".yml":
		c, err = loadYamlFile(filename)
	default:
		c, err = loadIniFile(filename)
	}
	if err != nil {
		return nil, err
	}

	c.warn()
	return c, nil
}

func newDefaultConfig() *Config {
	return &Config{
		Instance: model.Instance{
			Version:   model.DefaultVersion,
			NetworkId: model.DefaultNetworkId,
			Codepage:  model.DefaultCodepage,
			Onid:      model.DefaultOnid,
		},
		Order:   nit.OrderInsertion,
		CycleMs: defaultCycleMs,
		Log:     defaultLogOption(),
	}
}

func defaultLogOption() nazalog.Option {
	return nazalog.Option{
		Level:          nazalog.LevelInfo,
		IsToStdout:     true,
		IsRotateDaily:  true,
		ShortFileFlag:  true,
		AssertBehavior: nazalog.AssertError,
	}
}

var logLevels = map[string]nazalog.Level{
	"trace": nazalog.LevelTrace,
	"debug": nazalog.LevelDebug,
	"info":  nazalog.LevelInfo,
	"warn":  nazalog.LevelWarn,
	"error": nazalog.LevelError,
}

func parseLogLevel(section, key, value string) (nazalog.Level, error) {
	level, ok := logLevels[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return nazalog.LevelInfo, base.NewErrConfigValue(section, key, value, nil)
	}
	return level, nil
}

// warn 不影响加载结果的问题只打印日志
func (c *Config) warn() {
	if c.Output == "" {
		Log.Warnf("output not set, table is generated but not sent.")
	}
	for _, mux := range c.Instance.EnabledMultiplexes() {
		if mux.Delivery.Frequency == 0 {
			Log.Warnf("multiplex without dvb-c section. tsid=%d", mux.Tsid)
		}
	}
	for _, tsid := range nit.DuplicateTsids(&c.Instance) {
		Log.Warnf("duplicate tsid in enabled multiplexes. tsid=%d", tsid)
	}
}

// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package logic

import (
	"context"

	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/nitstream/pkg/base"
	"github.com/q191201771/nitstream/pkg/conf"
)

// LoadConfAndInitLog 加载配置文件，并使用配置文件中的日志配置初始化全局日志
func LoadConfAndInitLog(confFile string) (*conf.Config, error) {
	config, err := conf.LoadConf(confFile)
	if err != nil {
		return nil, err
	}

	if err = InitLog(config.Log); err != nil {
		return nil, err
	}
	base.LogoutStartInfo()
	Log.Infof("load conf succ. file=%s, output=%s, multiplexes=%d, order=%s, cycle=%dms",
		confFile, config.Output, len(config.Instance.Multiplexes), config.Order, config.CycleMs)
	return config, nil
}

func InitLog(opt nazalog.Option) error {
	return nazalog.Init(func(option *nazalog.Option) {
		option.Level = opt.Level
		option.Filename = opt.Filename
		option.IsToStdout = opt.IsToStdout
		option.IsRotateDaily = opt.IsRotateDaily
		option.ShortFileFlag = opt.ShortFileFlag
		option.AssertBehavior = opt.AssertBehavior
	})
}

// Entry 阻塞直到ctx被取消、收到退出信号，或者发生不可恢复的错误
func Entry(ctx context.Context, config *conf.Config) error {
	sm, err := NewServerManager(config)
	if err != nil {
		return err
	}
	defer sm.Dispose()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go base.RunSignalHandler(ctx, cancel)

	return sm.RunLoop(ctx)
}

// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"errors"
	"fmt"
)

// ----- 通用的 ---------------------------------------------------------------------------------------------------------

var (
	ErrShortBuffer  = errors.New("nitstream: buffer too short")
	ErrFileNotExist = errors.New("nitstream: file not exist")
	ErrInvalidUrl   = errors.New("nitstream: invalid url")
)

// ----- pkg/conf ------------------------------------------------------------------------------------------------------

// 配置加载阶段的错误，任何一个都会导致进程退出，不会使用部分配置
var (
	// ErrConfigSource 配置文件不存在、读取失败、ini/json/yaml格式错误
	ErrConfigSource = errors.New("nitstream.conf: config source error")

	// ErrConfigValue 字段值无法解析为期望的数值类型，或者超出取值范围
	ErrConfigValue = errors.New("nitstream.conf: invalid config value")

	// ErrConfigStructure 依赖前置section的section出现在前置section之前，比如在[multiplex]之前出现[service]
	ErrConfigStructure = errors.New("nitstream.conf: invalid config structure")
)

func NewErrConfigValue(section, key, value string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w. section=%s, key=%s, value=%s, cause=%s", ErrConfigValue, section, key, value, cause.Error())
	}
	return fmt.Errorf("%w. section=%s, key=%s, value=%s", ErrConfigValue, section, key, value)
}

func NewErrConfigRequired(section, key string) error {
	return fmt.Errorf("%w. section=%s, key=%s, required", ErrConfigValue, section, key)
}

func NewErrConfigStructure(section, depend string) error {
	return fmt.Errorf("%w. %s section not found before [%s]", ErrConfigStructure, depend, section)
}

// ----- pkg/mpegts ----------------------------------------------------------------------------------------------------

var (
	ErrMpegts          = errors.New("nitstream.mpegts: fxxk")
	ErrSectionOverflow = errors.New("nitstream.mpegts: section overflow")
)

// ----- pkg/output ----------------------------------------------------------------------------------------------------

var (
	ErrOutputScheme = errors.New("nitstream.output: unknown output type")
	ErrOutputClosed = errors.New("nitstream.output: output closed")
)

// ----- pkg/httpapi ---------------------------------------------------------------------------------------------------

var ErrHttpApiAddrEmpty = errors.New("nitstream.httpapi: http api addr empty")

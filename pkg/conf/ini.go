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
	"strconv"
	"strings"

	"github.com/q191201771/nitstream/pkg/base"
	"github.com/q191201771/nitstream/pkg/model"
	"github.com/q191201771/nitstream/pkg/nit"
	"gopkg.in/ini.v1"
)

// ini格式：
//
//   根部分是全局配置
//   [multiplex] 可以出现多次，每次开始一个新的multiplex
//   [dvb-c]、[service] 属于它们上面最近的一个 [multiplex]
//
// 未知的section和key被忽略

func loadIniFile(filename string) (*Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{AllowNonUniqueSections: true}, filename)
	if err != nil {
		return nil, fmt.Errorf("%w. file=%s, err=%+v", base.ErrConfigSource, filename, err)
	}
	return parseIni(file)
}

func parseIni(file *ini.File) (*Config, error) {
	c := newDefaultConfig()

	var err error
	for _, sec := range file.Sections() {
		switch sec.Name() {
		case ini.DefaultSection:
			err = c.parseIniRoot(sec)
		case SectionMultiplex:
			err = c.parseIniMultiplex(sec)
		case SectionDvbC:
			err = c.parseIniDvbC(sec)
		case SectionService:
			err = c.parseIniService(sec)
		default:
			Log.Warnf("unknown section, ignore. section=%s", sec.Name())
		}
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

func checkRequired(section string, sec *ini.Section) error {
	for _, f := range sectionIndex[section].Fields {
		if f.Required && !sec.HasKey(f.Key) {
			return base.NewErrConfigRequired(section, f.Key)
		}
	}
	return nil
}

func (c *Config) parseIniRoot(sec *ini.Section) error {
	inst := &c.Instance
	for _, key := range sec.Keys() {
		name, value := key.Name(), key.String()

		var (
			v   int64
			err error
		)
		if f := lookupField(SectionRoot, name); f != nil && f.IsNumber {
			if v, err = parseNumber(SectionRoot, name, value); err != nil {
				return err
			}
		}

		switch name {
		case "output":
			c.Output = value
		case "nit_version":
			inst.Version = uint8(v)
		case "network_id":
			inst.NetworkId = uint16(v)
		case "network":
			inst.NetworkName = value
		case "codepage":
			inst.Codepage = uint8(v)
		case "onid":
			inst.Onid = uint16(v)
		case "order":
			if c.Order, err = nit.ParseOrderPolicy(value); err != nil {
				return base.NewErrConfigValue(SectionRoot, name, value, nil)
			}
		case "cycle_ms":
			c.CycleMs = int(v)
		case "http_api_addr":
			c.HttpApi.Addr = value
			c.HttpApi.Enable = value != ""
		case "log_level":
			if c.Log.Level, err = parseLogLevel(SectionRoot, name, value); err != nil {
				return err
			}
		case "log_file":
			c.Log.Filename = value
		}
	}
	return nil
}

func (c *Config) parseIniMultiplex(sec *ini.Section) error {
	if err := checkRequired(SectionMultiplex, sec); err != nil {
		return err
	}

	mux := c.Instance.NewMultiplex()
	for _, key := range sec.Keys() {
		name, value := key.Name(), key.String()
		switch name {
		case "tsid":
			v, err := parseNumber(SectionMultiplex, name, value)
			if err != nil {
				return err
			}
			mux.Tsid = uint16(v)
		case "onid":
			v, err := parseNumber(SectionMultiplex, name, value)
			if err != nil {
				return err
			}
			mux.Onid = uint16(v)
		case "enable":
			mux.Enable = parseEnable(value)
		}
	}

	c.Instance.Multiplexes = append(c.Instance.Multiplexes, mux)
	return nil
}

func (c *Config) parseIniDvbC(sec *ini.Section) error {
	mux := c.lastMultiplex()
	if mux == nil {
		return base.NewErrConfigStructure(SectionDvbC, SectionMultiplex)
	}
	if err := checkRequired(SectionDvbC, sec); err != nil {
		return err
	}

	var d model.Delivery
	for _, key := range sec.Keys() {
		name, value := key.Name(), key.String()
		if name == "modulation" {
			d.Modulation = model.ParseModulation(strings.TrimSpace(value))
			if d.Modulation == model.ModulationNotDefined && value != "" {
				Log.Warnf("unknown modulation, use not defined. tsid=%d, modulation=%s", mux.Tsid, value)
			}
			continue
		}
		if lookupField(SectionDvbC, name) == nil {
			continue
		}

		v, err := parseNumber(SectionDvbC, name, value)
		if err != nil {
			return err
		}
		switch name {
		case "frequency":
			d.Frequency = uint32(v)
		case "symbolrate":
			d.SymbolRate = uint32(v)
		case "fec":
			d.Fec = uint8(v)
		}
	}

	// 同一个multiplex下出现多个[dvb-c]时，后面的覆盖前面的
	mux.Delivery = d
	return nil
}

func (c *Config) parseIniService(sec *ini.Section) error {
	mux := c.lastMultiplex()
	if mux == nil {
		return base.NewErrConfigStructure(SectionService, SectionMultiplex)
	}
	if err := checkRequired(SectionService, sec); err != nil {
		return err
	}

	s := model.NewService()
	for _, key := range sec.Keys() {
		name, value := key.Name(), key.String()
		if name == "name" {
			s.Name = value
			continue
		}
		if lookupField(SectionService, name) == nil {
			continue
		}

		v, err := parseNumber(SectionService, name, value)
		if err != nil {
			return err
		}
		switch name {
		case "pnr":
			s.Pnr = uint16(v)
		case "type":
			s.Type = uint8(v)
		case "lcn":
			s.Lcn = uint16(v)
		}
	}

	mux.Services = append(mux.Services, s)
	return nil
}

func (c *Config) lastMultiplex() *model.Multiplex {
	n := len(c.Instance.Multiplexes)
	if n == 0 {
		return nil
	}
	return &c.Instance.Multiplexes[n-1]
}

// parseEnable 无法解析的值视为false
func parseEnable(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		Log.Warnf("invalid enable value, treat as false. value=%s", value)
		return false
	}
	return b
}

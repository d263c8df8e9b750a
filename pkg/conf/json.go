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
	"errors"
	"fmt"
	"os"

	"github.com/q191201771/naza/pkg/nazajson"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/nitstream/pkg/base"
	"github.com/q191201771/nitstream/pkg/model"
	"github.com/q191201771/nitstream/pkg/nit"
)

// json格式与ini格式的字段名相同，multiplex为数组，dvb-c为对象，service为数组：
//
// {
//   "output": "udp://239.255.1.1:10000",
//   "network_id": 1,
//   "multiplex": [
//     {
//       "tsid": 1,
//       "dvb-c": {"frequency": 474, "symbolrate": 6875, "modulation": "QAM256"},
//       "service": [{"pnr": 1, "lcn": 1}]
//     }
//   ],
//   "http_api": {"enable": true, "addr": ":8084"},
//   "log": {"level": 2, "filename": "./logs/nitstream.log"}
// }

type jsonConfig struct {
	Output     string          `json:"output"`
	NitVersion int64           `json:"nit_version"`
	NetworkId  int64           `json:"network_id"`
	Network    string          `json:"network"`
	Codepage   int64           `json:"codepage"`
	Onid       int64           `json:"onid"`
	Order      string          `json:"order"`
	CycleMs    int64           `json:"cycle_ms"`
	HttpApi    HttpApiConfig   `json:"http_api"`
	Log        nazalog.Option  `json:"log"`
	Multiplex  []jsonMultiplex `json:"multiplex"`
}

type jsonMultiplex struct {
	Tsid    *int64        `json:"tsid"`
	Onid    *int64        `json:"onid"`
	Enable  *bool         `json:"enable"`
	DvbC    *jsonDvbC     `json:"dvb-c"`
	Service []jsonService `json:"service"`
}

type jsonDvbC struct {
	Frequency  *int64 `json:"frequency"`
	SymbolRate *int64 `json:"symbolrate"`
	Fec        *int64 `json:"fec"`
	Modulation string `json:"modulation"`
}

type jsonService struct {
	Pnr  *int64 `json:"pnr"`
	Type *int64 `json:"type"`
	Lcn  *int64 `json:"lcn"`
	Name string `json:"name"`
}

func loadJsonFile(filename string) (*Config, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w. file=%s, err=%+v", base.ErrConfigSource, filename, err)
	}
	return parseJson(raw)
}

func parseJson(raw []byte) (*Config, error) {
	var jc jsonConfig
	if err := json.Unmarshal(raw, &jc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, base.NewErrConfigValue(SectionRoot, typeErr.Field, typeErr.Value, err)
		}
		return nil, fmt.Errorf("%w. err=%+v", base.ErrConfigSource, err)
	}

	j, err := nazajson.New(raw)
	if err != nil {
		return nil, fmt.Errorf("%w. err=%+v", base.ErrConfigSource, err)
	}
	if !j.Exist("nit_version") {
		jc.NitVersion = model.DefaultVersion
	}
	if !j.Exist("network_id") {
		jc.NetworkId = model.DefaultNetworkId
	}
	if !j.Exist("codepage") {
		jc.Codepage = model.DefaultCodepage
	}
	if !j.Exist("onid") {
		jc.Onid = model.DefaultOnid
	}
	if !j.Exist("cycle_ms") {
		jc.CycleMs = defaultCycleMs
	}
	if !j.Exist("http_api.enable") {
		jc.HttpApi.Enable = j.Exist("http_api.addr")
	}
	if jc.HttpApi.Enable && jc.HttpApi.Addr == "" {
		jc.HttpApi.Addr = defaultHttpApiAddr
	}

	defaultLog := defaultLogOption()
	if !j.Exist("log.level") {
		jc.Log.Level = defaultLog.Level
	}
	if !j.Exist("log.is_to_stdout") {
		jc.Log.IsToStdout = defaultLog.IsToStdout
	}
	if !j.Exist("log.is_rotate_daily") {
		jc.Log.IsRotateDaily = defaultLog.IsRotateDaily
	}
	if !j.Exist("log.short_file_flag") {
		jc.Log.ShortFileFlag = defaultLog.ShortFileFlag
	}
	if !j.Exist("log.assert_behavior") {
		jc.Log.AssertBehavior = defaultLog.AssertBehavior
	}

	return jc.toConfig()
}

func (jc *jsonConfig) toConfig() (*Config, error) {
	rootNumbers := []struct {
		key string
		v   int64
	}{
		{"nit_version", jc.NitVersion},
		{"network_id", jc.NetworkId},
		{"codepage", jc.Codepage},
		{"onid", jc.Onid},
		{"cycle_ms", jc.CycleMs},
	}
	for _, item := range rootNumbers {
		if err := checkNumber(SectionRoot, item.key, item.v); err != nil {
			return nil, err
		}
	}

	c := newDefaultConfig()
	c.Output = jc.Output
	c.Instance.Version = uint8(jc.NitVersion)
	c.Instance.NetworkId = uint16(jc.NetworkId)
	c.Instance.NetworkName = jc.Network
	c.Instance.Codepage = uint8(jc.Codepage)
	c.Instance.Onid = uint16(jc.Onid)
	c.CycleMs = int(jc.CycleMs)
	c.HttpApi = jc.HttpApi
	c.Log = jc.Log

	var err error
	if c.Order, err = nit.ParseOrderPolicy(jc.Order); err != nil {
		return nil, base.NewErrConfigValue(SectionRoot, "order", jc.Order, nil)
	}

	for i := range jc.Multiplex {
		mux, err := jc.Multiplex[i].toMultiplex(&c.Instance)
		if err != nil {
			return nil, fmt.Errorf("%w, index=%d", err, i)
		}
		c.Instance.Multiplexes = append(c.Instance.Multiplexes, mux)
	}
	return c, nil
}

func (jm *jsonMultiplex) toMultiplex(inst *model.Instance) (model.Multiplex, error) {
	mux := inst.NewMultiplex()

	tsid, err := requiredNumber(SectionMultiplex, "tsid", jm.Tsid)
	if err != nil {
		return mux, err
	}
	onid, err := optionalNumber(SectionMultiplex, "onid", jm.Onid, int64(inst.Onid))
	if err != nil {
		return mux, err
	}
	mux.Tsid = uint16(tsid)
	mux.Onid = uint16(onid)
	if jm.Enable != nil {
		mux.Enable = *jm.Enable
	}

	if jm.DvbC != nil {
		if mux.Delivery, err = jm.DvbC.toDelivery(); err != nil {
			return mux, err
		}
	}

	for i := range jm.Service {
		s, err := jm.Service[i].toService()
		if err != nil {
			return mux, err
		}
		mux.Services = append(mux.Services, s)
	}
	return mux, nil
}

func (jd *jsonDvbC) toDelivery() (d model.Delivery, err error) {
	var frequency, symbolRate, fec int64
	if frequency, err = requiredNumber(SectionDvbC, "frequency", jd.Frequency); err != nil {
		return
	}
	if symbolRate, err = requiredNumber(SectionDvbC, "symbolrate", jd.SymbolRate); err != nil {
		return
	}
	if fec, err = optionalNumber(SectionDvbC, "fec", jd.Fec, 0); err != nil {
		return
	}
	d.Frequency = uint32(frequency)
	d.SymbolRate = uint32(symbolRate)
	d.Fec = uint8(fec)
	d.Modulation = model.ParseModulation(jd.Modulation)
	if d.Modulation == model.ModulationNotDefined && jd.Modulation != "" {
		Log.Warnf("unknown modulation, use not defined. modulation=%s", jd.Modulation)
	}
	return
}

func (js *jsonService) toService() (s model.Service, err error) {
	s = model.NewService()
	var pnr, typ, lcn int64
	if pnr, err = requiredNumber(SectionService, "pnr", js.Pnr); err != nil {
		return
	}
	if typ, err = optionalNumber(SectionService, "type", js.Type, int64(s.Type)); err != nil {
		return
	}
	if lcn, err = optionalNumber(SectionService, "lcn", js.Lcn, int64(s.Lcn)); err != nil {
		return
	}
	s.Pnr = uint16(pnr)
	s.Type = uint8(typ)
	s.Lcn = uint16(lcn)
	s.Name = js.Name
	return
}

func requiredNumber(section, key string, v *int64) (int64, error) {
	if v == nil {
		return 0, base.NewErrConfigRequired(section, key)
	}
	return *v, checkNumber(section, key, *v)
}

func optionalNumber(section, key string, v *int64, defaultValue int64) (int64, error) {
	if v == nil {
		return defaultValue, nil
	}
	return *v, checkNumber(section, key, *v)
}

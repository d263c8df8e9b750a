// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package conf_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/nitstream/pkg/base"
	"github.com/q191201771/nitstream/pkg/conf"
	"github.com/q191201771/nitstream/pkg/model"
	"github.com/q191201771/nitstream/pkg/nit"
)

var goldenIni = `
output = udp://239.255.1.1:10000
nit_version = 3
network_id = 7
network = Test Network
codepage = 5
onid = 3
order = tsid
cycle_ms = 500
http_api_addr = :18084
log_level = debug

[multiplex]
tsid = 202
enable = false

[dvb-c]
frequency = 482
symbolrate = 6875
modulation = QAM64

[multiplex]
tsid = 101
onid = 9

[dvb-c]
frequency = 474
symbolrate = 6875
fec = 3
modulation = QAM256

[service]
pnr = 5001
lcn = 12
name = first

[service]
pnr = 5002
type = 2
`

var goldenJson = `{
  "output": "udp://239.255.1.1:10000",
  "nit_version": 3,
  "network_id": 7,
  "network": "Test Network",
  "codepage": 5,
  "onid": 3,
  "order": "tsid",
  "cycle_ms": 500,
  "http_api": {"addr": ":18084"},
  "log": {"level": 1},
  "multiplex": [
    {
      "tsid": 202,
      "enable": false,
      "dvb-c": {"frequency": 482, "symbolrate": 6875, "modulation": "QAM64"}
    },
    {
      "tsid": 101,
      "onid": 9,
      "dvb-c": {"frequency": 474, "symbolrate": 6875, "fec": 3, "modulation": "QAM256"},
      "service": [
        {"pnr": 5001, "lcn": 12, "name": "first"},
        {"pnr": 5002, "type": 2}
      ]
    }
  ]
}`

var goldenYaml = `
output: udp://239.255.1.1:10000
nit_version: 3
network_id: 7
network: Test Network
codepage: 5
onid: 3
order: tsid
cycle_ms: 500
http_api:
  addr: ":18084"
log:
  level: 1
multiplex:
  - tsid: 202
    enable: false
    dvb-c:
      frequency: 482
      symbolrate: 6875
      modulation: QAM64
  - tsid: 101
    onid: 9
    dvb-c:
      frequency: 474
      symbolrate: 6875
      fec: 3
      modulation: QAM256
    service:
      - pnr: 5001
        lcn: 12
        name: first
      - pnr: 5002
        type: 2
`

var goldenInstance = model.Instance{
	Version:     3,
	NetworkId:   7,
	NetworkName: "Test Network",
	Codepage:    5,
	Onid:        3,
	Multiplexes: []model.Multiplex{
		{
			Tsid:   202,
			Onid:   3,
			Enable: false,
			Delivery: model.Delivery{
				Frequency:  482,
				SymbolRate: 6875,
				Modulation: model.ModulationQam64,
			},
		},
		{
			Tsid:   101,
			Onid:   9,
			Enable: true,
			Delivery: model.Delivery{
				Frequency:  474,
				SymbolRate: 6875,
				Fec:        3,
				Modulation: model.ModulationQam256,
			},
			Services: []model.Service{
				{Pnr: 5001, Type: 1, Lcn: 12, Name: "first"},
				{Pnr: 5002, Type: 2, Lcn: 0},
			},
		},
	},
}

func writeTemp(t *testing.T, name string, content string) string {
	filename := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(filename, []byte(content), 0644)
	assert.Equal(t, nil, err)
	return filename
}

func TestLoadConf(t *testing.T) {
	for _, item := range []struct {
		name    string
		content string
	}{
		{"nitstream.conf", goldenIni},
		{"nitstream.ini", goldenIni},
		{"nitstream.json", goldenJson},
		{"nitstream.yaml", goldenYaml},
		{"nitstream.yml", goldenYaml},
	} {
		c, err := conf.LoadConf(writeTemp(t, item.name, item.content))
		assert.Equal(t, nil, err, item.name)
		assert.Equal(t, goldenInstance, c.Instance, item.name)
		assert.Equal(t, "udp://239.255.1.1:10000", c.Output, item.name)
		assert.Equal(t, nit.OrderByTsid, c.Order, item.name)
		assert.Equal(t, 500, c.CycleMs, item.name)
		assert.Equal(t, true, c.HttpApi.Enable, item.name)
		assert.Equal(t, ":18084", c.HttpApi.Addr, item.name)
		assert.Equal(t, nazalog.LevelDebug, c.Log.Level, item.name)
	}
}

func TestDefault(t *testing.T) {
	ini := `
[multiplex]
tsid = 1
[service]
pnr = 100
`
	json := `{"multiplex": [{"tsid": 1, "service": [{"pnr": 100}]}]}`

	for _, filename := range []string{
		writeTemp(t, "a.ini", ini),
		writeTemp(t, "a.json", json),
	} {
		c, err := conf.LoadConf(filename)
		assert.Equal(t, nil, err)
		assert.Equal(t, uint8(0), c.Instance.Version)
		assert.Equal(t, uint16(1), c.Instance.NetworkId)
		assert.Equal(t, uint16(1), c.Instance.Onid)
		assert.Equal(t, uint8(0), c.Instance.Codepage)
		assert.Equal(t, "", c.Instance.NetworkName)
		assert.Equal(t, "", c.Output)
		assert.Equal(t, nit.OrderInsertion, c.Order)
		assert.Equal(t, 1000, c.CycleMs)
		assert.Equal(t, false, c.HttpApi.Enable)
		assert.Equal(t, nazalog.LevelInfo, c.Log.Level)
		assert.Equal(t, true, c.Log.IsToStdout)

		assert.Equal(t, 1, len(c.Instance.Multiplexes))
		mux := c.Instance.Multiplexes[0]
		assert.Equal(t, uint16(1), mux.Onid)
		assert.Equal(t, true, mux.Enable)
		assert.Equal(t, []model.Service{{Pnr: 100, Type: 1, Lcn: 0}}, mux.Services)
	}
}

func TestMultiplexOnidFollowsRoot(t *testing.T) {
	// multiplex之前的onid作为默认值
	c, err := conf.LoadConf(writeTemp(t, "a.ini", "onid = 42\n[multiplex]\ntsid = 1\n"))
	assert.Equal(t, nil, err)
	assert.Equal(t, uint16(42), c.Instance.Multiplexes[0].Onid)
}

func TestEnableLenient(t *testing.T) {
	c, err := conf.LoadConf(writeTemp(t, "a.ini", "[multiplex]\ntsid = 1\nenable = yes\n[multiplex]\ntsid = 2\nenable = true\n"))
	assert.Equal(t, nil, err)
	assert.Equal(t, false, c.Instance.Multiplexes[0].Enable)
	assert.Equal(t, true, c.Instance.Multiplexes[1].Enable)
}

func TestUnknownModulation(t *testing.T) {
	c, err := conf.LoadConf(writeTemp(t, "a.ini", "[multiplex]\ntsid = 1\n[dvb-c]\nfrequency = 474\nsymbolrate = 6875\nmodulation = QAM1024\n"))
	assert.Equal(t, nil, err)
	assert.Equal(t, model.ModulationNotDefined, c.Instance.Multiplexes[0].Delivery.Modulation)
}

func TestStructureError(t *testing.T) {
	for _, content := range []string{
		"[service]\npnr = 1\n[multiplex]\ntsid = 1\n",
		"network_id = 1\n[dvb-c]\nfrequency = 474\nsymbolrate = 6875\n",
	} {
		_, err := conf.LoadConf(writeTemp(t, "a.ini", content))
		assert.Equal(t, true, errors.Is(err, base.ErrConfigStructure), content)
	}
}

func TestValueError(t *testing.T) {
	for _, content := range []string{
		"nit_version = 32\n",
		"network_id = 65536\n",
		"network_id = abc\n",
		"onid = 0\n",
		"codepage = 12\n",
		"codepage = 22\n",
		"order = random\n",
		"log_level = verbose\n",
		"[multiplex]\nenable = true\n",
		"[multiplex]\ntsid = 0\n",
		"[multiplex]\ntsid = 70000\n",
		"[multiplex]\ntsid = 1\n[service]\nlcn = 1\n",
		"[multiplex]\ntsid = 1\n[service]\npnr = 1\nlcn = 1001\n",
		"[multiplex]\ntsid = 1\n[service]\npnr = 1\ntype = 256\n",
		"[multiplex]\ntsid = 1\n[dvb-c]\nsymbolrate = 6875\n",
		"[multiplex]\ntsid = 1\n[dvb-c]\nfrequency = 474\n",
		"[multiplex]\ntsid = 1\n[dvb-c]\nfrequency = 10000\nsymbolrate = 6875\n",
		"[multiplex]\ntsid = 1\n[dvb-c]\nfrequency = 474\nsymbolrate = 6875\nfec = 16\n",
	} {
		_, err := conf.LoadConf(writeTemp(t, "a.ini", content))
		assert.Equal(t, true, errors.Is(err, base.ErrConfigValue), content)
	}

	for _, content := range []string{
		`{"nit_version": 32}`,
		`{"network_id": "abc"}`,
		`{"multiplex": [{"onid": 1}]}`,
		`{"multiplex": [{"tsid": 1, "service": [{"lcn": 1}]}]}`,
		`{"multiplex": [{"tsid": 1, "dvb-c": {"frequency": 474}}]}`,
	} {
		_, err := conf.LoadConf(writeTemp(t, "a.json", content))
		assert.Equal(t, true, errors.Is(err, base.ErrConfigValue), content)
	}
}

func TestSourceError(t *testing.T) {
	_, err := conf.LoadConf(filepath.Join(t.TempDir(), "not_exist.ini"))
	assert.Equal(t, true, errors.Is(err, base.ErrConfigSource))

	_, err = conf.LoadConf(writeTemp(t, "a.json", "{"))
	assert.Equal(t, true, errors.Is(err, base.ErrConfigSource))

	_, err = conf.LoadConf(writeTemp(t, "a.yaml", "a: [1, 2"))
	assert.Equal(t, true, errors.Is(err, base.ErrConfigSource))
}

func TestDescribe(t *testing.T) {
	s := conf.Describe()
	for _, key := range []string{"output = ", "nit_version = ", "[multiplex]", "tsid = ", "[dvb-c]", "frequency = ", "[service]", "pnr = ", "21 - UTF-8"} {
		assert.Equal(t, true, strings.Contains(s, key), key)
	}
	// 12不是合法的codepage
	assert.Equal(t, false, strings.Contains(s, "12 - "))
}

func TestSampleConf(t *testing.T) {
	var instances []model.Instance
	for _, filename := range []string{
		"../../conf/nitstream.conf.ini",
		"../../conf/nitstream.conf.json",
		"../../conf/nitstream.conf.yaml",
	} {
		c, err := conf.LoadConf(filename)
		assert.Equal(t, nil, err, filename)
		assert.Equal(t, 3, len(c.Instance.Multiplexes), filename)
		assert.Equal(t, true, c.HttpApi.Enable, filename)
		instances = append(instances, c.Instance)
	}
	assert.Equal(t, instances[0], instances[1])
	assert.Equal(t, instances[0], instances[2])
}

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
	"github.com/q191201771/nitstream/pkg/textcode"
)

const (
	SectionRoot      = ""
	SectionMultiplex = "multiplex"
	SectionDvbC      = "dvb-c"
	SectionService   = "service"
)

// Field 配置项的描述，数值类型的配置项带有取值范围
type Field struct {
	Key      string
	Desc     string
	Required bool

	IsNumber bool
	Min      int64
	Max      int64
	Valid    func(v int64) bool // 不为nil时替代Min/Max
}

type Section struct {
	Name     string
	Desc     string
	Fields   []Field
	Children []*Section
}

func numberField(key string, required bool, min, max int64, desc string) Field {
	return Field{
		Key:      key,
		Desc:     desc,
		Required: required,
		IsNumber: true,
		Min:      min,
		Max:      max,
	}
}

func stringField(key string, required bool, desc string) Field {
	return Field{
		Key:      key,
		Desc:     desc,
		Required: required,
	}
}

var serviceSchema = &Section{
	Name: SectionService,
	Desc: "Service configuration. Multiplex contains one or more services",
	Fields: []Field{
		numberField("pnr", true, 1, 65535, "Program Number. Required. Range: 1 .. 65535"),
		numberField("type", false, 0, 255, "Default: 1. Range: 0 .. 255. Available values:\n"+
			"1 - Digital Television service\n"+
			"2 - Digital Radio service\n"+
			"3 - Teletext service\n"+
			"More information available in EN 300 468 (Table 61: Service type coding)"),
		numberField("lcn", false, 0, 1000, "Logical Channel Number. Default: 0 - not set. Range: 0 .. 1000"),
		stringField("name", false, "Service name. Default: not set"),
	},
}

var dvbCSchema = &Section{
	Name: SectionDvbC,
	Desc: "Options for DVB-C delivery system",
	Fields: []Field{
		numberField("frequency", true, 1, 9999, "Frequency in MHz. Required. Range: 1 .. 9999"),
		stringField("modulation", false, "Modulation scheme. Default: not set. Available values:\n"+
			"QAM16, QAM32, QAM64, QAM128, QAM256"),
		numberField("symbolrate", true, 1, 999999, "Symbolrate in Ksymbol/s. Required. Range: 1 .. 999999. Example: 6875"),
		numberField("fec", false, 0, 15, "Inner FEC scheme. Default: 0 - not set. Range: 0 .. 15. Available values:\n"+
			"1 - 1/2\n"+
			"2 - 2/3\n"+
			"3 - 3/4\n"+
			"4 - 5/6\n"+
			"5 - 7/8"),
	},
}

var multiplexSchema = &Section{
	Name: SectionMultiplex,
	Desc: "Multiplex configuration. Network contains one or more multiplexes.\n" +
		"[dvb-c] and [service] sections belong to the nearest [multiplex] above them",
	Fields: []Field{
		numberField("tsid", true, 1, 65535, "Transport Stream Identifier. Required. Range: 1 .. 65535"),
		numberField("onid", false, 1, 65535, "Redefine Original Network Identifier for multiplex. Range: 1 .. 65535"),
		stringField("enable", false, "Default: true. Disabled multiplex is not present in the NIT"),
	},
	Children: []*Section{dvbCSchema, serviceSchema},
}

// Schema 配置格式的完整描述，用于校验以及 Describe
var Schema = &Section{
	Name: SectionRoot,
	Desc: "nit-stream - MPEG-TS NIT (Network Information Table) streamer",
	Fields: []Field{
		stringField("output", false, "UDP Address. Example: udp://239.255.1.1:10000\n"+
			"Optional local address for multicast interface: udp://239.255.1.1:10000?localaddr=192.168.1.2:0\n"+
			"Default: not set - table is generated but not sent"),
		numberField("nit_version", false, 0, 31, "Table version. Default: 0. Range: 0 .. 31"),
		numberField("network_id", false, 0, 65535, "Unique network identifier. Default: 1. Range: 0 .. 65535"),
		stringField("network", false, "Network name. Default: not set"),
		numberField("onid", false, 1, 65535, "Original Network Identifier. Default: 1. Range: 1 .. 65535"),
		{
			Key:  "codepage",
			Desc: "Codepage for network name. Default: 0 - Latin (ISO 6937). Available values:\n" +
				codepageDesc(),
			IsNumber: true,
			Valid: func(v int64) bool {
				return textcode.IsValidCodepage(int(v))
			},
		},
		stringField("order", false, "Order of multiplexes in the NIT. Default: insertion. Available values:\n"+
			"insertion - same as configuration file\n"+
			"tsid - ascending by tsid"),
		numberField("cycle_ms", false, 10, 60000, "Repetition period of the complete table in milliseconds. Default: 1000. Range: 10 .. 60000"),
		stringField("http_api_addr", false, "Listen address of stat http api. Example: :8084. Default: not set - disabled"),
		stringField("log_level", false, "Default: info. Available values: trace, debug, info, warn, error"),
		stringField("log_file", false, "Log file path. Default: not set - stdout only"),
	},
	Children: []*Section{multiplexSchema},
}

var (
	sectionIndex = make(map[string]*Section)
	fieldIndex   = make(map[string]map[string]*Field)
)

func init() {
	var index func(s *Section)
	index = func(s *Section) {
		m := make(map[string]*Field)
		for i := range s.Fields {
			m[s.Fields[i].Key] = &s.Fields[i]
		}
		fieldIndex[s.Name] = m
		sectionIndex[s.Name] = s
		for _, c := range s.Children {
			index(c)
		}
	}
	index(Schema)
}

func lookupField(section, key string) *Field {
	return fieldIndex[section][key]
}

func codepageDesc() string {
	var lines []string
	for cp := 1; cp <= 21; cp++ {
		if !textcode.IsValidCodepage(cp) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%d - %s", cp, textcode.CodepageName(uint8(cp))))
	}
	return strings.Join(lines, "\n")
}

func (f *Field) valid(v int64) bool {
	if f.Valid != nil {
		return f.Valid(v)
	}
	return v >= f.Min && v <= f.Max
}

// checkNumber 不在schema中的配置项不做检查
func checkNumber(section, key string, v int64) error {
	f := lookupField(section, key)
	if f == nil || f.valid(v) {
		return nil
	}
	return base.NewErrConfigValue(section, key, strconv.FormatInt(v, 10), fmt.Errorf("out of range"))
}

func parseNumber(section, key, raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, base.NewErrConfigValue(section, key, raw, err)
	}
	if err = checkNumber(section, key, v); err != nil {
		return 0, err
	}
	return v, nil
}

// Describe 配置文件格式的说明，ini格式
func Describe() string {
	var sb strings.Builder
	describeSection(&sb, Schema)
	return sb.String()
}

func describeSection(sb *strings.Builder, s *Section) {
	if s.Name != SectionRoot {
		fmt.Fprintf(sb, "\n[%s]\n", s.Name)
	}
	writeComment(sb, s.Desc)
	for _, f := range s.Fields {
		sb.WriteString("\n")
		writeComment(sb, f.Desc)
		fmt.Fprintf(sb, "%s = \n", f.Key)
	}
	for _, c := range s.Children {
		describeSection(sb, c)
	}
}

func writeComment(sb *strings.Builder, desc string) {
	for _, line := range strings.Split(desc, "\n") {
		fmt.Fprintf(sb, "; %s\n", line)
	}
}

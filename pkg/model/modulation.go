// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package model

// Modulation DVB-C调制方式，取值即cable_delivery_system_descriptor中modulation字段的值
//
// <EN 300 468> <Table 34>
type Modulation uint8

const (
	ModulationNotDefined Modulation = 0x00
	ModulationQam16      Modulation = 0x01
	ModulationQam32      Modulation = 0x02
	ModulationQam64      Modulation = 0x03
	ModulationQam128     Modulation = 0x04
	ModulationQam256     Modulation = 0x05
)

var modulation2Name = map[Modulation]string{
	ModulationQam16:  "QAM16",
	ModulationQam32:  "QAM32",
	ModulationQam64:  "QAM64",
	ModulationQam128: "QAM128",
	ModulationQam256: "QAM256",
}

// ParseModulation 不认识的值返回 ModulationNotDefined，不报错
func ParseModulation(s string) Modulation {
	for k, v := range modulation2Name {
		if v == s {
			return k
		}
	}
	return ModulationNotDefined
}

func (m Modulation) String() string {
	if name, ok := modulation2Name[m]; ok {
		return name
	}
	return "NOT_DEFINED"
}

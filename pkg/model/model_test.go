// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package model

import (
	"testing"

	"github.com/q191201771/naza/pkg/assert"
)

func TestParseModulation(t *testing.T) {
	golden := map[string]Modulation{
		"QAM16":  ModulationQam16,
		"QAM32":  ModulationQam32,
		"QAM64":  ModulationQam64,
		"QAM128": ModulationQam128,
		"QAM256": ModulationQam256,
		"qam256": ModulationNotDefined,
		"8PSK":   ModulationNotDefined,
		"":       ModulationNotDefined,
	}
	for k, v := range golden {
		assert.Equal(t, v, ParseModulation(k), k)
	}
	assert.Equal(t, "QAM64", ModulationQam64.String())
	assert.Equal(t, "NOT_DEFINED", Modulation(0x33).String())
}

func TestEnabledMultiplexes(t *testing.T) {
	inst := Instance{Onid: 3}
	m1 := inst.NewMultiplex()
	m1.Tsid = 1
	m2 := inst.NewMultiplex()
	m2.Tsid = 2
	m2.Enable = false
	m3 := inst.NewMultiplex()
	m3.Tsid = 3
	inst.Multiplexes = append(inst.Multiplexes, m1, m2, m3)

	ms := inst.EnabledMultiplexes()
	assert.Equal(t, 2, len(ms))
	assert.Equal(t, uint16(1), ms[0].Tsid)
	assert.Equal(t, uint16(3), ms[1].Tsid)
	assert.Equal(t, uint16(3), ms[1].Onid)

	s := NewService()
	assert.Equal(t, uint8(1), s.Type)
	assert.Equal(t, uint16(0), s.Lcn)
}

// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package model

// Instance 描述整个网络，是配置加载的结果
//
// 加载完成之后不再修改，发送循环每个周期只读
type Instance struct {
	Version     uint8  // nit_version, 0 .. 31
	NetworkId   uint16 // network_id
	NetworkName string // 可以为空，为空时不生成network_name_descriptor
	Codepage    uint8  // NetworkName的编码，见 textcode
	Onid        uint16 // original_network_id, Multiplex没有设置时使用该值

	Multiplexes []Multiplex
}

// Multiplex 一个物理的传输流
type Multiplex struct {
	Tsid   uint16
	Onid   uint16
	Enable bool // 为false时保留在模型中，但不会出现在NIT中

	Delivery Delivery
	Services []Service
}

// Delivery DVB-C物理层参数
type Delivery struct {
	Frequency  uint32 // 单位MHz，组表时转换为Hz
	SymbolRate uint32 // 单位Ksymbol/s，比如6875
	Fec        uint8  // FEC_inner
	Modulation Modulation
	FecOuter   uint8 // 保留，目前总是0
}

// Service 复用中的一个节目
type Service struct {
	Pnr  uint16
	Type uint8
	Lcn  uint16
	Name string // 目前没有使用
}

const (
	DefaultVersion     = 0
	DefaultNetworkId   = 1
	DefaultOnid        = 1
	DefaultCodepage    = 0
	DefaultServiceType = 1 // digital television service
	DefaultLcn         = 0
)

// NewMultiplex 使用Instance的默认值初始化
func (inst *Instance) NewMultiplex() Multiplex {
	return Multiplex{
		Onid:   inst.Onid,
		Enable: true,
	}
}

func NewService() Service {
	return Service{
		Type: DefaultServiceType,
		Lcn:  DefaultLcn,
	}
}

func (inst *Instance) EnabledMultiplexes() []*Multiplex {
	var ret []*Multiplex
	for i := range inst.Multiplexes {
		if inst.Multiplexes[i].Enable {
			ret = append(ret, &inst.Multiplexes[i])
		}
	}
	return ret
}

// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package nit

import (
	"github.com/q191201771/nitstream/pkg/model"
	"github.com/q191201771/nitstream/pkg/mpegts"
	"github.com/q191201771/nitstream/pkg/textcode"
)

// 将模型转换为descriptor，都是纯函数，输入在配置加载时已经校验过

const frequencyMhz2Hz = 1000000

// BuildNetworkName 网络名为空时返回false
func BuildNetworkName(inst *model.Instance) (mpegts.Descriptor, bool) {
	if inst.NetworkName == "" {
		return mpegts.Descriptor{}, false
	}

	name := textcode.Truncate(textcode.Encode(inst.NetworkName, inst.Codepage), inst.Codepage, mpegts.MaxDescriptorPayloadSize)
	return mpegts.Descriptor{
		Tag:         mpegts.DescriptorTagNetworkName,
		NetworkName: &mpegts.DescriptorNetworkName{Name: name},
	}, true
}

// BuildCableDelivery 频率在这里从MHz转换为Hz
func BuildCableDelivery(d *model.Delivery) mpegts.Descriptor {
	return mpegts.Descriptor{
		Tag: mpegts.DescriptorTagCableDeliverySystem,
		CableDelivery: &mpegts.DescriptorCableDelivery{
			Frequency:  uint64(d.Frequency) * frequencyMhz2Hz,
			FecOuter:   d.FecOuter,
			Modulation: uint8(d.Modulation),
			SymbolRate: d.SymbolRate,
			FecInner:   d.Fec,
		},
	}
}

// BuildServiceList 每个service一个(pnr, type)，保持service的顺序
//
// 没有service时返回nil；超过一个descriptor的容量时拆成多个相同tag的descriptor
func BuildServiceList(mux *model.Multiplex) []mpegts.Descriptor {
	var ret []mpegts.Descriptor
	for begin := 0; begin < len(mux.Services); begin += mpegts.MaxServiceListItems {
		end := begin + mpegts.MaxServiceListItems
		if end > len(mux.Services) {
			end = len(mux.Services)
		}

		d := &mpegts.DescriptorServiceList{
			Items: make([]mpegts.ServiceListItem, 0, end-begin),
		}
		for _, s := range mux.Services[begin:end] {
			d.Items = append(d.Items, mpegts.ServiceListItem{
				ServiceId:   s.Pnr,
				ServiceType: s.Type,
			})
		}
		ret = append(ret, mpegts.Descriptor{
			Tag:         mpegts.DescriptorTagServiceList,
			ServiceList: d,
		})
	}
	return ret
}

// BuildLogicalChannel 每个service一个(pnr, 1, lcn)，规则同 BuildServiceList
func BuildLogicalChannel(mux *model.Multiplex) []mpegts.Descriptor {
	var ret []mpegts.Descriptor
	for begin := 0; begin < len(mux.Services); begin += mpegts.MaxLogicalChannelItems {
		end := begin + mpegts.MaxLogicalChannelItems
		if end > len(mux.Services) {
			end = len(mux.Services)
		}

		d := &mpegts.DescriptorLogicalChannel{
			Items: make([]mpegts.LogicalChannelItem, 0, end-begin),
		}
		for _, s := range mux.Services[begin:end] {
			d.Items = append(d.Items, mpegts.LogicalChannelItem{
				ServiceId:      s.Pnr,
				Visible:        1,
				LogicalChannel: s.Lcn,
			})
		}
		ret = append(ret, mpegts.Descriptor{
			Tag:            mpegts.DescriptorTagLogicalChannel,
			LogicalChannel: d,
		})
	}
	return ret
}

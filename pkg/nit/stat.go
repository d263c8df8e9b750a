// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package nit

import (
	"github.com/q191201771/nitstream/pkg/base"
	"github.com/q191201771/nitstream/pkg/model"
	"github.com/q191201771/nitstream/pkg/mpegts"
)

// Stat 根据组好的表生成概要，用于日志和http api
func Stat(inst *model.Instance, policy OrderPolicy, table *mpegts.Nit) (base.StatNit, error) {
	sections, err := table.Sections()
	if err != nil {
		return base.StatNit{}, err
	}

	ret := base.StatNit{
		TableId:     table.TableId,
		Version:     table.Version,
		NetworkId:   table.NetworkId,
		NetworkName: inst.NetworkName,
		Order:       policy.String(),
		Sections:    len(sections),
		Items:       make([]base.StatNitItem, 0, len(table.Items)),
	}
	for i := range sections {
		ret.Packets += mpegts.CalcPacketCount(int(sections[i].SectionLength()) + 3)
	}

	for _, item := range table.Items {
		si := base.StatNitItem{
			Tsid: item.Tsid,
			Onid: item.Onid,
		}
		for _, d := range item.Descriptors {
			switch {
			case d.CableDelivery != nil:
				si.Frequency = d.CableDelivery.Frequency
				si.SymbolRate = d.CableDelivery.SymbolRate
				si.Modulation = model.Modulation(d.CableDelivery.Modulation).String()
			case d.ServiceList != nil:
				si.Services += len(d.ServiceList.Items)
			}
		}
		ret.Items = append(ret.Items, si)
	}
	return ret, nil
}

// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package nit

import (
	"fmt"
	"sort"

	"github.com/q191201771/nitstream/pkg/base"
	"github.com/q191201771/nitstream/pkg/model"
	"github.com/q191201771/nitstream/pkg/mpegts"
)

// OrderPolicy NIT中transport stream的排列顺序
type OrderPolicy int

const (
	// OrderInsertion 与配置中multiplex的顺序一致
	OrderInsertion OrderPolicy = iota

	// OrderByTsid 按tsid升序，tsid相同时保持配置顺序
	OrderByTsid
)

const (
	OrderNameInsertion = "insertion"
	OrderNameTsid      = "tsid"
)

func ParseOrderPolicy(s string) (OrderPolicy, error) {
	switch s {
	case "", OrderNameInsertion:
		return OrderInsertion, nil
	case OrderNameTsid:
		return OrderByTsid, nil
	}
	return OrderInsertion, fmt.Errorf("%w. order=%s", base.ErrConfigValue, s)
}

func (p OrderPolicy) String() string {
	if p == OrderByTsid {
		return OrderNameTsid
	}
	return OrderNameInsertion
}

// Assemble 根据模型生成NIT
//
// 只包含enable的multiplex，每个item依次包含delivery、service_list、logical_channel descriptor
func Assemble(inst *model.Instance, policy OrderPolicy) *mpegts.Nit {
	nit := mpegts.NewNit(inst.Version, inst.NetworkId)

	if d, ok := BuildNetworkName(inst); ok {
		nit.Descriptors = append(nit.Descriptors, d)
	}

	for _, mux := range inst.EnabledMultiplexes() {
		item := mpegts.NitItem{
			Tsid: mux.Tsid,
			Onid: mux.Onid,
		}
		item.Descriptors = append(item.Descriptors, BuildCableDelivery(&mux.Delivery))
		item.Descriptors = append(item.Descriptors, BuildServiceList(mux)...)
		item.Descriptors = append(item.Descriptors, BuildLogicalChannel(mux)...)

		nit.Items = append(nit.Items, item)
	}

	if policy == OrderByTsid {
		sort.SliceStable(nit.Items, func(i, j int) bool {
			return nit.Items[i].Tsid < nit.Items[j].Tsid
		})
	}
	return nit
}

// DuplicateTsids 返回被多个enable的multiplex使用的tsid，按首次出现的顺序
//
// 组表时不拒绝重复的tsid，由调用方决定如何处理
func DuplicateTsids(inst *model.Instance) []uint16 {
	var ret []uint16
	count := make(map[uint16]int)
	for _, mux := range inst.EnabledMultiplexes() {
		count[mux.Tsid]++
		if count[mux.Tsid] == 2 {
			ret = append(ret, mux.Tsid)
		}
	}
	return ret
}

// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import "github.com/q191201771/naza/pkg/nazalog"

var Log = nazalog.GetGlobalLogger()

const (
	syncByte uint8 = 0x47

	TsPacketSize = 188

	// TsPacketHeaderSize 不包含adaptation
	TsPacketHeaderSize = 4
)

// <EN 300 468> <Table 1>
const PidNit = 0x10 // network_information_section

// <EN 300 468> <Table 2>
// 只生成actual_network，不生成other_network(0x41)
const TableIdNitActual = 0x40 // network_information_section - actual_network

// DescriptorTag
//
// <EN 300 468> <Table 12>
const (
	DescriptorTagNetworkName         = 0x40
	DescriptorTagServiceList         = 0x41
	DescriptorTagCableDeliverySystem = 0x44
	DescriptorTagLogicalChannel      = 0x83 // EACEM/NorDig logical_channel_descriptor, 用户私有范围
)

const (
	// MaxSectionSize DVB SI section最大长度，包含table_id和section_length在内的3字节
	MaxSectionSize = 1024

	// MaxDescriptorPayloadSize descriptor_length只有8位
	MaxDescriptorPayloadSize = 255
)

// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazabits"
	"github.com/q191201771/nitstream/pkg/base"
)

// Descriptor 根据Tag使用对应的字段，其他字段为nil
type Descriptor struct {
	Tag            uint8
	NetworkName    *DescriptorNetworkName
	ServiceList    *DescriptorServiceList
	CableDelivery  *DescriptorCableDelivery
	LogicalChannel *DescriptorLogicalChannel
	Unknown        []byte
}

// DescriptorNetworkName
//
// <EN 300 468> <6.2.27>
// -----loop-----
// char [8b]
// --------------
type DescriptorNetworkName struct {
	Name []byte // 已经按codepage编码，包含字符表前缀
}

// DescriptorServiceList
//
// <EN 300 468> <6.2.35>
// -----loop-----
// service_id   [16b]
// service_type [8b]
// --------------
type DescriptorServiceList struct {
	Items []ServiceListItem
}

type ServiceListItem struct {
	ServiceId   uint16
	ServiceType uint8
}

// DescriptorCableDelivery
//
// <EN 300 468> <6.2.13.1>
// frequency          [32b] 4位BCD * 8, 单位100Hz
// reserved_future_use[12b]
// FEC_outer          [4b]
// modulation         [8b]
// symbol_rate        [28b] 4位BCD * 7, 单位100symbol/s
// FEC_inner          [4b]
type DescriptorCableDelivery struct {
	Frequency  uint64 // Hz
	FecOuter   uint8
	Modulation uint8
	SymbolRate uint32 // Ksymbol/s
	FecInner   uint8
}

// DescriptorLogicalChannel
//
// <EACEM TR-030> <NorDig Unified 12.2.9>
// -----loop-----
// service_id             [16b]
// visible_service_flag   [1b]
// reserved               [5b]
// logical_channel_number [10b]
// --------------
type DescriptorLogicalChannel struct {
	Items []LogicalChannelItem
}

type LogicalChannelItem struct {
	ServiceId      uint16
	Visible        uint8
	LogicalChannel uint16
}

const (
	serviceListItemSize    = 3
	logicalChannelItemSize = 4
	cableDeliverySize      = 11

	// MaxServiceListItems 一个service_list_descriptor最多容纳的条目数
	MaxServiceListItems = MaxDescriptorPayloadSize / serviceListItemSize

	// MaxLogicalChannelItems 一个logical_channel_descriptor最多容纳的条目数
	MaxLogicalChannelItems = MaxDescriptorPayloadSize / logicalChannelItemSize
)

func calcDescriptorsLength(ds []Descriptor) int {
	length := 0
	for i := range ds {
		length += 2 // tag and length
		length += int(calcDescriptorLength(&ds[i]))
	}
	return length
}

func calcDescriptorLength(d *Descriptor) uint8 {
	var length int
	switch d.Tag {
	case DescriptorTagNetworkName:
		if d.NetworkName != nil {
			length = len(d.NetworkName.Name)
		}
	case DescriptorTagServiceList:
		if d.ServiceList != nil {
			length = serviceListItemSize * len(d.ServiceList.Items)
		}
	case DescriptorTagCableDeliverySystem:
		length = cableDeliverySize
	case DescriptorTagLogicalChannel:
		if d.LogicalChannel != nil {
			length = logicalChannelItemSize * len(d.LogicalChannel.Items)
		}
	default:
		length = len(d.Unknown)
	}

	if length > MaxDescriptorPayloadSize {
		length = MaxDescriptorPayloadSize
	}
	return uint8(length)
}

// appendDescriptors 追加到out末尾，超过255字节的部分被截断，调用方负责拆分
func appendDescriptors(out []byte, ds []Descriptor) []byte {
	for i := range ds {
		out = appendDescriptor(out, &ds[i])
	}
	return out
}

func appendDescriptor(out []byte, d *Descriptor) []byte {
	length := calcDescriptorLength(d)

	pos := len(out)
	out = append(out, make([]byte, 2+int(length))...)
	out[pos] = d.Tag
	out[pos+1] = length
	payload := out[pos+2:]

	switch d.Tag {
	case DescriptorTagNetworkName:
		if d.NetworkName != nil {
			copy(payload, d.NetworkName.Name)
		}
	case DescriptorTagServiceList:
		if d.ServiceList != nil {
			writeDescriptorServiceList(payload, d.ServiceList)
		}
	case DescriptorTagCableDeliverySystem:
		if d.CableDelivery != nil {
			writeDescriptorCableDelivery(payload, d.CableDelivery)
		}
	case DescriptorTagLogicalChannel:
		if d.LogicalChannel != nil {
			writeDescriptorLogicalChannel(payload, d.LogicalChannel)
		}
	default:
		copy(payload, d.Unknown)
	}
	return out
}

func writeDescriptorServiceList(payload []byte, d *DescriptorServiceList) {
	bw := nazabits.NewBitWriter(payload)
	for i, item := range d.Items {
		if (i+1)*serviceListItemSize > len(payload) {
			break
		}
		bw.WriteBits16(16, item.ServiceId)
		bw.WriteBits8(8, item.ServiceType)
	}
}

func writeDescriptorCableDelivery(payload []byte, d *DescriptorCableDelivery) {
	frequency := Bcd(d.Frequency/100, 8)
	symbolRate := Bcd(uint64(d.SymbolRate)*10, 7)

	bw := nazabits.NewBitWriter(payload)
	bw.WriteBits16(16, uint16(frequency>>16))
	bw.WriteBits16(16, uint16(frequency))
	bw.WriteBits16(12, 0xffff)
	bw.WriteBits8(4, d.FecOuter)
	bw.WriteBits8(8, d.Modulation)
	bw.WriteBits16(12, uint16(symbolRate>>16))
	bw.WriteBits16(16, uint16(symbolRate))
	bw.WriteBits8(4, d.FecInner)
}

func writeDescriptorLogicalChannel(payload []byte, d *DescriptorLogicalChannel) {
	bw := nazabits.NewBitWriter(payload)
	for i, item := range d.Items {
		if (i+1)*logicalChannelItemSize > len(payload) {
			break
		}
		bw.WriteBits16(16, item.ServiceId)
		bw.WriteBit(item.Visible)
		bw.WriteBits8(5, 0xff)
		bw.WriteBits16(10, item.LogicalChannel)
	}
}

// Bcd 把v的低digits位十进制数编码为BCD，超出的高位丢弃
func Bcd(v uint64, digits int) uint32 {
	var ret uint32
	for i := 0; i < digits; i++ {
		ret |= uint32(v%10) << (4 * uint(i))
		v /= 10
	}
	return ret
}

// UnBcd Bcd的逆运算
func UnBcd(v uint32, digits int) uint64 {
	var ret uint64
	for i := digits - 1; i >= 0; i-- {
		ret = ret*10 + uint64((v>>(4*uint(i)))&0x0F)
	}
	return ret
}

// ParseDescriptorCableDelivery 解析cable_delivery_system_descriptor的payload，不包含tag和length
func ParseDescriptorCableDelivery(payload []byte) (d DescriptorCableDelivery, err error) {
	if len(payload) < cableDeliverySize {
		return d, base.ErrShortBuffer
	}
	d.Frequency = UnBcd(bele.BeUint32(payload), 8) * 100
	d.FecOuter = payload[5] & 0x0F
	d.Modulation = payload[6]
	d.SymbolRate = uint32(UnBcd(bele.BeUint32(payload[7:])>>4, 7) / 10)
	d.FecInner = payload[10] & 0x0F
	return
}

func ParseDescriptorServiceList(payload []byte) (d DescriptorServiceList) {
	for i := 0; i+serviceListItemSize <= len(payload); i += serviceListItemSize {
		d.Items = append(d.Items, ServiceListItem{
			ServiceId:   bele.BeUint16(payload[i:]),
			ServiceType: payload[i+2],
		})
	}
	return
}

func ParseDescriptorLogicalChannel(payload []byte) (d DescriptorLogicalChannel) {
	for i := 0; i+logicalChannelItemSize <= len(payload); i += logicalChannelItemSize {
		d.Items = append(d.Items, LogicalChannelItem{
			ServiceId:      bele.BeUint16(payload[i:]),
			Visible:        payload[i+2] >> 7,
			LogicalChannel: bele.BeUint16(payload[i+2:]) & 0x03FF,
		})
	}
	return
}

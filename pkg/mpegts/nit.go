// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"fmt"

	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/nitstream/pkg/base"
)

// Nit
//
// ----------------------------------------------------------------------
// Network Information Table
// <EN 300 468> <5.2.1>
// (PsiSection header, table_id_extension为network_id)
// reserved_future_use               [4b]
// network_descriptors_length        [12b] **
// network descriptors               [N]
// reserved_future_use               [4b]
// transport_stream_loop_length      [12b] **
// -----loop-----
// transport_stream_id               [16b] **
// original_network_id               [16b] **
// reserved_future_use               [4b]
// transport_descriptors_length      [12b] **
// transport descriptors             [N]
// --------------
// CRC_32                            [32b] ****
// ----------------------------------------------------------------------
type Nit struct {
	TableId     uint8
	Version     uint8
	NetworkId   uint16
	Descriptors []Descriptor
	Items       []NitItem
}

type NitItem struct {
	Tsid        uint16
	Onid        uint16
	Descriptors []Descriptor
}

const (
	nitLoopLengthSize   = 2 // network_descriptors_length / transport_stream_loop_length
	nitItemHeaderSize   = 6
	nitSectionOverhead  = psiSectionHeaderSize + psiSyntaxHeaderSize + 2*nitLoopLengthSize + psiCrc32Size
	nitMaxSectionNumber = 256
)

// NewNit table_id为actual_network
func NewNit(version uint8, networkId uint16) *Nit {
	return &Nit{
		TableId:   TableIdNitActual,
		Version:   version,
		NetworkId: networkId,
	}
}

// Sections 把NIT拆分为一个或多个不超过 MaxSectionSize 的section
//
// network descriptors只放在第一个section中，item按顺序依次放入，放不下时开始新的section
func (nit *Nit) Sections() ([]PsiSection, error) {
	ndl := calcDescriptorsLength(nit.Descriptors)
	maxBody := MaxSectionSize - nitSectionOverhead
	if ndl > maxBody {
		return nil, fmt.Errorf("%w. network descriptors length=%d", base.ErrSectionOverflow, ndl)
	}

	// 每个section包含的item下标区间
	type span struct {
		begin, end int
	}
	var spans []span

	cur := span{}
	used := ndl
	for i := range nit.Items {
		itemLen := nitItemHeaderSize + calcDescriptorsLength(nit.Items[i].Descriptors)
		if itemLen > maxBody {
			return nil, fmt.Errorf("%w. tsid=%d, item length=%d", base.ErrSectionOverflow, nit.Items[i].Tsid, itemLen)
		}
		if used+itemLen > maxBody {
			spans = append(spans, cur)
			cur = span{begin: i, end: i}
			used = 0
		}
		used += itemLen
		cur.end = i + 1
	}
	spans = append(spans, cur)

	if len(spans) > nitMaxSectionNumber {
		return nil, fmt.Errorf("%w. section count=%d", base.ErrSectionOverflow, len(spans))
	}

	sections := make([]PsiSection, len(spans))
	for i, s := range spans {
		var nds []Descriptor
		if i == 0 {
			nds = nit.Descriptors
		}
		sections[i] = PsiSection{
			TableId:              nit.TableId,
			PrivateIndicator:     1,
			TableIdExtension:     nit.NetworkId,
			VersionNumber:        nit.Version & 0x1F,
			CurrentNextIndicator: 1,
			SectionNumber:        uint8(i),
			LastSectionNumber:    uint8(len(spans) - 1),
			TableData:            packNitTableData(nds, nit.Items[s.begin:s.end]),
		}
	}
	return sections, nil
}

func packNitTableData(nds []Descriptor, items []NitItem) []byte {
	out := make([]byte, 2, 1024)
	bele.BePutUint16(out, 0xF000|uint16(calcDescriptorsLength(nds)))
	out = appendDescriptors(out, nds)

	loopLength := 0
	for i := range items {
		loopLength += nitItemHeaderSize + calcDescriptorsLength(items[i].Descriptors)
	}
	pos := len(out)
	out = append(out, 0, 0)
	bele.BePutUint16(out[pos:], 0xF000|uint16(loopLength))

	for i := range items {
		pos = len(out)
		out = append(out, make([]byte, nitItemHeaderSize)...)
		bele.BePutUint16(out[pos:], items[i].Tsid)
		bele.BePutUint16(out[pos+2:], items[i].Onid)
		bele.BePutUint16(out[pos+4:], 0xF000|uint16(calcDescriptorsLength(items[i].Descriptors)))
		out = appendDescriptors(out, items[i].Descriptors)
	}
	return out
}

// Pack 把NIT打包成TS packet追加到out之后并返回
//
// 注意，每个packet使用*cc的当前值，然后*cc加1(模16)，cc由调用方持有，跨调用保持连续
func (nit *Nit) Pack(pid uint16, cc *uint8, out []byte) ([]byte, error) {
	sections, err := nit.Sections()
	if err != nil {
		return out, err
	}
	for i := range sections {
		out = PackSection(sections[i].Pack(), pid, cc, out)
	}
	return out, nil
}

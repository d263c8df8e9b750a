// Copyright 2023, Chef.  All rights reserved.
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
)

// PsiSection 长格式(section_syntax_indicator为1)的section
//
// ----------------------------------------------------------------------
// <iso13818-1.pdf> <2.4.4.10> <EN 300 468> <5.2>
// table_id                 [8b]  *
// section_syntax_indicator [1b]
// private_indicator        [1b]  DVB SI中为reserved_future_use '1'
// reserved                 [2b]
// section_length           [12b] **
// table_id_extension       [16b] ** NIT中为network_id
// reserved                 [2b]
// version_number           [5b]
// current_next_indicator   [1b]  *
// section_number           [8b]  *
// last_section_number      [8b]  *
// table data               [N]
// CRC_32                   [32b] ****
// ----------------------------------------------------------------------
type PsiSection struct {
	TableId              uint8
	PrivateIndicator     uint8
	TableIdExtension     uint16
	VersionNumber        uint8
	CurrentNextIndicator uint8
	SectionNumber        uint8
	LastSectionNumber    uint8
	TableData            []byte
}

const (
	psiSectionHeaderSize = 3 // table_id + section_length
	psiSyntaxHeaderSize  = 5 // table_id_extension .. last_section_number
	psiCrc32Size         = 4
)

// SectionLength section_length字段的值，即section_length字段之后的字节数
func (psi *PsiSection) SectionLength() uint16 {
	return uint16(psiSyntaxHeaderSize + len(psi.TableData) + psiCrc32Size)
}

// Pack 序列化为section字节流，不包含pointer_field
func (psi *PsiSection) Pack() []byte {
	sectionLength := psi.SectionLength()
	out := make([]byte, psiSectionHeaderSize+int(sectionLength))

	bw := nazabits.NewBitWriter(out)
	psi.writePsiTableHeader(&bw, sectionLength)
	psi.writePsiTableSyntaxSectionHeader(&bw)

	copy(out[psiSectionHeaderSize+psiSyntaxHeaderSize:], psi.TableData)

	crcPos := len(out) - psiCrc32Size
	bele.BePutUint32(out[crcPos:], CalcCrc32(0xffffffff, out[:crcPos]))
	return out
}

func (psi *PsiSection) writePsiTableHeader(bw *nazabits.BitWriter, sectionLength uint16) {
	bw.WriteBits8(8, psi.TableId)
	bw.WriteBit(1)
	bw.WriteBit(psi.PrivateIndicator)
	bw.WriteBits8(2, 0xff)
	bw.WriteBits16(12, sectionLength)
}

func (psi *PsiSection) writePsiTableSyntaxSectionHeader(bw *nazabits.BitWriter) {
	bw.WriteBits16(16, psi.TableIdExtension)
	bw.WriteBits8(2, 0xff)
	bw.WriteBits8(5, psi.VersionNumber)
	bw.WriteBit(psi.CurrentNextIndicator)
	bw.WriteBits8(8, psi.SectionNumber)
	bw.WriteBits8(8, psi.LastSectionNumber)
}

// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// PackSection 把一个完整的section切割成TS packet，追加到out之后
//
// 注意，内部会增加 *cc 的值.
//
// 每个section从新的packet开始，首个packet设置payload_unit_start_indicator并写入pointer_field(0)，
// 最后一个packet剩余的空间用0xFF填充
func PackSection(section []byte, pid uint16, cc *uint8, out []byte) []byte {
	lpos := 0            // 当前section的处理位置
	rpos := len(section) // section大小
	first := true        // 是否为section的首个packet

	for first || lpos != rpos {
		packetPos := len(out)
		out = growPacket(out)
		packet := out[packetPos : packetPos+TsPacketSize]

		h := TsPacketHeader{
			Sync:       syncByte,
			Pid:        pid,
			Adaptation: 1, // 只有payload
			Cc:         *cc & 0x0F,
		}
		if first {
			h.PayloadUnitStart = 1
		}
		PackTsPacketHeader(packet, h)
		*cc = (*cc + 1) & 0x0F

		wpos := TsPacketHeaderSize
		if first {
			packet[wpos] = 0 // pointer_field
			wpos++
			first = false
		}

		n := copy(packet[wpos:], section[lpos:rpos])
		lpos += n
		wpos += n

		for i := wpos; i < TsPacketSize; i++ {
			packet[i] = 0xFF
		}
	}
	return out
}

// CalcPacketCount section打包后占用的packet个数
func CalcPacketCount(sectionSize int) int {
	// 首个packet还有1字节pointer_field
	payload := TsPacketSize - TsPacketHeaderSize
	return (sectionSize + 1 + payload - 1) / payload
}

func growPacket(out []byte) []byte {
	if cap(out)-len(out) >= TsPacketSize {
		return out[:len(out)+TsPacketSize]
	}
	return append(out, make([]byte, TsPacketSize)...)
}

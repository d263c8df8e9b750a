// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package textcode

import (
	"golang.org/x/text/unicode/norm"
)

// ISO/IEC 6937中，带附加符号的字母由两个字节表示：先是非间距附加符号，然后是基础字母
// 这里先做NFD分解，再把组合附加符号映射到对应的字节
var combining2Iso6937 = map[rune]byte{
	0x0300: 0xC1, // grave
	0x0301: 0xC2, // acute
	0x0302: 0xC3, // circumflex
	0x0303: 0xC4, // tilde
	0x0304: 0xC5, // macron
	0x0306: 0xC6, // breve
	0x0307: 0xC7, // dot above
	0x0308: 0xC8, // diaeresis
	0x030A: 0xCA, // ring above
	0x0327: 0xCB, // cedilla
	0x030B: 0xCD, // double acute
	0x0328: 0xCE, // ogonek
	0x030C: 0xCF, // caron
}

var special2Iso6937 = map[rune]byte{
	'¡': 0xA1, '¢': 0xA2, '£': 0xA3, '¥': 0xA5, '§': 0xA7, '«': 0xAB,
	'°': 0xB0, '±': 0xB1, '²': 0xB2, '³': 0xB3, '×': 0xB4, 'µ': 0xB5,
	'¶': 0xB6, '·': 0xB7, '÷': 0xB8, '»': 0xBB, '¼': 0xBC, '½': 0xBD,
	'¾': 0xBE, '¿': 0xBF,
	'Ω': 0xE0, 'Æ': 0xE1, 'Ð': 0xE2, 'ª': 0xE3, 'Ħ': 0xE4, 'Ĳ': 0xE6,
	'Ŀ': 0xE7, 'Ł': 0xE8, 'Ø': 0xE9, 'Œ': 0xEA, 'º': 0xEB, 'Þ': 0xEC,
	'Ŧ': 0xED, 'Ŋ': 0xEE, 'ŉ': 0xEF, 'ĸ': 0xF0, 'æ': 0xF1, 'đ': 0xF2,
	'ð': 0xF3, 'ħ': 0xF4, 'ı': 0xF5, 'ĳ': 0xF6, 'ŀ': 0xF7, 'ł': 0xF8,
	'ø': 0xF9, 'œ': 0xFA, 'ß': 0xFB, 'þ': 0xFC, 'ŧ': 0xFD, 'ŋ': 0xFE,
	'\u00AD': 0xFF,
}

const replacementChar = '?'

// EncodeIso6937 DVB默认字符表
func EncodeIso6937(s string) []byte {
	out := make([]byte, 0, len(s))

	runes := []rune(norm.NFD.String(s))
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r >= 0x20 && r < 0x7F {
			// 附加符号在基础字母之后，需要换到前面
			if i+1 < len(runes) {
				if d, ok := combining2Iso6937[runes[i+1]]; ok {
					out = append(out, d, byte(r))
					i++
					// 6937每个字母只能带一个附加符号，多余的丢弃
					for i+1 < len(runes) && isCombining(runes[i+1]) {
						i++
					}
					continue
				}
			}
			out = append(out, byte(r))
			continue
		}

		if b, ok := special2Iso6937[r]; ok {
			out = append(out, b)
			continue
		}
		if isCombining(r) {
			// 孤立的组合符号
			continue
		}
		out = append(out, replacementChar)
	}
	return out
}

// isIso6937Diacritic 非间距附加符号，后面必须跟一个基础字母
func isIso6937Diacritic(b byte) bool {
	return b >= 0xC1 && b <= 0xCF
}

func isCombining(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}

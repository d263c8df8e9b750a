// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

// Package textcode DVB SI中文本字段的编码
//
// <EN 300 468> <Annex A> 文本开头的字节用来选择字符表，codepage与前缀的对应关系：
//
//	0      - ISO/IEC 6937，没有前缀
//	1 .. 4 - ISO/IEC 8859-N, 前缀 0x10 0x00 N
//	5 .. 11, 13 .. 15 - ISO/IEC 8859-N, 前缀 N-4
//	21     - UTF-8, 前缀 0x15
package textcode

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	CodepageIso6937 = 0
	CodepageUtf8    = 21
)

var codepage2Charmap = map[uint8]*charmap.Charmap{
	1:  charmap.ISO8859_1,
	2:  charmap.ISO8859_2,
	3:  charmap.ISO8859_3,
	4:  charmap.ISO8859_4,
	5:  charmap.ISO8859_5,
	6:  charmap.ISO8859_6,
	7:  charmap.ISO8859_7,
	8:  charmap.ISO8859_8,
	9:  charmap.ISO8859_9,
	10: charmap.ISO8859_10,
	11: charmap.Windows874, // x/text没有ISO 8859-11，TIS-620的超集，泰文字符位置一致
	13: charmap.ISO8859_13,
	14: charmap.ISO8859_14,
	15: charmap.ISO8859_15,
}

var codepage2Name = map[uint8]string{
	0:  "Latin (ISO 6937)",
	1:  "Western European (ISO 8859-1)",
	2:  "Central European (ISO 8859-2)",
	3:  "South European (ISO 8859-3)",
	4:  "North European (ISO 8859-4)",
	5:  "Cyrillic (ISO 8859-5)",
	6:  "Arabic (ISO 8859-6)",
	7:  "Greek (ISO 8859-7)",
	8:  "Hebrew (ISO 8859-8)",
	9:  "Turkish (ISO 8859-9)",
	10: "Nordic (ISO 8859-10)",
	11: "Thai (ISO 8859-11)",
	13: "Baltic Rim (ISO 8859-13)",
	14: "Celtic (ISO 8859-14)",
	15: "Western European (ISO 8859-15)",
	21: "UTF-8",
}

func IsValidCodepage(codepage int) bool {
	if codepage < 0 || codepage > 0xFF {
		return false
	}
	_, ok := codepage2Name[uint8(codepage)]
	return ok
}

func CodepageName(codepage uint8) string {
	if name, ok := codepage2Name[codepage]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", codepage)
}

// Encode 将s编码为DVB文本，包含字符表选择前缀
//
// 目标字符表无法表示的字符被替换（6937为'?'，8859系列为0x1A），不报错。codepage不合法时按ISO 6937处理，合法性由配置加载时检查
func Encode(s string, codepage uint8) []byte {
	if s == "" {
		return nil
	}

	switch codepage {
	case CodepageIso6937:
		return EncodeIso6937(s)
	case CodepageUtf8:
		return append([]byte{0x15}, s...)
	}

	cm, ok := codepage2Charmap[codepage]
	if !ok {
		return EncodeIso6937(s)
	}

	var out []byte
	if codepage <= 4 {
		out = []byte{0x10, 0x00, codepage}
	} else {
		out = []byte{codepage - 4}
	}

	enc := encoding.ReplaceUnsupported(cm.NewEncoder())
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		// ReplaceUnsupported之后只有非法utf8会走到这里
		return append(out, EncodeIso6937(s)...)
	}
	return append(out, b...)
}

// Truncate 把Encode的结果截断到不超过max字节，不会在字符中间截断
//
// UTF-8退回到字符起始位置，ISO 6937丢弃末尾没有基础字母的附加符号，8859系列是单字节的
func Truncate(b []byte, codepage uint8, max int) []byte {
	if len(b) <= max {
		return b
	}
	n := max
	switch codepage {
	case CodepageUtf8:
		for n > 0 && !utf8.RuneStart(b[n]) {
			n--
		}
	case CodepageIso6937:
		for n > 0 && isIso6937Diacritic(b[n-1]) {
			n--
		}
	}
	return b[:n]
}

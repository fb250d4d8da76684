/*
 * Copyright 2021-2022 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utf16

import (
	"encoding/binary"
	"unicode/utf8"
)

const (
	// 0xd800-0xdc00 encodes the high 10 bits of a pair.
	surr1 = 0xd800
	// 0xdc00-0xe000 encodes the low 10 bits of a pair.
	surr2 = 0xdc00
)

func isHighSurrogate(r rune) bool { return r >= surr1 && r <= 0xdbff }
func isLowSurrogate(r rune) bool  { return r >= surr2 && r <= 0xdfff }

// Decode decodes the UTF16-encoded string to UTF-8 string.
func Decode(p []uint16) string {
	s := make([]byte, 0, 2*len(p))
	for i := 0; i < len(p); i++ {
		var next uint16
		if i+1 < len(p) {
			next = p[i+1]
		}
		r, n := decodeRune(p[i], next, i+1 < len(p))
		i += n
		s = utf8.AppendRune(s, r)
	}
	return string(s)
}

// DecodeBytes decodes the little-endian UTF16 code units stored in the byte slice.
// The trailing odd byte, if any, is ignored.
func DecodeBytes(b []byte) string {
	n := len(b) / 2
	s := make([]byte, 0, 2*n)
	for i := 0; i < n; i++ {
		c := binary.LittleEndian.Uint16(b[i*2:])
		var next uint16
		if i+1 < n {
			next = binary.LittleEndian.Uint16(b[(i+1)*2:])
		}
		r, skip := decodeRune(c, next, i+1 < n)
		i += skip
		s = utf8.AppendRune(s, r)
	}
	return string(s)
}

// decodeRune returns the rune for the code unit c and the number
// of additional code units consumed from the stream.
func decodeRune(c, next uint16, hasNext bool) (rune, int) {
	r1 := rune(c)
	switch {
	case isHighSurrogate(r1):
		if hasNext && isLowSurrogate(rune(next)) {
			return 0x10000 + (r1-surr1)<<10 + (rune(next) - surr2), 1
		}
		return utf8.RuneError, 0
	case isLowSurrogate(r1):
		return utf8.RuneError, 0
	default:
		return r1, 0
	}
}

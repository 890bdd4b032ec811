// This file is part of rpl48x.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package object

// LEB128 is used for every variable-length integer in the encoding: tags,
// object sizes, counts, small unsigned payloads. Seven data bits per byte,
// high bit is the continuation flag. Writers are canonical (no trailing
// 0x80...0x00 padding); readers accept any length.

// ReadUint decodes an unsigned LEB128 value starting at mem[0] and returns
// it along with the number of bytes consumed.
func ReadUint(mem []byte) (value uint64, n int) {
	var shift uint
	for {
		b := mem[n]
		value |= uint64(b&0x7f) << shift
		n++
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return value, n
}

// ReadInt decodes a signed LEB128 value, sign-extending the final byte's
// high data bit.
func ReadInt(mem []byte) (value int64, n int) {
	var result int64
	var shift uint
	var b byte
	for {
		b = mem[n]
		result |= int64(b&0x7f) << shift
		n++
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, n
}

// WriteUint appends the canonical unsigned LEB128 encoding of v to dst and
// returns the extended slice.
func WriteUint(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			dst = append(dst, b|0x80)
			continue
		}
		dst = append(dst, b)
		break
	}
	return dst
}

// WriteInt appends the canonical signed LEB128 encoding of v to dst.
func WriteInt(dst []byte, v int64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBit := b&0x40 != 0
		if (v == 0 && !signBit) || (v == -1 && signBit) {
			dst = append(dst, b)
			break
		}
		dst = append(dst, b|0x80)
	}
	return dst
}

// SizeUint reports the exact number of bytes WriteUint(nil, v) would emit.
func SizeUint(v uint64) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}

// SizeInt reports the exact number of bytes WriteInt(nil, v) would emit.
func SizeInt(v int64) int {
	n := 0
	for {
		n++
		b := byte(v & 0x7f)
		v >>= 7
		signBit := b&0x40 != 0
		if (v == 0 && !signBit) || (v == -1 && signBit) {
			return n
		}
	}
}

// Skip returns the number of bytes occupied by the LEB128 value starting at
// mem[0], without fully decoding it.
func Skip(mem []byte) int {
	n := 0
	for mem[n]&0x80 != 0 {
		n++
	}
	return n + 1
}

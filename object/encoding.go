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

import "github.com/rpl48x/rpl48x/heap"

// Most structural objects (text, symbol, comment, list, array, program,
// block, directory, expression, and the pluggable numeric kernels) share
// one payload shape: tag, LEB128 byte length, then that many raw bytes.
// This is exactly symbol.h's documented layout, generalized to every
// length-prefixed tag.

// lengthPrefixedSize computes size = tagSize + lenFieldSize + length.
func lengthPrefixedSize(m Machine, p heap.Pointer) int {
	mem := m.Heap().Bytes(p)
	tagN := Skip(mem)
	length, lenN := ReadUint(mem[tagN:])
	return tagN + lenN + int(length)
}

// PayloadBytes returns the raw payload of a length-prefixed object at p.
func PayloadBytes(m Machine, p heap.Pointer) []byte {
	mem := m.Heap().Bytes(p)
	tagN := Skip(mem)
	length, lenN := ReadUint(mem[tagN:])
	start := int(p) + tagN + lenN
	return m.Heap().Slice(heap.Pointer(start), heap.Pointer(start)+heap.Pointer(length))
}

// Encode returns the byte encoding of a length-prefixed object with the
// given tag wrapping payload.
func Encode(id ID, payload []byte) []byte {
	dst := make([]byte, 0, RequiredMemory(id, len(payload)))
	dst = WriteHeader(dst, id, len(payload))
	dst = append(dst, payload...)
	return dst
}

func init() {
	lengthPrefixed := []ID{
		Bignum, Decimal, Fraction, Complex,
		Symbol, Expression, List, Array, Text,
		Program, Block, Directory, Comment,
	}
	for _, id := range lengthPrefixed {
		Register(id, Dispatch{Size: lengthPrefixedSize})
	}
}

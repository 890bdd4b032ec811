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

// Integer is the one numeric kernel this core implements directly: a
// signed, machine-word-sized value, tag followed by one signed LEB128
// payload (no explicit length field needed since leb128 is
// self-delimiting). Bignum, Decimal, Fraction and Complex are declared as
// tags with a contract (§1 Non-goals: "numeric kernels are pluggable
// arithmetic modules") but are not given arithmetic here; this module only
// needs them to exist so the evaluator, parser and renderer can name and
// carry their encoded form.

// EncodeInteger returns the byte encoding of an Integer object for v.
func EncodeInteger(v int64) []byte {
	dst := WriteUint(nil, uint64(Integer))
	dst = WriteInt(dst, v)
	return dst
}

// DecodeInteger reads the int64 value of an Integer object at p.
func DecodeInteger(m Machine, p heap.Pointer) int64 {
	mem := m.Heap().Bytes(p)
	tagN := Skip(mem)
	v, _ := ReadInt(mem[tagN:])
	return v
}

func integerSize(m Machine, p heap.Pointer) int {
	mem := m.Heap().Bytes(p)
	tagN := Skip(mem)
	return tagN + Skip(mem[tagN:])
}

func init() {
	Register(Integer, Dispatch{Size: integerSize})
}

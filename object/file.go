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

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// MagicDM42 and MagicDM32 are the two recognised file magics (spec.md
// §6.1): a stored file is a single top-level object, typically a
// directory, prefixed by one of these 4-byte sequences identifying the
// target.
var (
	MagicDM42 = [4]byte{0xDB, 0x48, 0x17, 0x02}
	MagicDM32 = [4]byte{0xDB, 0x50, 0x19, 0x69}
)

// SaveFile writes magic followed by the raw encoded bytes of a single
// top-level object to w. Grounded on vm/mem.go's Save: a bufio.Writer and
// explicit byte-by-byte error checking, generalized from a flat cell image
// to one self-delimiting object.
func SaveFile(w io.Writer, magic [4]byte, encoded []byte) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic[:]); err != nil {
		return errors.Wrap(err, "write magic failed")
	}
	if _, err := bw.Write(encoded); err != nil {
		return errors.Wrap(err, "write object failed")
	}
	return errors.Wrap(bw.Flush(), "flush failed")
}

// LoadFile reads a magic-prefixed object file, returning the magic and the
// raw bytes of the single top-level object. It does not validate that the
// bytes form a well-formed object; callers decode with Size/Type as usual.
func LoadFile(r io.Reader) (magic [4]byte, encoded []byte, err error) {
	br := bufio.NewReader(r)
	if _, err = io.ReadFull(br, magic[:]); err != nil {
		return magic, nil, errors.Wrap(err, "read magic failed")
	}
	if magic != MagicDM42 && magic != MagicDM32 {
		return magic, nil, errors.Errorf("unrecognised object file magic % x", magic)
	}
	encoded, err = io.ReadAll(br)
	if err != nil {
		return magic, nil, errors.Wrap(err, "read object failed")
	}
	return magic, encoded, nil
}

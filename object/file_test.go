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
	"bytes"
	"testing"
)

func TestSaveLoadFileRoundTrip(t *testing.T) {
	encoded := Encode(Symbol, []byte("PI"))
	var buf bytes.Buffer
	if err := SaveFile(&buf, MagicDM42, encoded); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	magic, got, err := LoadFile(&buf)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if magic != MagicDM42 {
		t.Fatalf("magic = % x, want % x", magic, MagicDM42)
	}
	if !bytes.Equal(got, encoded) {
		t.Fatalf("LoadFile payload = % x, want % x", got, encoded)
	}
}

func TestLoadFileRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 0, 1, 2, 3})
	if _, _, err := LoadFile(buf); err == nil {
		t.Fatal("LoadFile with unrecognised magic should fail")
	}
}

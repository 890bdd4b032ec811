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

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rpl48x/rpl48x/heap"
	"github.com/rpl48x/rpl48x/lang"
	"github.com/rpl48x/rpl48x/object"
	"github.com/rpl48x/rpl48x/rtl"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <file>",
	Short: "Parse a source file and print its encoded tag stream",
	Args:  cobra.ExactArgs(1),
	RunE:  runDisasm,
}

func runDisasm(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "read source")
	}

	rt := rtl.New(rtl.HeapSize(heapSize))
	encoded, err := lang.Parse(string(src))
	if err != nil {
		return err
	}
	p, err := rt.Load(encoded)
	if err != nil {
		return err
	}

	disassemble(rt, p, 0)
	return nil
}

// disassemble walks a length-prefixed object's payload one tag at a time,
// printing each sub-object's type, size, and rendered text, recursing
// into containers so nested Programs/Lists/Arrays print indented.
func disassemble(m object.Machine, p heap.Pointer, depth int) {
	ty := object.Type(m, p)
	size := object.Size(m, p)
	fmt.Printf("%s%06d  %-12s size=%-4d %s\n",
		indent(depth), int(p), ty.Name(), size, lang.Render(m, p, object.TargetSymbolic))

	switch ty {
	case object.List, object.Array, object.Block, object.Program, object.Expression:
		payload := object.PayloadBytes(m, p)
		headerLen := size - len(payload)
		cur := p + heap.Pointer(headerLen)
		end := cur + heap.Pointer(len(payload))
		for cur < end {
			disassemble(m, cur, depth+1)
			cur = object.SkipObject(m, cur)
		}
	}
}

func indent(depth int) string {
	b := make([]byte, depth*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

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
	"io"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rpl48x/rpl48x/eval"
	"github.com/rpl48x/rpl48x/lang"
	"github.com/rpl48x/rpl48x/object"
	"github.com/rpl48x/rpl48x/rtl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive read-eval-print loop",
	RunE:  runREPL,
}

func runREPL(cmd *cobra.Command, args []string) error {
	rl, err := readline.New("rpl48> ")
	if err != nil {
		return errors.Wrap(err, "open readline")
	}
	defer rl.Close()

	rt := rtl.New(rtl.HeapSize(heapSize))
	e := eval.New(rt)

	for {
		line, err := rl.Readline()
		switch err {
		case readline.ErrInterrupt:
			continue
		case io.EOF:
			return nil
		case nil:
		default:
			return err
		}
		if line == "" {
			continue
		}
		evalLine(rt, e, line)
	}
}

// evalLine parses and evaluates one line of input, printing either the
// resulting top-of-stack value or the runtime's error message. A parse
// or evaluation failure never aborts the loop: each line stands alone.
func evalLine(rt *rtl.Runtime, e *eval.Evaluator, line string) {
	rt.ClearError()
	encoded, err := lang.Parse(line)
	if err != nil {
		fmt.Println(err)
		return
	}
	p, err := rt.Load(encoded)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := e.Run(p); err != nil {
		fmt.Println(err)
		return
	}
	if rt.Depth() == 0 {
		return
	}
	fmt.Println(lang.Render(rt, rt.Top(), object.TargetDisplay))
}

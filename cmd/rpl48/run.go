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

	"github.com/rpl48x/rpl48x/eval"
	"github.com/rpl48x/rpl48x/lang"
	"github.com/rpl48x/rpl48x/object"
	"github.com/rpl48x/rpl48x/rtl"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Parse and evaluate a source file, printing the final stack",
	Args:  cobra.ExactArgs(1),
	RunE:  runFile,
}

func runFile(cmd *cobra.Command, args []string) error {
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

	e := eval.New(rt)
	if runErr := e.Run(p); runErr != nil {
		return runErr
	}

	for i := rt.Depth() - 1; i >= 0; i-- {
		fmt.Println(lang.Render(rt, rt.StackAt(i), object.TargetDisplay))
	}
	return nil
}

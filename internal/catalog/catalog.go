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

// Package catalog is the built-in command name table the parser consults
// to tell a keyword from a plain symbol. It is deliberately separate from
// object's id/name table: object.ID.Name() gives the canonical spelling
// used for rendering, while catalog additionally maps every accepted
// alias (case-insensitive, plus the symbolic spellings like "+") back to
// its ID for lookup during parsing.
package catalog

import "github.com/rpl48x/rpl48x/object"

var byName map[string]object.ID

func alias(name string, id object.ID) { byName[name] = id }

func init() {
	byName = make(map[string]object.ID)

	for ty := object.ID(0); ty < object.NumIDs; ty++ {
		if n := ty.Name(); n != "" {
			alias(n, ty)
		}
	}

	// Additional accepted spellings beyond the canonical one used for
	// rendering.
	alias("ADD", object.Add)
	alias("SUB", object.Sub)
	alias("MUL", object.Mul)
	alias("DIV", object.Div)
	alias("NEG", object.Sub)
	alias("PGALL", object.PurgeAll)
}

// Lookup resolves name (already upper-cased by the caller) to its ID.
func Lookup(name string) (object.ID, bool) {
	id, ok := byName[name]
	return id, ok
}

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

package lang

import (
	"github.com/rpl48x/rpl48x/internal/catalog"
	"github.com/rpl48x/rpl48x/object"
)

// Lookup resolves an upper-cased identifier to a built-in command ID.
func Lookup(name string) (object.ID, bool) { return catalog.Lookup(name) }

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

package rtl

// AngleMode selects the unit trigonometric functions interpret arguments
// in.
type AngleMode int

// Angle modes, spec.md §10.
const (
	Degrees AngleMode = iota
	Radians
	Grads
)

// Base is the numeric display/entry base.
type Base int

// Supported bases.
const (
	Base10 Base = 10
	Base2  Base = 2
	Base8  Base = 8
	Base16 Base = 16
)

// Settings is the process-wide singleton controlling numeric display,
// angle mode, and entry mode (spec.md §10). It is copied by value for
// Snapshot/Restore, so every field here must itself be a value type.
type Settings struct {
	Angle         AngleMode
	Base          Base
	FixDigits     int
	UseFix        bool
	UseSci        bool
	SciDigits     int
	ThousandsMark bool
	DecimalMark   byte
	Silent        bool // suppresses non-fatal warnings during batch evaluation
}

// DefaultSettings returns the settings a fresh runtime starts with:
// degrees, base 10, standard (non-fixed) display.
func DefaultSettings() Settings {
	return Settings{
		Angle:       Degrees,
		Base:        Base10,
		DecimalMark: '.',
	}
}

// Settings returns the runtime's current settings.
func (r *Runtime) Settings() Settings { return r.settings }

// SetSettings replaces the runtime's settings wholesale.
func (r *Runtime) SetSettings(s Settings) { r.settings = s }

// Snapshot returns a copy of the current settings, to be restored later
// via Restore (spec.md §10's "evaluation may snapshot and restore
// settings around a local scope"). Nothing in this module calls it.
func (r *Runtime) Snapshot() Settings { return r.settings }

// Restore replaces the current settings with a previously taken Snapshot.
func (r *Runtime) Restore(s Settings) { r.settings = s }

// pseudoVariables lists the setting names reported by IsPseudoVariable.
// Store, Recall and Purge do not consult it: storing into 'ANGLE' creates
// an ordinary variable named ANGLE and leaves Settings unchanged.
var pseudoVariables = map[string]bool{
	"ANGLE": true,
	"BASE":  true,
	"FIX":   true,
	"SCI":   true,
}

// IsPseudoVariable reports whether name is reserved as a settings alias.
func IsPseudoVariable(name string) bool { return pseudoVariables[name] }

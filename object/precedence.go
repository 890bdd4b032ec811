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

// Precedence levels for the algebraic sub-parser and renderer. Kept as a
// fixed table rather than computed, exactly as the original design: a
// plain integer comparison decides whether an operand needs parentheses.
const (
	NonePrecedence           = 0
	LowestPrecedence         = 1
	ComplexPrecedence        = 3
	LogicalPrecedence        = 10
	RelationalPrecedence     = 12
	AdditivePrecedence       = 14
	MultiplicativePrecedence = 16
	PowerPrecedence          = 28
	FunctionalPrecedence     = 30
	FunctionPrecedence       = 40
	FunctionPowerPrecedence  = 50
	SymbolPrecedence         = 60
	ParenthesesPrecedence    = 70
)

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

import (
	"testing"

	stderrors "errors"

	"github.com/pkg/errors"
)

func TestFailReplacesPreviousError(t *testing.T) {
	r := New()
	r.Fail(NewTypeError())
	r.Fail(NewValueError())
	if r.LastError().Kind != ValueError {
		t.Fatalf("LastError().Kind = %v, want ValueError", r.LastError().Kind)
	}
}

func TestFailWrapsPlainErrorAsInternal(t *testing.T) {
	r := New()
	r.Fail(stderrors.New("boom"))
	if !r.Failed() {
		t.Fatal("Failed() should be true after Fail")
	}
	if r.LastError().Kind != InternalError {
		t.Fatalf("Kind = %v, want InternalError", r.LastError().Kind)
	}
}

func TestFailPreservesTypedKindThroughWrap(t *testing.T) {
	r := New()
	wrapped := errors.Wrap(NewDimensionError(), "while computing")
	r.Fail(wrapped)
	if r.LastError().Kind != DimensionError {
		t.Fatalf("Kind = %v, want DimensionError", r.LastError().Kind)
	}
}

func TestClearErrorEmptiesSlot(t *testing.T) {
	r := New()
	r.Fail(NewSyntaxError())
	r.ClearError()
	if r.Failed() {
		t.Fatal("Failed() should be false after ClearError")
	}
	if r.LastError() != nil {
		t.Fatal("LastError() should be nil after ClearError")
	}
}

func TestWithSourceAttachesSpan(t *testing.T) {
	err := NewSyntaxError().WithSource("1 +", 2, 3)
	if err.Source != "1 +" || err.Start != 2 || err.End != 3 {
		t.Fatalf("WithSource did not attach span: %+v", err)
	}
}

func TestErrorMessageFallsBackToKindText(t *testing.T) {
	err := NewTypeError()
	if err.Error() != "bad argument type" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "bad argument type")
	}
}

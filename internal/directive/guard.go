// Copyright 2025 EngFlow Inc. All rights reserved.
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

package directive

// guardTracker implements spec.md §4.D's "auto-pragma-once detection": a
// file qualifies when the only file-scope (depth 0) construct is a single
// `#ifndef GUARD` ... `#define GUARD` ... `#endif` span wrapping the whole
// body. Any other file-scope text or directive, in any position,
// disqualifies it.
type guardTracker struct {
	stage int
	name  string
}

const (
	guardStart = iota
	guardInIf
	guardInBody
	guardAfter
	guardDisqualified
)

func newGuardTracker() *guardTracker { return &guardTracker{stage: guardStart} }

// onIfndefPush is called whenever an #ifndef/#if-!defined() test is pushed;
// depthBefore is the if-stack depth before the push. candidate is the tested
// macro name, or "" if the test isn't a simple single-name negative test.
func (g *guardTracker) onIfndefPush(depthBefore int, candidate string) {
	if depthBefore != 0 {
		return
	}
	if g.stage != guardStart || candidate == "" {
		g.stage = guardDisqualified
		return
	}
	g.name = candidate
	g.stage = guardInIf
}

// onOtherPush disqualifies the file for a depth-0 push made while no guard
// candidate is open. No handler calls it: onIfndefPush already disqualifies
// a depth-0 push whose candidate is "".
func (g *guardTracker) onOtherPush(depthBefore int) {
	if depthBefore == 0 && g.stage != guardInIf {
		g.stage = guardDisqualified
	}
}

// onDefine is called for every executed #define; depth is the if-stack
// depth the define occurred at.
func (g *guardTracker) onDefine(name string, depth int) {
	switch {
	case g.stage == guardInIf && depth == 1 && name == g.name:
		g.stage = guardInBody
	case depth == 0:
		g.stage = guardDisqualified
	}
}

// onPop is called after an #endif pop; depthAfter is the resulting depth.
func (g *guardTracker) onPop(depthAfter int) {
	if depthAfter != 0 {
		return
	}
	if g.stage == guardInBody {
		g.stage = guardAfter
	} else if g.stage != guardStart {
		g.stage = guardDisqualified
	}
}

// onFileScopeContent is called for any text line seen while enabled at
// if-stack depth 0.
func (g *guardTracker) onFileScopeContent() {
	g.stage = guardDisqualified
}

// onOtherDirective is called for any directive other than the guard's own
// #ifndef/#define/#endif trio; it only disqualifies when it occurs at
// file scope (depth 0), since directives nested inside the candidate span
// don't affect whether the span wraps the whole file.
func (g *guardTracker) onOtherDirective(depth int) {
	if depth == 0 {
		g.stage = guardDisqualified
	}
}

// result reports the discovered guard name, if the whole file qualified.
func (g *guardTracker) result() (name string, ok bool) {
	return g.name, g.stage == guardAfter
}

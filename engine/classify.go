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

package engine

import "strings"

// classify assigns an ErrKind to a message reported through hooks.Hooks'
// single OnError funnel. internal/directive, internal/expand and
// internal/eval all report through the same method, so the kind has to be
// recovered from the message text rather than from a typed call site; the
// keywords below cover every message those three packages actually produce
// (see handlers.go, expand.go, eval.go).
func classify(msg string) ErrKind {
	switch {
	case strings.Contains(msg, "not found") || strings.Contains(msg, "no include resolver"):
		return ErrIO
	case strings.HasPrefix(msg, `macro "`) || strings.Contains(msg, "arguments to macro") || strings.Contains(msg, "macro invocation"):
		return ErrMacroSemantic
	case strings.Contains(msg, " constant") || strings.Contains(msg, "hex escape") || strings.HasPrefix(msg, "expected '"):
		return ErrEvaluator
	default:
		// Covers every remaining message handlers.go produces: malformed
		// #include, misplaced #elif/#else/#endif, unterminated
		// conditionals, and bad #define/#undef/#line — all directive
		// syntax per spec.md §7.
		return ErrDirectiveSyntax
	}
}

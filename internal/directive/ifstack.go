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

import "github.com/ned14/pcpp/internal/token"

// IfFrame is one entry of the if-stack (spec.md §3 "IfFrame"). Enabled
// already folds in every enclosing frame's state: pushing a frame whose
// surrounding scope is disabled always yields Enabled == false regardless of
// its own condition, so callers only ever need to check the top frame.
type IfFrame struct {
	Enabled     bool
	IfTrigger   bool
	Passthru    bool
	Rewritten   bool
	StartTokens []token.Token
}

// stack is the if-stack of spec.md §3: "sequence of IfFrame, push on
// #if/#ifdef/#ifndef, pop on #endif. Unterminated at EOF is an error."
type stack []IfFrame

func (s stack) top() *IfFrame {
	if len(s) == 0 {
		return nil
	}
	return &s[len(s)-1]
}

// enabled reports whether output is currently permitted.
func (s stack) enabled() bool {
	if f := s.top(); f != nil {
		return f.Enabled
	}
	return true
}

// passthru reports whether the innermost frame is being passed through
// verbatim because its governing expression could not be fully evaluated.
func (s stack) passthru() bool {
	if f := s.top(); f != nil {
		return f.Passthru
	}
	return false
}

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

// Package directive implements the directive processor and if-stack state
// machine of spec.md §4.D: a pull-based line-by-line consumer of the
// trigraph-replaced, line-spliced token stream that executes #define,
// #undef, #if/#ifdef/#ifndef/#elif/#else/#endif, #include[_next], #line,
// #pragma, #error and #warning, delegating to §4.X/§4.E for expression
// evaluation and to the hook surface (§4.H) for everything a host may want
// to override.
package directive

import (
	"iter"
	"regexp"

	"github.com/ned14/pcpp/internal/expand"
	"github.com/ned14/pcpp/internal/hooks"
	"github.com/ned14/pcpp/internal/macro"
	"github.com/ned14/pcpp/internal/token"
)

// IncludeResolver is the slice of the include resolver (spec.md §4.I) the
// directive processor needs. internal/include supplies the real
// implementation; tests may supply a fake.
type IncludeResolver interface {
	// Open searches the combined path order (honoring isSystemInclude and
	// isNext's "#include_next" skip-by-identity rule) and, for the first
	// candidate the file-open hook accepts, returns its resolved path and
	// content. ok is false if every candidate failed.
	Open(fromFile string, isSystemInclude, isNext bool, path string) (resolvedPath string, content []byte, ok bool)
	// Exists reports whether path would resolve, without consulting or
	// mutating the include-once set — used for __has_include.
	Exists(fromFile string, isSystemInclude, isNext bool, path string) bool
	// Once reports whether resolvedPath is already in the include-once set.
	Once(resolvedPath string) bool
	// MarkOnce adds resolvedPath to the include-once set.
	MarkOnce(resolvedPath string)
}

// Processor implements spec.md §4.D.
type Processor struct {
	Macros   *macro.Table
	Expander *expand.Expander
	Hooks    hooks.Hooks
	Includes IncludeResolver

	// NeverDefine lists macro names whose #define/#undef is always passed
	// through unexecuted (CLI -N, spec.md §6).
	NeverDefine map[string]bool
	// PassthruDefines emits #define/#undef verbatim in addition to
	// executing them.
	PassthruDefines bool
	// PassthruUnfoundIncludes emits #include verbatim when the target
	// cannot be found, instead of just reporting an error.
	PassthruUnfoundIncludes bool
	// PassthruUnknownExprs treats every unresolved identifier/call in a
	// #if/#elif expression as partial rather than consulting the hook's
	// default-zero behavior.
	PassthruUnknownExprs bool
	// PassthruIncludes, when non-nil, emits #include verbatim (in addition
	// to processing it) for any path matching the pattern.
	PassthruIncludes *regexp.Regexp
	// DisableAutoPragmaOnce turns off the automatic include-guard
	// detection described in spec.md §4.D.
	DisableAutoPragmaOnce bool
}

func (p *Processor) reportError(pos token.Pos, msg string) {
	if p.Hooks != nil {
		p.Hooks.OnError(pos, msg)
	}
}

// Process consumes one translation unit's already trigraph-replaced,
// line-spliced token stream (file names it for __FILE__/diagnostics) and
// yields the fully directive-processed, macro-expanded output tokens.
func (p *Processor) Process(file string, tokens iter.Seq[token.Token]) iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		next, stop := iter.Pull(tokens)
		defer stop()

		lm := newLineMap()
		guard := newGuardTracker()
		var st stack

		for {
			line, nl, hadNewline, gotAny := readLine(next)
			if !gotAny {
				break
			}
			line = lm.remapAll(line)
			if !p.dispatchLine(yield, file, lm, &st, guard, line) {
				return
			}
			if !hadNewline {
				break
			}
			if !yield(token.New(token.Newline, "\n", lm.remap(nl.Pos))) {
				return
			}
		}

		if len(st) > 0 {
			p.reportError(st.top().StartTokens[0].Pos, "unterminated conditional directive")
		}
		if !p.DisableAutoPragmaOnce {
			if name, ok := guard.result(); ok {
				if p.Hooks != nil {
					p.Hooks.OnPotentialIncludeGuard(name)
				}
				if p.Includes != nil {
					p.Includes.MarkOnce(file)
				}
			}
		}
	}
}

func readLine(next func() (token.Token, bool)) (line []token.Token, nl token.Token, hadNewline, gotAny bool) {
	for {
		t, ok := next()
		if !ok {
			return line, token.Token{}, false, gotAny
		}
		if t.Kind == token.EOF {
			continue
		}
		gotAny = true
		if t.Kind == token.Newline {
			return line, t, true, true
		}
		line = append(line, t)
	}
}

// dispatchLine handles one logical line, returning false if the caller
// should stop (the consumer stopped pulling).
func (p *Processor) dispatchLine(yield func(token.Token) bool, file string, lm *lineMap, st *stack, guard *guardTracker, line []token.Token) bool {
	depth := len(*st)
	hashIdx, nameIdx, name, isDirective := directiveName(line)
	if !isDirective {
		if st.enabled() {
			if depth == 0 && len(trimWS(line)) > 0 {
				guard.onFileScopeContent()
			}
			return p.emitText(yield, line)
		}
		return true
	}
	if name == "" {
		return true // null directive "#\n"
	}

	rest := line[nameIdx+1:]
	pos := line[hashIdx].Pos

	switch name {
	case "if", "ifdef", "ifndef":
		return p.handleIfPush(yield, file, st, guard, pos, name, rest, line, hashIdx, nameIdx)
	case "elif":
		return p.handleElif(yield, file, st, pos, rest, line, hashIdx, nameIdx)
	case "else":
		return p.handleElse(yield, st, pos, line, hashIdx, nameIdx)
	case "endif":
		return p.handleEndif(yield, st, guard, pos, line, hashIdx, nameIdx)
	}

	if !st.enabled() {
		return true // every other directive is inert in a disabled branch
	}

	ifPassthru := st.passthru()
	switch name {
	case "define":
		return p.handleDefineDirective(yield, guard, depth, ifPassthru, pos, rest, line)
	case "undef":
		guard.onOtherDirective(depth)
		return p.handleUndefDirective(yield, ifPassthru, pos, rest, line)
	case "include", "include_next":
		guard.onOtherDirective(depth)
		return p.handleInclude(yield, file, ifPassthru, pos, name == "include_next", rest, line)
	case "line":
		guard.onOtherDirective(depth)
		p.handleLine(lm, pos, rest)
		return p.emit(yield, p.filterComments(line))
	case "pragma":
		guard.onOtherDirective(depth)
		return p.handlePragma(yield, file, ifPassthru, rest, line)
	case "error", "warning":
		guard.onOtherDirective(depth)
		action := hooks.UseDefault
		if p.Hooks != nil {
			action = p.Hooks.OnDirectiveUnknown(name, trimWS(rest), pos, ifPassthru)
		}
		if action == hooks.IgnoreAndPassThrough {
			return p.emit(yield, p.filterComments(line))
		}
		return true
	default:
		guard.onOtherDirective(depth)
		action := hooks.UseDefault
		if p.Hooks != nil {
			action = p.Hooks.OnDirectiveUnknown(name, trimWS(rest), pos, ifPassthru)
		}
		if action == hooks.IgnoreAndRemove {
			return true
		}
		return p.emit(yield, p.filterComments(line))
	}
}

func (p *Processor) emit(yield func(token.Token) bool, toks []token.Token) bool {
	for _, t := range toks {
		if !yield(t) {
			return false
		}
	}
	return true
}

// filterComments turns comment tokens into whitespace unless the hook asks
// to keep them, per spec.md §4.H's "comment-seen" hook.
func (p *Processor) filterComments(line []token.Token) []token.Token {
	out := make([]token.Token, 0, len(line))
	for _, t := range line {
		if t.Kind != token.CommentBlock && t.Kind != token.CommentLine {
			out = append(out, t)
			continue
		}
		keep := false
		if p.Hooks != nil {
			keep = p.Hooks.OnComment(t)
		}
		if keep {
			out = append(out, t)
			continue
		}
		if t.Kind == token.CommentBlock {
			out = append(out, token.New(token.Whitespace, " ", t.Pos))
		}
		// A line comment contributes nothing: the newline already ends it.
	}
	return out
}

func (p *Processor) emitText(yield func(token.Token) bool, line []token.Token) bool {
	toks := p.filterComments(line)
	expanded := p.Expander.Expand(toks, nil)
	return p.emit(yield, expanded)
}

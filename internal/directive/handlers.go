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

import (
	"strconv"
	"strings"

	"github.com/ned14/pcpp/internal/eval"
	"github.com/ned14/pcpp/internal/hooks"
	"github.com/ned14/pcpp/internal/lexer"
	"github.com/ned14/pcpp/internal/macro"
	"github.com/ned14/pcpp/internal/token"
)

// handleIfPush executes #if/#ifdef/#ifndef, pushing one IfFrame. A governing
// expression that can't be fully resolved (an unknown identifier the hooks
// asked to pass through) pushes an enabled, Passthru frame whose line is
// rewritten with the residual expression and copied to the output verbatim.
// Nested lines are then handled as in any enabled branch (text is
// macro-expanded, nested directives execute), and the chain's #elif, #else
// and #endif lines are copied to the output as well.
func (p *Processor) handleIfPush(yield func(token.Token) bool, file string, st *stack, guard *guardTracker, pos token.Pos, kind string, rest []token.Token, line []token.Token, hashIdx, nameIdx int) bool {
	depthBefore := len(*st)
	outerEnabled := st.enabled()

	if kind == "ifdef" || kind == "ifndef" {
		name, hasName := firstIdent(rest)
		if !hasName {
			p.reportError(pos, "#"+kind+": macro name missing")
		}
		candidate := ""
		if kind == "ifndef" {
			candidate = name
		}
		guard.onIfndefPush(depthBefore, candidate)

		frame := IfFrame{StartTokens: line}
		if !outerEnabled {
			frame.Enabled = false
			*st = append(*st, frame)
			return true
		}
		defined, passthrough := p.isDefinedWithHook(name)
		if passthrough {
			frame.Passthru, frame.Rewritten, frame.Enabled = true, true, true
			*st = append(*st, frame)
			residual := []token.Token{token.New(token.Identifier, name, pos)}
			return p.emit(yield, p.reconstruct(line, hashIdx, nameIdx, residual))
		}
		value := defined
		if kind == "ifndef" {
			value = !defined
		}
		frame.Enabled = value
		frame.IfTrigger = value
		*st = append(*st, frame)
		return true
	}

	// kind == "if"
	guard.onIfndefPush(depthBefore, ifNotDefinedCandidate(rest))

	frame := IfFrame{StartTokens: line}
	if !outerEnabled {
		frame.Enabled = false
		*st = append(*st, frame)
		return true
	}
	value, partial, residual := p.evalCondition(file, pos, trimWS(rest))
	if partial {
		frame.Passthru, frame.Rewritten, frame.Enabled = true, true, true
		*st = append(*st, frame)
		return p.emit(yield, p.reconstruct(line, hashIdx, nameIdx, residual))
	}
	frame.Enabled = value
	frame.IfTrigger = value
	*st = append(*st, frame)
	return true
}

// handleElif executes #elif, re-evaluating the governing expression only if
// no earlier branch of this #if chain has already triggered — an already-
// triggered chain skips evaluation entirely so a later #elif's side effects
// (e.g. consuming __COUNTER__) never fire for a branch that can't be taken.
func (p *Processor) handleElif(yield func(token.Token) bool, file string, st *stack, pos token.Pos, rest []token.Token, line []token.Token, hashIdx, nameIdx int) bool {
	top := st.top()
	if top == nil {
		p.reportError(pos, "#elif without #if")
		return true
	}
	if top.Passthru {
		expanded := trimWS(p.Expander.Expand(trimWS(rest), nil))
		return p.emit(yield, p.reconstruct(line, hashIdx, nameIdx, expanded))
	}

	outerEnabled := true
	if len(*st) >= 2 {
		outerEnabled = (*st)[len(*st)-2].Enabled
	}
	if !outerEnabled || top.IfTrigger {
		top.Enabled = false
		return true
	}

	value, partial, residual := p.evalCondition(file, pos, trimWS(rest))
	if partial {
		top.Passthru, top.Rewritten, top.Enabled = true, true, true
		return p.emit(yield, p.reconstruct(line, hashIdx, nameIdx, residual))
	}
	top.Enabled = value
	if value {
		top.IfTrigger = true
	}
	return true
}

// handleElse executes #else.
func (p *Processor) handleElse(yield func(token.Token) bool, st *stack, pos token.Pos, line []token.Token, hashIdx, nameIdx int) bool {
	top := st.top()
	if top == nil {
		p.reportError(pos, "#else without #if")
		return true
	}
	if top.Passthru {
		return p.emit(yield, p.reconstruct(line, hashIdx, nameIdx, nil))
	}
	outerEnabled := true
	if len(*st) >= 2 {
		outerEnabled = (*st)[len(*st)-2].Enabled
	}
	top.Enabled = outerEnabled && !top.IfTrigger
	top.IfTrigger = true
	return true
}

// handleEndif executes #endif, popping the if-stack.
func (p *Processor) handleEndif(yield func(token.Token) bool, st *stack, guard *guardTracker, pos token.Pos, line []token.Token, hashIdx, nameIdx int) bool {
	if len(*st) == 0 {
		p.reportError(pos, "#endif without #if")
		return true
	}
	top := (*st)[len(*st)-1]
	*st = (*st)[:len(*st)-1]
	guard.onPop(len(*st))
	if top.Rewritten {
		return p.emit(yield, p.reconstruct(line, hashIdx, nameIdx, nil))
	}
	return true
}

// handleDefineDirective executes #define, installing a macro in the table
// unless its name is listed in NeverDefine (CLI -N), in which case the
// directive is only ever copied to the output, never executed.
func (p *Processor) handleDefineDirective(yield func(token.Token) bool, guard *guardTracker, depth int, ifPassthru bool, pos token.Pos, rest []token.Token, line []token.Token) bool {
	action := hooks.UseDefault
	if p.Hooks != nil {
		action = p.Hooks.OnDirectiveHandle("define", ifPassthru)
	}
	if action == hooks.IgnoreAndRemove {
		guard.onOtherDirective(depth)
		return true
	}
	if action == hooks.IgnoreAndPassThrough {
		guard.onOtherDirective(depth)
		return p.emit(yield, p.filterComments(line))
	}

	toks := trimWS(rest)
	if len(toks) == 0 || toks[0].Kind != token.Identifier {
		p.reportError(pos, "#define: macro name missing")
		guard.onOtherDirective(depth)
		return true
	}
	name := toks[0].Text
	body := toks[1:]

	var m *macro.Macro
	var err error
	if len(body) > 0 && body[0].Kind == token.Punct && body[0].Text == "(" {
		paramDepth, end := 0, -1
		for i, t := range body {
			if t.Kind == token.Punct && t.Text == "(" {
				paramDepth++
			}
			if t.Kind == token.Punct && t.Text == ")" {
				paramDepth--
				if paramDepth == 0 {
					end = i
					break
				}
			}
		}
		if end < 0 {
			p.reportError(pos, "#define: unterminated parameter list")
			guard.onOtherDirective(depth)
			return true
		}
		params, variadic, perr := macro.ParseParams(body[1:end])
		if perr != nil {
			p.reportError(pos, perr.Error())
			guard.onOtherDirective(depth)
			return true
		}
		m, err = macro.DefineFunction(name, params, variadic, body[end+1:], pos)
	} else {
		m, err = macro.DefineObject(name, body, pos)
	}
	if err != nil {
		p.reportError(pos, err.Error())
		guard.onOtherDirective(depth)
		return true
	}

	neverDefine := p.NeverDefine != nil && p.NeverDefine[name]
	if neverDefine {
		guard.onOtherDirective(depth)
	} else {
		p.Macros.Define(m)
		guard.onDefine(name, depth)
	}
	if p.PassthruDefines || neverDefine {
		return p.emit(yield, p.filterComments(line))
	}
	return true
}

// handleUndefDirective executes #undef.
func (p *Processor) handleUndefDirective(yield func(token.Token) bool, ifPassthru bool, pos token.Pos, rest []token.Token, line []token.Token) bool {
	action := hooks.UseDefault
	if p.Hooks != nil {
		action = p.Hooks.OnDirectiveHandle("undef", ifPassthru)
	}
	if action == hooks.IgnoreAndRemove {
		return true
	}
	if action == hooks.IgnoreAndPassThrough {
		return p.emit(yield, p.filterComments(line))
	}

	toks := trimWS(rest)
	if len(toks) == 0 || toks[0].Kind != token.Identifier {
		p.reportError(pos, "#undef: macro name missing")
		return true
	}
	name := toks[0].Text
	neverDefine := p.NeverDefine != nil && p.NeverDefine[name]
	if !neverDefine {
		p.Macros.Undef(name)
	}
	if p.PassthruDefines || neverDefine {
		return p.emit(yield, p.filterComments(line))
	}
	return true
}

// handleInclude executes #include/#include_next: resolves path through the
// configured IncludeResolver and, on success, recursively runs Process over
// the resolved file's own trigraph-replaced, spliced token stream, feeding
// its output directly into the caller's stream (spec.md §4.I, §4.D).
func (p *Processor) handleInclude(yield func(token.Token) bool, fromFile string, ifPassthru bool, pos token.Pos, isNext bool, rest []token.Token, line []token.Token) bool {
	directive := "include"
	if isNext {
		directive = "include_next"
	}
	action := hooks.UseDefault
	if p.Hooks != nil {
		action = p.Hooks.OnDirectiveHandle(directive, ifPassthru)
	}
	if action == hooks.IgnoreAndRemove {
		return true
	}
	if action == hooks.IgnoreAndPassThrough {
		return p.emit(yield, p.filterComments(line))
	}

	path, isSystem, ok := p.parseIncludePath(rest)
	if !ok {
		p.reportError(pos, "malformed #include")
		if p.Hooks != nil {
			if a := p.Hooks.OnIncludeNotFound(pos, true, false, "", tokensText(trimWS(rest))); a == hooks.IgnoreAndPassThrough {
				return p.emit(yield, p.filterComments(line))
			}
		}
		return true
	}
	if p.Includes == nil {
		p.reportError(pos, "#include: no include resolver configured")
		return true
	}

	passthruAlso := p.PassthruIncludes != nil && p.PassthruIncludes.MatchString(path)
	if passthruAlso {
		if !p.emit(yield, p.filterComments(line)) {
			return false
		}
	}

	resolved, content, found := p.Includes.Open(fromFile, isSystem, isNext, path)
	if !found {
		action := hooks.IgnoreAndPassThrough
		if p.Hooks != nil {
			action = p.Hooks.OnIncludeNotFound(pos, false, isSystem, "", path)
		}
		if action == hooks.IgnoreAndPassThrough && p.PassthruUnfoundIncludes && !passthruAlso {
			return p.emit(yield, p.filterComments(line))
		}
		return true
	}

	if p.Includes.Once(resolved) {
		return true
	}

	toks := lexer.Splice(lexer.New(resolved, lexer.ReplaceTrigraphs(content)).All())
	for t := range p.Process(resolved, toks) {
		if !yield(t) {
			return false
		}
	}
	return true
}

// handleLine executes #line, installing a new line/file override effective
// from the physically next line (spec.md §4.D); the directive's own line
// keeps reporting under the map in effect before this call.
func (p *Processor) handleLine(lm *lineMap, pos token.Pos, rest []token.Token) {
	toks := trimWS(p.Expander.Expand(trimWS(rest), nil))
	if len(toks) == 0 || toks[0].Kind != token.Number {
		p.reportError(pos, "#line: expected a line number")
		return
	}
	n, err := strconv.Atoi(toks[0].Text)
	if err != nil {
		p.reportError(pos, "#line: invalid line number")
		return
	}
	file := ""
	if rest2 := trimWS(toks[1:]); len(rest2) > 0 {
		if rest2[0].Kind != token.String {
			p.reportError(pos, "#line: expected a filename string")
		} else {
			file = strings.Trim(rest2[0].Text, `"`)
		}
	}
	// pos is already remapped; recover its physical line for the anchor.
	physical := lm.anchorPhysical + (pos.Line - lm.anchorEffective)
	lm.setLine(physical+1, n, file)
}

// handlePragma executes #pragma. "#pragma once" marks the current file in
// the include-once set; every other pragma is left for the hook to veto,
// defaulting to pass-through since an unrecognized #pragma's target is
// almost always a later compilation stage, not this preprocessor.
func (p *Processor) handlePragma(yield func(token.Token) bool, file string, ifPassthru bool, rest []token.Token, line []token.Token) bool {
	toks := trimWS(rest)
	if len(toks) == 1 && toks[0].IsIdent("once") {
		if p.Includes != nil {
			p.Includes.MarkOnce(file)
		}
		return true
	}
	action := hooks.UseDefault
	if p.Hooks != nil {
		action = p.Hooks.OnDirectiveHandle("pragma", ifPassthru)
	}
	if action == hooks.IgnoreAndRemove {
		return true
	}
	return p.emit(yield, p.filterComments(line))
}

// evalCondition runs the full #if/#elif pipeline over a not-yet-expanded
// expression: fold defined()/__has_include(), macro-expand what remains,
// then evaluate the constant expression. partial mirrors the hooks'
// pass-through contract; residual is what the caller should copy to the
// output when partial is true.
func (p *Processor) evalCondition(file string, pos token.Pos, expr []token.Token) (value, partial bool, residual []token.Token) {
	folded, definedPartial := eval.FoldDefined(expr, p.isDefinedWithHook)
	folded = p.foldHasInclude(file, folded)
	expanded := p.Expander.Expand(folded, nil)

	ev := &eval.Evaluator{
		Identifier: func(name string) (eval.Value, bool) {
			if p.PassthruUnknownExprs {
				return eval.Value{}, true
			}
			if p.Hooks == nil {
				return eval.Int(0), false
			}
			return p.Hooks.OnUnknownMacroInExpr(name)
		},
		Function: func(name string, args []eval.Value) (eval.Value, bool) {
			if p.PassthruUnknownExprs {
				return eval.Value{}, true
			}
			if p.Hooks == nil {
				return eval.Int(0), false
			}
			fn, passthrough := p.Hooks.OnUnknownMacroFunctionInExpr(name)
			if passthrough || fn == nil {
				return eval.Value{}, true
			}
			return fn(args), false
		},
		Errors: hookErrors{p},
	}
	res := ev.Evaluate(expanded)
	if definedPartial || res.Partial {
		return false, true, expanded
	}
	return !res.Value.IsZero(), false, nil
}

// hookErrors adapts Processor.Hooks to eval.ErrorReporter and
// expand.ErrorReporter, both of which declare the identical single-method
// shape as hooks.Hooks' OnError.
type hookErrors struct{ p *Processor }

func (h hookErrors) OnError(pos token.Pos, msg string) { h.p.reportError(pos, msg) }

// isDefinedWithHook resolves one `defined`/`#ifdef`/`#ifndef` operand,
// consulting the unknown-macro-in-defined hook when name has no table entry.
func (p *Processor) isDefinedWithHook(name string) (defined, passthrough bool) {
	if p.Macros.IsDefined(name) {
		return true, false
	}
	if p.Hooks == nil {
		return false, false
	}
	d, action := p.Hooks.OnUnknownMacroInDefined(name)
	return d, action == hooks.IgnoreAndPassThrough
}

// reconstruct rebuilds a directive line's leading "#KEYWORD" from the
// original line's tokens, followed by residual (used to emit a governing
// expression that could not be fully evaluated, in its macro-expanded but
// not constant-folded form).
func (p *Processor) reconstruct(line []token.Token, hashIdx, nameIdx int, residual []token.Token) []token.Token {
	out := make([]token.Token, 0, len(residual)+2)
	out = append(out, line[hashIdx], line[nameIdx])
	if len(residual) > 0 {
		out = append(out, token.New(token.Whitespace, " ", line[nameIdx].Pos))
		out = append(out, residual...)
	}
	return out
}

// parseIncludePath resolves a #include/#include_next operand: a directly
// quoted or angle-bracketed header name is taken literally; anything else
// is macro-expanded first and the result re-parsed the same way (spec.md
// §4.D, §4.I).
func (p *Processor) parseIncludePath(rest []token.Token) (path string, isSystem bool, ok bool) {
	toks := trimWS(rest)
	if len(toks) == 0 {
		return "", false, false
	}
	if toks[0].Kind == token.String || (toks[0].Kind == token.Punct && toks[0].Text == "<") {
		path, isSystem, end, pok := parseHeaderName(toks, 0)
		if !pok || skipWS(toks, end) != len(toks) {
			return "", false, false
		}
		return path, isSystem, true
	}
	expanded := trimWS(p.Expander.Expand(toks, nil))
	if len(expanded) == 0 {
		return "", false, false
	}
	path, isSystem, end, pok := parseHeaderName(expanded, 0)
	if !pok || skipWS(expanded, end) != len(expanded) {
		return "", false, false
	}
	return path, isSystem, true
}

// firstIdent reports the leading identifier of toks (after trimming
// surrounding whitespace), as required for a valid #ifdef/#ifndef operand.
// Trailing junk after the name is tolerated here; it surfaces as ordinary
// unexpanded text if present, matching common preprocessor leniency.
func firstIdent(toks []token.Token) (name string, ok bool) {
	t := trimWS(toks)
	if len(t) == 0 || t[0].Kind != token.Identifier {
		return "", false
	}
	return t[0].Text, true
}

// ifNotDefinedCandidate reports the tested macro name if toks is exactly
// "! defined NAME" or "! defined ( NAME )", the #if-spelled equivalent of
// #ifndef that auto-pragma-once detection also recognizes (spec.md §4.D).
func ifNotDefinedCandidate(toks []token.Token) string {
	t := trimWS(toks)
	if len(t) == 0 || t[0].Kind != token.Punct || t[0].Text != "!" {
		return ""
	}
	t = trimWS(t[1:])
	if len(t) == 0 || !t[0].IsIdent("defined") {
		return ""
	}
	t = trimWS(t[1:])
	paren := len(t) > 0 && t[0].Kind == token.Punct && t[0].Text == "("
	if paren {
		t = trimWS(t[1:])
	}
	if len(t) == 0 || t[0].Kind != token.Identifier {
		return ""
	}
	name := t[0].Text
	t = trimWS(t[1:])
	if paren {
		if len(t) != 1 || t[0].Kind != token.Punct || t[0].Text != ")" {
			return ""
		}
	} else if len(t) != 0 {
		return ""
	}
	return name
}

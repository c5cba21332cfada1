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

// Package engine wires the lexer/splicer, macro table, expander, evaluator,
// directive processor, include resolver, hook surface and writer into the
// single root-facing API described by spec.md §1's "library plus thin
// command-line front-end" and the data-flow diagram in §2.
package engine

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"regexp"
	"time"

	"github.com/ned14/pcpp/internal/directive"
	"github.com/ned14/pcpp/internal/expand"
	"github.com/ned14/pcpp/internal/hooks"
	"github.com/ned14/pcpp/internal/include"
	"github.com/ned14/pcpp/internal/ioenc"
	"github.com/ned14/pcpp/internal/lexer"
	"github.com/ned14/pcpp/internal/macro"
	"github.com/ned14/pcpp/internal/plog"
	"github.com/ned14/pcpp/internal/token"
	"github.com/ned14/pcpp/internal/writer"
)

// stdin is read when Preprocess is called with path "-"; a package variable
// so tests can substitute it.
var stdin io.Reader = os.Stdin

// Engine is a single, non-re-entrant preprocessing instance (spec.md §5: "a
// single engine instance is not re-entrant"). Every piece of mutable state
// named in §9's "Global state" note — the macro table, the if-stack, the
// include-once set, the counter — is owned exclusively by one Engine.
type Engine struct {
	cfg Config

	macros   *macro.Table
	expander *expand.Expander
	includes *include.Resolver
	proc     *directive.Processor
	hk       hooks.Hooks
	log      *plog.Logger
	counter  int

	errs []*PPError
}

// NewEngine builds an Engine from cfg, installing -D/-U predefines before
// any input is read and wiring the hook surface so that every recoverable
// fault (spec.md §7: "the core never aborts") is both reported through
// cfg.Hooks and accumulated as a *PPError for the caller to inspect after
// Run/Preprocess returns.
func NewEngine(cfg Config) *Engine {
	e := &Engine{cfg: cfg}

	e.log = plog.New(cfg.Stderr)
	e.log.Debug = cfg.Debug

	base := cfg.Hooks
	if base == nil {
		base = &hooks.DefaultHooks{Stderr: cfg.Stderr, PassthruComments: cfg.PassthruComments}
	}
	e.hk = &engineHooks{Hooks: base, e: e}

	e.macros = macro.NewTable(cfg.EnableCounter, cfg.EnablePCPP)
	for _, d := range cfg.Defines {
		val := d.Val
		if val == "" {
			val = "1"
		}
		body := lexer.Splice(lexer.New("<command-line>", []byte(val)).All())
		var toks []token.Token
		for t := range body {
			if t.Kind == token.EOF {
				break
			}
			toks = append(toks, t)
		}
		m, err := macro.DefineObject(d.Name, toks, token.Pos{File: "<command-line>"})
		if err != nil {
			e.recordError(ErrMacroSemantic, token.Pos{File: "<command-line>"}, err.Error())
			continue
		}
		e.macros.Define(m)
	}
	for _, name := range cfg.Undefines {
		e.macros.Undef(name)
	}

	never := make(map[string]bool, len(cfg.NeverDefine))
	for _, n := range cfg.NeverDefine {
		never[n] = true
	}

	e.includes = include.New(e.hk, cfg.IncludePaths)
	e.includes.ExcludeGlobs = cfg.ExcludeGlobs

	now := time.Now()
	e.expander = &expand.Expander{
		Table: e.macros,
		Builtins: expand.Builtins{
			Date:        now.Format("Jan _2 2006"),
			Time:        now.Format("15:04:05"),
			Counter:     &e.counter,
			PCPPVersion: "1",
		},
		Options: expand.Options{IdentifierAdjacencySpace: !cfg.DisableIdentifierAdjacencySpace},
		Errors:  hookErrorAdapter{e.hk},
	}

	var passthruIncludes *regexp.Regexp
	if cfg.PassthruIncludes != "" {
		if re, err := regexp.Compile(cfg.PassthruIncludes); err == nil {
			passthruIncludes = re
		} else {
			e.recordError(ErrDirectiveSyntax, token.Pos{}, "invalid --passthru-includes pattern: "+err.Error())
		}
	}

	e.proc = &directive.Processor{
		Macros:                  e.macros,
		Expander:                e.expander,
		Hooks:                   e.hk,
		Includes:                e.includes,
		NeverDefine:             never,
		PassthruDefines:         cfg.PassthruDefines,
		PassthruUnfoundIncludes: cfg.PassthruUnfoundIncludes,
		PassthruUnknownExprs:    cfg.PassthruUnknownExprs,
		PassthruIncludes:        passthruIncludes,
		DisableAutoPragmaOnce:   cfg.DisableAutoPragmaOnce,
	}

	return e
}

// Errors returns every fault accumulated since the Engine was created, in
// report order.
func (e *Engine) Errors() []*PPError { return e.errs }

// ReturnCode mirrors spec.md §6's CLI contract: "the count of #error
// occurrences encountered", since #warning never contributes.
func (e *Engine) ReturnCode() int {
	n := 0
	for _, err := range e.errs {
		if err.Kind == ErrUser {
			n++
		}
	}
	return n
}

func (e *Engine) recordError(kind ErrKind, pos token.Pos, msg string) {
	e.errs = append(e.errs, newPPError(kind, pos, msg))
}

// tokenize runs L+T (lexing, trigraph replacement and line splicing) over
// src, attributing tokens to file.
func tokenize(file string, src []byte) iter.Seq[token.Token] {
	return lexer.Splice(lexer.New(file, lexer.ReplaceTrigraphs(src)).All())
}

// stripEOF drops the lexer's terminal EOF sentinel, which the directive
// processor never expects to see as an ordinary token.
func stripEOF(toks iter.Seq[token.Token]) iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for t := range toks {
			if t.Kind == token.EOF {
				return
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Tokens returns the fully preprocessed output token stream for one
// translation unit read from src (already decoded to UTF-8 by the caller if
// needed), without writing it anywhere — the pull-based generator described
// in spec.md §5, exposed for callers that want tokens rather than text.
func (e *Engine) Tokens(ctx context.Context, file string, src []byte) iter.Seq[token.Token] {
	raw := stripEOF(tokenize(file, src))
	processed := e.proc.Process(file, raw)
	return func(yield func(token.Token) bool) {
		for t := range processed {
			if err := ctx.Err(); err != nil {
				return
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Preprocess reads path (via the configured file-open hook, honoring
// --assume-input-encoding), fully preprocesses it, serializes the result
// through internal/writer (honoring --output-encoding), and returns it as an
// io.Reader.
func (e *Engine) Preprocess(ctx context.Context, path string) (io.Reader, error) {
	var content []byte
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			e.recordError(ErrIO, token.Pos{File: path}, err.Error())
			return nil, newPPError(ErrIO, token.Pos{File: path}, err.Error())
		}
		content = data
	} else {
		data, ok, err := e.hk.OnFileOpen(token.Pos{}, false, path)
		if err != nil {
			e.recordError(ErrIO, token.Pos{File: path}, err.Error())
			return nil, &PPError{Kind: ErrIO, Pos: token.Pos{File: path}, Err: err}
		}
		if !ok {
			msg := fmt.Sprintf("could not open %q", path)
			e.recordError(ErrIO, token.Pos{File: path}, msg)
			return nil, newPPError(ErrIO, token.Pos{File: path}, msg)
		}
		content = data
	}

	if e.cfg.InputEncoding != nil {
		decoded, err := ioenc.Decode(content, e.cfg.InputEncoding)
		if err != nil {
			e.recordError(ErrIO, token.Pos{File: path}, err.Error())
			return nil, newPPError(ErrIO, token.Pos{File: path}, err.Error())
		}
		content = decoded
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(e.run(ctx, path, content, pw))
	}()
	return pr, nil
}

// Run preprocesses a single translation unit already held in memory (file
// names it for __FILE__ and diagnostics) and writes the serialized result to
// out.
func (e *Engine) Run(ctx context.Context, file string, src []byte, out io.Writer) error {
	return e.run(ctx, file, src, out)
}

func (e *Engine) run(ctx context.Context, file string, src []byte, out io.Writer) error {
	start := time.Now()

	w := writer.New()
	w.BlankLineThreshold = e.cfg.blankLineThreshold()
	w.Compress = e.cfg.compressWriter()
	if e.cfg.HaveLineDirectivePrefix {
		w.LineDirectivePrefix = e.cfg.LineDirectivePrefix
	}

	sink := out
	if e.cfg.OutputEncoding != nil {
		sink = ioenc.EncodingWriter(out, e.cfg.OutputEncoding)
	}

	if err := w.Write(sink, e.Tokens(ctx, file, src)); err != nil {
		e.recordError(ErrIO, token.Pos{File: file}, err.Error())
		return newPPError(ErrIO, token.Pos{File: file}, err.Error())
	}

	if e.cfg.Time {
		errOut := e.cfg.Stderr
		if errOut == nil {
			errOut = os.Stderr
		}
		fmt.Fprintf(errOut, "preprocessed %s in %s\n", file, time.Since(start))
	}
	return nil
}

// engineHooks wraps the configured Hooks to additionally accumulate every
// reported fault as a classified *PPError (see classify), without changing
// any hook's decision.
type engineHooks struct {
	hooks.Hooks
	e *Engine
}

func (h *engineHooks) OnError(pos token.Pos, msg string) {
	h.e.recordError(classify(msg), pos, msg)
	h.Hooks.OnError(pos, msg)
}

func (h *engineHooks) OnDirectiveUnknown(directive string, toks []token.Token, pos token.Pos, ifPassthru bool) hooks.Action {
	if directive == "error" {
		h.e.recordError(ErrUser, pos, directive)
	}
	return h.Hooks.OnDirectiveUnknown(directive, toks, pos, ifPassthru)
}

func (h *engineHooks) OnIncludeNotFound(pos token.Pos, isMalformed, isSystemInclude bool, curDir, path string) hooks.Action {
	if !isMalformed {
		h.e.recordError(ErrIO, pos, fmt.Sprintf("include file %q not found", path))
	}
	return h.Hooks.OnIncludeNotFound(pos, isMalformed, isSystemInclude, curDir, path)
}

// hookErrorAdapter lets expand.Expander (which declares its own single-method
// ErrorReporter rather than importing the hooks package) report through the
// same engineHooks funnel.
type hookErrorAdapter struct{ h hooks.Hooks }

func (a hookErrorAdapter) OnError(pos token.Pos, msg string) { a.h.OnError(pos, msg) }

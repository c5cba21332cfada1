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

// Package writer implements the token-stream serializer of spec.md §4.W: it
// drives the pull-based engine one output token at a time, regrouping them
// into logical lines, emitting #line markers, and collapsing whitespace.
package writer

import (
	"bufio"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/ned14/pcpp/internal/token"
)

// Writer serializes an engine's output token stream back to text.
type Writer struct {
	// LineDirectivePrefix is written before the line number ("#line" by
	// default). Empty disables line-marker emission entirely.
	LineDirectivePrefix string
	// BlankLineThreshold is how many consecutive blank source lines are
	// reproduced as literal newlines before a line marker is emitted
	// instead (default 6, matching the original's hard-coded threshold).
	BlankLineThreshold int
	// Compress, when true, discards blank lines entirely instead of
	// reproducing or bridging them with a marker ("aggressive" mode,
	// spec.md §4.W).
	Compress bool
	// RewritePath, when non-nil, transforms a token's source path before
	// it is written into a #line marker, letting a caller make emitted
	// paths reproducible across build directories (spec.md §4.W). Nil
	// leaves paths unchanged.
	RewritePath func(path string) string
}

// New returns a Writer with the spec's stated defaults.
func New() *Writer {
	return &Writer{LineDirectivePrefix: "#line", BlankLineThreshold: 6}
}

func (w *Writer) threshold() int {
	if w.BlankLineThreshold > 0 {
		return w.BlankLineThreshold
	}
	return 6
}

func (w *Writer) rewritePath(path string) string {
	if w.RewritePath == nil {
		return path
	}
	return w.RewritePath(path)
}

// Write consumes tokens and writes the serialized text to out.
func (w *Writer) Write(out io.Writer, tokens iter.Seq[token.Token]) error {
	bw := bufio.NewWriter(out)

	var (
		blankLines int
		haveLast   bool
		lastFile   string
	)

	flushLine := func(line []token.Token) error {
		if allWhitespace(line) {
			blankLines += countNewlines(line)
			return nil
		}

		first := firstReal(line)
		isFirstLine := !haveLast
		fileChanged := haveLast && first.Pos.File != lastFile
		haveLast = true
		lastFile = first.Pos.File

		emitMarker := w.LineDirectivePrefix != "" &&
			(isFirstLine || fileChanged || (!w.Compress && blankLines > w.threshold()))

		if !w.Compress && !emitMarker {
			for i := 0; i < blankLines; i++ {
				if _, err := bw.WriteString("\n"); err != nil {
					return err
				}
			}
		}
		// Aggressive (Compress) mode discards blank lines outright instead
		// of reproducing or bridging them with a marker.
		blankLines = 0

		if emitMarker {
			marker := w.LineDirectivePrefix + " " + strconv.Itoa(first.Pos.Line)
			if first.Pos.File != "" {
				marker += " " + strconv.Quote(w.rewritePath(first.Pos.File))
			}
			if _, err := bw.WriteString(marker + "\n"); err != nil {
				return err
			}
		}

		if _, err := bw.WriteString(collapseWhitespace(line)); err != nil {
			return err
		}
		return nil
	}

	var line []token.Token
	for t := range tokens {
		if t.Kind == token.LineContinue {
			// Never expected this late in the pipeline (internal/lexer's
			// Splice already removed these); dropped defensively rather
			// than written, per spec.md §4.W.
			continue
		}
		line = append(line, t)
		if t.Kind == token.Newline {
			if err := flushLine(line); err != nil {
				return err
			}
			line = line[:0]
		}
	}
	if len(line) > 0 {
		if err := flushLine(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func allWhitespace(line []token.Token) bool {
	for _, t := range line {
		if !t.IsWhitespaceLike() && t.Kind != token.Newline {
			return false
		}
	}
	return true
}

func countNewlines(line []token.Token) int {
	n := 0
	for _, t := range line {
		n += strings.Count(t.Text, "\n")
	}
	if n == 0 {
		n = 1 // a content-free line with no explicit Newline token (EOF tail)
	}
	return n
}

func firstReal(line []token.Token) token.Token {
	for _, t := range line {
		if !t.IsWhitespaceLike() {
			return t
		}
	}
	if len(line) > 0 {
		return line[0]
	}
	return token.Token{}
}

// collapseWhitespace renders line's text, preserving leading indentation
// exactly and collapsing every interior run of whitespace-like tokens
// (whitespace, comments already turned to whitespace upstream, and any
// stray line-continuation) into a single space (spec.md §4.W).
func collapseWhitespace(line []token.Token) string {
	var b strings.Builder
	atStart := true
	inRun := false
	for _, t := range line {
		if t.Kind == token.LineContinue {
			continue
		}
		if t.IsWhitespaceLike() {
			if atStart {
				b.WriteString(t.Text)
				continue
			}
			if !inRun {
				b.WriteString(" ")
				inRun = true
			}
			continue
		}
		atStart = false
		inRun = false
		b.WriteString(t.Text)
	}
	return b.String()
}

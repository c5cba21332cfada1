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

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run preprocesses src as file and returns the serialized output with line
// markers disabled, so assertions can compare collapsed text directly.
func run(t *testing.T, cfg Config, file, src string) (string, *Engine) {
	t.Helper()
	cfg.HaveLineDirectivePrefix = true
	cfg.LineDirectivePrefix = ""
	if cfg.Stderr == nil {
		cfg.Stderr = &bytes.Buffer{}
	}
	e := NewEngine(cfg)
	var buf bytes.Buffer
	err := e.Run(context.Background(), file, []byte(src), &buf)
	require.NoError(t, err)
	return buf.String(), e
}

func collapse(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// Scenario 1: re-scan and self-masking, C11 §6.10.3.5's canonical example.
func TestEndToEnd_RescanAndSelfMasking(t *testing.T) {
	src := `#define x 3
#define f(a) f(x * (a))
#undef x
#define x 2
#define g f
#define z z[0]
#define h g(~
#define m(a) a(w)
#define w 0,1
#define t(a) a
#define p() int
#define q(x) x
#define r(x,y) x ## y
#define str(x) # x
f(y+1) + f(f(z)) % t(t(g)(0) + t)(1);
`
	out, _ := run(t, Config{}, "t.c", src)
	assert.Contains(t, collapse(out), "f(2 * (y+1)) + f(2 * (f(2 * (z[0])))) % f(2 * (0)) + t(1);")
}

// Scenario 2: stringize and token-paste mixed in nested macros.
func TestEndToEnd_StringizeAndPasteMixed(t *testing.T) {
	src := `#define hash_hash # ## #
#define mkstr(a) # a
#define in_between(a) mkstr(a)
#define join(c, d) in_between(c hash_hash d)
char p[] = join(x, y);
`
	out, _ := run(t, Config{}, "t.c", src)
	assert.Contains(t, collapse(out), `char p[] = "x ## y";`)
}

// Scenario 3: GNU ",##__VA_ARGS__" swallows the leading comma when the
// variadic argument list is empty.
func TestEndToEnd_SwallowCommaVariadic(t *testing.T) {
	src := "#define LOG(fmt, ...) printf(fmt, ##__VA_ARGS__)\n" +
		"LOG(\"hi\");\n" +
		"LOG(\"%d\", 42);\n"
	out, _ := run(t, Config{}, "t.c", src)
	assert.Contains(t, out, `printf("hi");`)
	assert.Contains(t, out, `printf("%d", 42);`)
}

// Scenario 4: with --passthru-unknown-exprs and no FOO defined, an #if that
// can't be fully evaluated is preserved verbatim along with its branches.
func TestEndToEnd_ConditionalPassthrough(t *testing.T) {
	src := "#if FOO + 1\nA\n#else\nB\n#endif\n"
	out, _ := run(t, Config{PassthruUnknownExprs: true}, "t.c", src)
	assert.Contains(t, out, "#if")
	assert.Contains(t, out, "FOO")
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "#else")
	assert.Contains(t, out, "B")
	assert.Contains(t, out, "#endif")
}

// Scenario 5: a header with a manual #ifndef/#define guard is auto-detected
// as an include guard, so a second #include of it contributes nothing.
func TestEndToEnd_AutoIncludeGuard(t *testing.T) {
	dir := t.TempDir()
	header := filepath.Join(dir, "g.h")
	require.NoError(t, os.WriteFile(header, []byte("#ifndef G_H\n#define G_H\nint x;\n#endif\n"), 0o644))

	src := "#include \"g.h\"\n#include \"g.h\"\n"
	main := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(main, []byte(src), 0o644))

	out, _ := run(t, Config{}, main, src)
	assert.Equal(t, 1, strings.Count(out, "int x;"))
}

// Scenario 6: __has_include/__has_include_next fold to 1/0 against the
// configured search path.
func TestEndToEnd_HasInclude(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "variant.h"), []byte("\n"), 0o644))

	main := filepath.Join(dir, "main.c")
	src := "#if __has_include(<variant.h>) && !__has_include(<no_such.h>)\nOK\n#endif\n"
	require.NoError(t, os.WriteFile(main, []byte(src), 0o644))

	out, _ := run(t, Config{IncludePaths: []string{dir}}, main, src)
	assert.Contains(t, out, "OK")
}

// Token provenance: a macro-expanded token reports the position of the
// outermost invoking token, not the macro definition's.
func TestInvariant_TokenProvenance(t *testing.T) {
	src := "#define A B\n" +
		"#define B 1\n" +
		"A\n"
	out, e := run(t, Config{}, "t.c", src)
	assert.Contains(t, out, "1")

	found := false
	for tok := range e.Tokens(context.Background(), "t.c", []byte(src)) {
		if tok.Text == "1" {
			found = true
			assert.Equal(t, 3, tok.Pos.Line)
		}
	}
	assert.True(t, found)
}

// No self-recursion: #define A A expands to the single unchanged token A.
func TestInvariant_NoSelfRecursion(t *testing.T) {
	src := "#define A A\nA\n"
	out, _ := run(t, Config{}, "t.c", src)
	assert.Equal(t, "A", collapse(out))
}

// Idempotent include-once: processing a #pragma once file twice in the same
// translation unit yields the same content as processing it once.
func TestInvariant_IdempotentIncludeOnce(t *testing.T) {
	dir := t.TempDir()
	header := filepath.Join(dir, "h.h")
	require.NoError(t, os.WriteFile(header, []byte("#pragma once\nint y;\n"), 0o644))

	once := "#include \"h.h\"\n"
	twice := "#include \"h.h\"\n#include \"h.h\"\n"

	main1 := filepath.Join(dir, "once.c")
	require.NoError(t, os.WriteFile(main1, []byte(once), 0o644))
	out1, _ := run(t, Config{}, main1, once)

	main2 := filepath.Join(dir, "twice.c")
	require.NoError(t, os.WriteFile(main2, []byte(twice), 0o644))
	out2, _ := run(t, Config{}, main2, twice)

	assert.Equal(t, collapse(out1), collapse(out2))
}

// Round-trip of trivially preprocessed input: no directives, no macros, the
// output's token texts match the input up to whitespace normalization.
func TestInvariant_RoundTripTrivialInput(t *testing.T) {
	src := "int main(void) { return 0; }\n"
	out, _ := run(t, Config{}, "t.c", src)
	assert.Equal(t, collapse(src), collapse(out))
}

// Evaluator width: the default evaluation width treats -1 as unsigned when
// compared against an unsigned literal, and 64-bit wraparound holds. -1's
// bit pattern reinterpreted unsigned is 2^64-1, which is >= 0, so the
// comparison is true (see DESIGN.md's Open Question decision on this).
func TestInvariant_EvaluatorWidth(t *testing.T) {
	src := "#if -1 >= 0U\nA\n#else\nB\n#endif\n" +
		"#if 18446744073709551615 == -1\nC\n#else\nD\n#endif\n"
	out, _ := run(t, Config{}, "t.c", src)
	assert.Contains(t, out, "A")
	assert.NotContains(t, out, "B")
	assert.Contains(t, out, "C")
	assert.NotContains(t, out, "D")
}

// Partial monotonicity: --passthru-unknown-exprs only ever adds preserved
// directives relative to the default, never changes a fully-evaluated one.
func TestInvariant_PartialMonotonicity(t *testing.T) {
	src := "#if 1\nA\n#else\nB\n#endif\n"
	defOut, _ := run(t, Config{}, "t.c", src)
	passOut, _ := run(t, Config{PassthruUnknownExprs: true}, "t.c", src)
	assert.Equal(t, collapse(defOut), collapse(passOut))
}

// Errors accumulated through the hook funnel are classified per spec.md §7.
func TestErrors_ClassifiedByKind(t *testing.T) {
	src := "#include \"missing.h\"\n" +
		"#if 1 +\nA\n#endif\n" +
		"#error boom\n"
	_, e := run(t, Config{}, "t.c", src)
	require.NotEmpty(t, e.Errors())

	var kinds []ErrKind
	for _, err := range e.Errors() {
		kinds = append(kinds, err.Kind)
	}
	assert.Contains(t, kinds, ErrIO)
	assert.Contains(t, kinds, ErrUser)
	assert.Equal(t, 1, e.ReturnCode())
}

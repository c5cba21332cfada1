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

package include

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ned14/pcpp/internal/hooks"
	"github.com/ned14/pcpp/internal/token"
)

// fakeOpenHooks is an in-memory stand-in for the file-open hook: it serves
// content from a map keyed by absolute path instead of touching the real
// filesystem.
type fakeOpenHooks struct {
	hooks.DefaultHooks
	files map[string]string
}

func (f *fakeOpenHooks) OnFileOpen(pos token.Pos, isSystemInclude bool, path string) ([]byte, bool, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, false, nil
	}
	return []byte(data), true, nil
}

func newFakeOpenHooks(files map[string]string) *fakeOpenHooks {
	return &fakeOpenHooks{files: files}
}

func TestOpen_SearchesIncluderDirectoryFirst(t *testing.T) {
	h := newFakeOpenHooks(map[string]string{
		filepath.Join("/src", "foo.h"): "FROM_SRC\n",
		filepath.Join("/usr", "foo.h"): "FROM_USR\n",
	})
	r := New(h, []string{"/usr"})
	resolved, content, ok := r.Open("/src/main.c", false, false, "foo.h")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/src", "foo.h"), resolved)
	assert.Equal(t, "FROM_SRC\n", string(content))
}

func TestOpen_FallsBackToUserPath(t *testing.T) {
	h := newFakeOpenHooks(map[string]string{
		filepath.Join("/usr", "foo.h"): "FROM_USR\n",
	})
	r := New(h, []string{"/usr"})
	resolved, content, ok := r.Open("/src/main.c", false, false, "foo.h")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/usr", "foo.h"), resolved)
	assert.Equal(t, "FROM_USR\n", string(content))
}

func TestOpen_NotFound(t *testing.T) {
	h := newFakeOpenHooks(nil)
	r := New(h, []string{"/usr"})
	_, _, ok := r.Open("/src/main.c", false, false, "missing.h")
	assert.False(t, ok)
}

func TestOpen_IncludeNextSkipsPastCurrentFile(t *testing.T) {
	h := newFakeOpenHooks(map[string]string{
		filepath.Join("/a", "foo.h"): "FROM_A\n",
		filepath.Join("/b", "foo.h"): "FROM_B\n",
		filepath.Join("/c", "foo.h"): "FROM_C\n",
	})
	r := New(h, []string{"/a", "/b", "/c"})

	resolved, _, ok := r.Open("/x/includer.c", false, false, "foo.h")
	require.True(t, ok)
	require.Equal(t, filepath.Join("/a", "foo.h"), resolved)

	// A #include_next from within the file found in /a continues the search
	// one slot past the index /a/foo.h was found at (1). For this file the
	// combined order is [/a, /a, /b, /c], so the search resumes at /b.
	resolved2, content2, ok2 := r.Open(resolved, false, true, "foo.h")
	require.True(t, ok2)
	assert.Equal(t, filepath.Join("/b", "foo.h"), resolved2)
	assert.Equal(t, "FROM_B\n", string(content2))
}

func TestExists_DoesNotPerturbIncludeNextSkipPoint(t *testing.T) {
	h := newFakeOpenHooks(map[string]string{
		filepath.Join("/a", "foo.h"): "FROM_A\n",
		filepath.Join("/b", "foo.h"): "FROM_B\n",
	})
	r := New(h, []string{"/a", "/b"})

	resolved, _, ok := r.Open("/x/includer.c", false, false, "foo.h")
	require.True(t, ok)

	assert.True(t, r.Exists(resolved, false, true, "foo.h"))

	resolved2, _, ok2 := r.Open(resolved, false, true, "foo.h")
	require.True(t, ok2)
	assert.Equal(t, filepath.Join("/b", "foo.h"), resolved2)
}

func TestOnceSet(t *testing.T) {
	r := New(newFakeOpenHooks(nil), nil)
	assert.False(t, r.Once("/a/foo.h"))
	r.MarkOnce("/a/foo.h")
	assert.True(t, r.Once("/a/foo.h"))
}

func TestOpen_ExcludeGlobSkipsCandidate(t *testing.T) {
	h := newFakeOpenHooks(map[string]string{
		filepath.Join("/vendor", "foo.h"): "FROM_VENDOR\n",
		filepath.Join("/real", "foo.h"):   "FROM_REAL\n",
	})
	r := New(h, []string{"/vendor", "/real"})
	r.ExcludeGlobs = []string{"/vendor/**"}
	resolved, content, ok := r.Open("/x/main.c", false, false, "foo.h")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/real", "foo.h"), resolved)
	assert.Equal(t, "FROM_REAL\n", string(content))
}

func TestOpen_AbsolutePathIgnoresSearchOrder(t *testing.T) {
	h := newFakeOpenHooks(map[string]string{
		filepath.Join("/abs", "foo.h"): "ABS\n",
	})
	r := New(h, []string{"/elsewhere"})
	resolved, content, ok := r.Open("/x/main.c", true, false, filepath.Join("/abs", "foo.h"))
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/abs", "foo.h"), resolved)
	assert.Equal(t, "ABS\n", string(content))
}

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

package plog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarnf_WritesWarningLine(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Warnf("macro %s redefined", "FOO")
	assert.Contains(t, buf.String(), "warning: macro FOO redefined")
}

func TestDebugf_SilentByDefault(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Debugf("trace %d", 1)
	assert.Empty(t, buf.String())
}

func TestDebugf_EmitsWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Debug = true
	l.Debugf("trace %d", 1)
	assert.Contains(t, buf.String(), "debug: trace 1")
}

func TestErrorf_WritesErrorLine(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Errorf("could not open %s", "foo.h")
	assert.Contains(t, buf.String(), "error: could not open foo.h")
}

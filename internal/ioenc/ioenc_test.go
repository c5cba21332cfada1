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

package ioenc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

func TestLookup_EmptyNameIsIdentity(t *testing.T) {
	enc, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, encoding.Nop, enc)
}

func TestLookup_UnknownNameErrors(t *testing.T) {
	_, err := Lookup("not-a-real-charset")
	assert.Error(t, err)
}

func TestLookup_KnownAliasResolves(t *testing.T) {
	enc, err := Lookup("ISO-8859-1")
	require.NoError(t, err)
	assert.NotNil(t, enc)
}

func TestDecode_Latin1ToUTF8(t *testing.T) {
	// 0xe9 in ISO-8859-1 is U+00E9 (é).
	out, err := Decode([]byte{0xe9}, charmap.ISO8859_1)
	require.NoError(t, err)
	assert.Equal(t, "é", string(out))
}

func TestDecode_NilEncodingIsNoop(t *testing.T) {
	out, err := Decode([]byte("hello"), nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestEncodingWriter_RoundTripsThroughLatin1(t *testing.T) {
	var buf bytes.Buffer
	w := EncodingWriter(&buf, charmap.ISO8859_1)
	_, err := w.Write([]byte("é"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xe9}, buf.Bytes())
}

func TestDetectBOM_UTF8(t *testing.T) {
	enc, n := DetectBOM([]byte{0xef, 0xbb, 0xbf, 'x'})
	assert.Equal(t, 3, n)
	assert.Equal(t, encoding.Nop, enc)
}

func TestDetectBOM_None(t *testing.T) {
	enc, n := DetectBOM([]byte("plain text"))
	assert.Equal(t, 0, n)
	assert.Nil(t, enc)
}

func TestDetectBOM_UTF16LE(t *testing.T) {
	enc, n := DetectBOM([]byte{0xff, 0xfe, 'x', 0x00})
	assert.Equal(t, 2, n)
	assert.NotNil(t, enc)
}

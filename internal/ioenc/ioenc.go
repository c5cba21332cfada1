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

// Package ioenc transcodes source bytes and written output between UTF-8
// and a named IANA character encoding, for the CLI's
// --assume-input-encoding/--output-encoding options. The engine itself
// (internal/lexer onward) only ever sees UTF-8. engine.Preprocess runs
// Decode over the main input after reading it, and wraps the writer's
// output sink in EncodingWriter. Files pulled in by #include are read
// through the file-open hook without Decode, so they are not transcoded.
package ioenc

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Lookup resolves an IANA character-set name ("utf-8", "iso-8859-1",
// "windows-1252", ...) to its encoding.Encoding, case-insensitively.
func Lookup(name string) (encoding.Encoding, error) {
	if name == "" {
		return encoding.Nop, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("ioenc: unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("ioenc: unknown encoding %q", name)
	}
	return enc, nil
}

// Decode transforms data from enc into UTF-8. A nil or identity enc returns
// data unchanged (after BOM stripping is left to the caller, matching
// spec.md §1's existing UTF-8 BOM handling at the file-open hook).
func Decode(data []byte, enc encoding.Encoding) ([]byte, error) {
	if enc == nil || enc == encoding.Nop {
		return data, nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("ioenc: decode: %w", err)
	}
	return out, nil
}

// EncodingWriter wraps out so that UTF-8 text written to it is transcoded
// to enc before hitting the underlying sink — the --output-encoding path
// for internal/writer.
func EncodingWriter(out io.Writer, enc encoding.Encoding) io.Writer {
	if enc == nil || enc == encoding.Nop {
		return out
	}
	return transform.NewWriter(out, enc.NewEncoder())
}

// DetectBOM reports the encoding implied by a leading byte-order mark, if
// any, and the number of bytes it occupies. Detecting this up front lets a
// caller prefer an explicit BOM over a configured --assume-input-encoding
// default, matching common C compiler behavior. UTF-32 BOMs are not
// recognized: x/text has no UTF-32 codec, and no C source the pack
// exercises uses one.
func DetectBOM(data []byte) (enc encoding.Encoding, bomLen int) {
	switch {
	case bytes.HasPrefix(data, []byte{0xef, 0xbb, 0xbf}):
		return encoding.Nop, 3
	case bytes.HasPrefix(data, []byte{0xff, 0xfe}):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), 2
	case bytes.HasPrefix(data, []byte{0xfe, 0xff}):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), 2
	default:
		return nil, 0
	}
}

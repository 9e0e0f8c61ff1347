// Copyright 2025 walteh LLC
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

package archive

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ❌ ErrTemplate marks a malformed template string. It is fatal at startup:
// a template that cannot compile would fail for every file identically.
var ErrTemplate = errors.New("invalid template")

// 🏷️ DefaultTemplate is the archive layout used when the user supplies none
const DefaultTemplate = "%Y/%m/%Y-%m-%d-%H%M%S-$s"

// 🔤 tokenKind discriminates the closed set of template token variants
type tokenKind int

const (
	tokenLiteral tokenKind = iota // verbatim text, including '/' separators
	tokenTime                     // '%' + one strftime directive letter
	tokenTag                      // '$' + one of s, S, n, w
)

// 🧩 token is one element of a compiled template
type token struct {
	kind      tokenKind
	text      string // literal text, set for tokenLiteral
	directive byte   // directive or tag letter, set otherwise
}

// 📋 Template is a compiled archive path template. Compiled once per run and
// read-only afterwards, so it is safe to share across concurrent workers.
type Template struct {
	raw    string
	tokens []token
}

// 📝 Compile parses a template string into an ordered token sequence.
//
// The scan is a single left-to-right pass with one character of look-ahead:
// '%' consumes the next character as a time directive, '$' consumes the next
// character as a custom tag when it is one of s, S, n or w and otherwise
// decays to the two literal characters (tolerating shell-unescaped input).
// A trailing '%' or '$' with nothing after it is an error.
func Compile(template string) (*Template, error) {
	var tokens []token
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{kind: tokenLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(template); i++ {
		switch c := template[i]; c {
		case '%':
			if i+1 >= len(template) {
				return nil, errors.Errorf("%w: dangling '%%' at end of %q", ErrTemplate, template)
			}
			i++
			flush()
			tokens = append(tokens, token{kind: tokenTime, directive: template[i]})
		case '$':
			if i+1 >= len(template) {
				return nil, errors.Errorf("%w: dangling '$' at end of %q", ErrTemplate, template)
			}
			i++
			switch next := template[i]; next {
			case 's', 'S', 'n', 'w':
				flush()
				tokens = append(tokens, token{kind: tokenTag, directive: next})
			default:
				lit.WriteByte('$')
				lit.WriteByte(next)
			}
		default:
			lit.WriteByte(c)
		}
	}
	flush()

	return &Template{raw: template, tokens: tokens}, nil
}

// 📝 String returns the original template string
func (t *Template) String() string {
	return t.raw
}

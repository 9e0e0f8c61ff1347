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
	"fmt"
	"strings"
	"time"

	"github.com/embear/fitarchiver/pkg/fit"
	"gitlab.com/tozd/go/errors"
)

// ❌ ErrRender marks metadata that cannot be rendered (per-file, skip-and-continue)
var ErrRender = errors.New("cannot render template")

// 🖨️ Render expands the compiled template against one file's metadata and
// returns the destination path relative to the archive base directory.
// Literal tokens pass through verbatim, time directives format the activity
// timestamp, custom tags substitute the sanitized metadata field.
func (t *Template) Render(meta fit.Metadata) (string, error) {
	// The extractor guarantees a timestamp, but a zero value would silently
	// file everything under 0001/01, so check anyway.
	if meta.Timestamp.IsZero() {
		return "", errors.Errorf("%w: activity has no timestamp", ErrRender)
	}

	var b strings.Builder
	for _, tok := range t.tokens {
		switch tok.kind {
		case tokenLiteral:
			b.WriteString(tok.text)
		case tokenTime:
			b.WriteString(formatDirective(meta.Timestamp, tok.directive))
		case tokenTag:
			b.WriteString(sanitize(tagValue(meta, tok.directive)))
		}
	}
	return b.String(), nil
}

// 🏷️ tagValue maps a custom tag letter to its metadata field
func tagValue(meta fit.Metadata, tag byte) string {
	var v string
	switch tag {
	case 's':
		v = meta.Sport
	case 'S':
		v = meta.SubSport
	case 'n':
		v = meta.SportName
	case 'w':
		v = meta.WorkoutName
	}
	if v == "" {
		return fit.Unknown
	}
	return v
}

// 🧹 sanitize replaces path separators and control characters in a
// substituted value with underscores, so a tag expansion can never add a
// path segment or traverse directories.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r < 0x20 || r == 0x7f {
			return '_'
		}
		return r
	}, s)
}

// 🕰️ formatDirective formats ts with a single strftime-style directive.
// Unrecognized directives pass through as literal text rather than failing,
// matching the permissive compile step.
func formatDirective(ts time.Time, directive byte) string {
	switch directive {
	case 'Y':
		return ts.Format("2006")
	case 'y':
		return ts.Format("06")
	case 'C':
		return fmt.Sprintf("%02d", ts.Year()/100)
	case 'm':
		return ts.Format("01")
	case 'd':
		return ts.Format("02")
	case 'e':
		return ts.Format("_2")
	case 'j':
		return fmt.Sprintf("%03d", ts.YearDay())
	case 'H':
		return ts.Format("15")
	case 'I':
		return ts.Format("03")
	case 'M':
		return ts.Format("04")
	case 'S':
		return ts.Format("05")
	case 'p':
		return ts.Format("PM")
	case 'P':
		return ts.Format("pm")
	case 'a':
		return ts.Format("Mon")
	case 'A':
		return ts.Format("Monday")
	case 'b', 'h':
		return ts.Format("Jan")
	case 'B':
		return ts.Format("January")
	case 'u':
		// ISO weekday, Monday=1 .. Sunday=7
		wd := int(ts.Weekday())
		if wd == 0 {
			wd = 7
		}
		return fmt.Sprintf("%d", wd)
	case 'w':
		return fmt.Sprintf("%d", int(ts.Weekday()))
	case 'G':
		year, _ := ts.ISOWeek()
		return fmt.Sprintf("%04d", year)
	case 'V':
		_, week := ts.ISOWeek()
		return fmt.Sprintf("%02d", week)
	case 's':
		return fmt.Sprintf("%d", ts.Unix())
	case 'F':
		return ts.Format("2006-01-02")
	case 'T':
		return ts.Format("15:04:05")
	case 'R':
		return ts.Format("15:04")
	case 'D':
		return ts.Format("01/02/06")
	case '%':
		return "%"
	default:
		return "%" + string(directive)
	}
}

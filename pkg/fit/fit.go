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

// Package fit extracts archiving metadata from FIT activity files
package fit

import (
	"context"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Unknown is the fallback value for every metadata field the file does not carry
const Unknown = "unknown"

// ❌ ErrDecode marks files that cannot be read or are not valid FIT files
var ErrDecode = errors.New("not a decodable FIT file")

// 📦 Metadata is the activity information extracted from a single FIT file.
// Timestamp is required for archiving; the string fields default to Unknown.
type Metadata struct {
	Timestamp   time.Time // UTC activity start (FileId.time_created)
	Sport       string    // sport type, e.g. "running"
	SubSport    string    // sport subtype, e.g. "trail"
	SportName   string    // activity name started on the device, e.g. "trail_run"
	WorkoutName string    // workout name, e.g. "temporun_8km"
}

// 🏭 NewMetadata returns a metadata record with all fields set to their fallbacks
func NewMetadata() Metadata {
	return Metadata{
		Sport:       Unknown,
		SubSport:    Unknown,
		SportName:   Unknown,
		WorkoutName: Unknown,
	}
}

// 🎯 Extractor produces activity metadata for a file path
type Extractor interface {
	// Extract decodes the file at path and returns its metadata
	Extract(ctx context.Context, path string) (Metadata, error)
}

// 🧹 normalize converts a raw FIT string field into a path-friendly value:
// trimmed, lowercased, spaces replaced with underscores.
func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// 🚴 buildSport collapses the sport values of all Sport messages into one
// value. A single message keeps its sport; a multisport activity becomes
// "multisport_" plus the sports joined in message order.
func buildSport(sports []string) string {
	switch len(sports) {
	case 0:
		return Unknown
	case 1:
		return sports[0]
	default:
		return "multisport_" + strings.Join(sports, "_")
	}
}

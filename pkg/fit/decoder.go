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

package fit

import (
	"context"
	"os"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/profile/untyped/mesgnum"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📼 Decoder extracts metadata from FIT files on disk
type Decoder struct{}

// 🏭 NewDecoder creates a new FIT file decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// 📥 Extract decodes the FIT file at path and collects the archiving metadata.
// Only FileId, Sport and Workout messages are inspected; everything else
// (records, laps, sensor data) is ignored.
func (d *Decoder) Extract(ctx context.Context, path string) (Metadata, error) {
	logger := zerolog.Ctx(ctx)

	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, errors.Errorf("%w: opening %s: %w", ErrDecode, path, err)
	}
	defer f.Close()

	fitFile, err := decoder.New(f).Decode()
	if err != nil {
		return Metadata{}, errors.Errorf("%w: parsing %s: %w", ErrDecode, path, err)
	}

	meta := NewMetadata()
	var sports []string

	for i := range fitFile.Messages {
		mesg := &fitFile.Messages[i]
		switch mesg.Num {
		case mesgnum.FileId:
			fileID := mesgdef.NewFileId(mesg)
			if !fileID.TimeCreated.IsZero() {
				meta.Timestamp = fileID.TimeCreated.UTC()
			}
		case mesgnum.Sport:
			sport := mesgdef.NewSport(mesg)
			if sport.Name != "" {
				meta.SportName = normalize(sport.Name)
			}
			if sport.Sport != typedef.SportInvalid {
				sports = append(sports, normalize(sport.Sport.String()))
			}
			if sport.SubSport != typedef.SubSportInvalid {
				meta.SubSport = normalize(sport.SubSport.String())
			}
		case mesgnum.Workout:
			workout := mesgdef.NewWorkout(mesg)
			if workout.WktName != "" {
				meta.WorkoutName = normalize(workout.WktName)
			}
		}
	}

	meta.Sport = buildSport(sports)

	logger.Debug().
		Str("path", path).
		Time("timestamp", meta.Timestamp).
		Str("sport", meta.Sport).
		Str("sub_sport", meta.SubSport).
		Str("sport_name", meta.SportName).
		Str("workout_name", meta.WorkoutName).
		Msg("extracted activity metadata")

	return meta, nil
}

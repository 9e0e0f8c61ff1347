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

package archive_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/embear/fitarchiver/pkg/archive"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 🧪 writeFile creates a file with the given content, creating parents
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// 🧪 testCtx returns a context carrying a test logger
func testCtx(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

// 🧪 TestPlaceCopy tests that copy mode archives the file and keeps the source
func TestPlaceCopy(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "activity.fit")
	dst := filepath.Join(tmpDir, "archive", "2023", "06", "activity.fit")
	writeFile(t, src, "fit data")

	placer := &archive.Placer{MaxSuffix: 100}
	outcome := placer.Place(testCtx(t), src, dst)

	require.Equal(t, archive.StatusCopied, outcome.Status)
	assert.Equal(t, dst, outcome.Destination)

	// source is untouched, destination is byte-identical
	srcContent, err := os.ReadFile(src)
	require.NoError(t, err)
	dstContent, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, srcContent, dstContent)
}

// 🧪 TestPlaceMove tests that move mode removes the source only after the
// destination exists
func TestPlaceMove(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "activity.fit")
	dst := filepath.Join(tmpDir, "archive", "activity.fit")
	writeFile(t, src, "fit data")

	placer := &archive.Placer{Move: true, MaxSuffix: 100}
	outcome := placer.Place(testCtx(t), src, dst)

	require.Equal(t, archive.StatusMoved, outcome.Status)
	assert.NoFileExists(t, src)

	dstContent, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "fit data", string(dstContent))
}

// 🧪 TestPlaceMoveUnreadableSource tests that a missing source is a
// per-file failure, not a crash
func TestPlaceMoveUnreadableSource(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "missing.fit")
	dst := filepath.Join(tmpDir, "archive", "missing.fit")

	placer := &archive.Placer{Move: true, MaxSuffix: 100}
	outcome := placer.Place(testCtx(t), src, dst)

	require.Equal(t, archive.StatusFailed, outcome.Status)
	assert.NoFileExists(t, dst)
}

// 🧪 TestPlaceDryRun tests that dry-run performs no filesystem mutation
func TestPlaceDryRun(t *testing.T) {
	tests := []struct {
		name string
		move bool
		want archive.Status
	}{
		{name: "would_copy", move: false, want: archive.StatusWouldCopy},
		{name: "would_move", move: true, want: archive.StatusWouldMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			src := filepath.Join(tmpDir, "activity.fit")
			dst := filepath.Join(tmpDir, "archive", "activity.fit")
			writeFile(t, src, "fit data")

			placer := &archive.Placer{Move: tt.move, DryRun: true, MaxSuffix: 100}
			outcome := placer.Place(testCtx(t), src, dst)

			require.Equal(t, tt.want, outcome.Status)
			assert.Equal(t, dst, outcome.Destination)
			assert.FileExists(t, src)
			assert.NoFileExists(t, dst)
			assert.NoDirExists(t, filepath.Join(tmpDir, "archive"))
		})
	}
}

// 🧪 TestPlaceDryRunCollision tests that dry-run reports the
// collision-resolved name without touching anything
func TestPlaceDryRunCollision(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "activity.fit")
	dst := filepath.Join(tmpDir, "archive", "activity.fit")
	writeFile(t, src, "fit data")
	writeFile(t, dst, "different data")

	placer := &archive.Placer{DryRun: true, MaxSuffix: 100}
	outcome := placer.Place(testCtx(t), src, dst)

	require.Equal(t, archive.StatusWouldCopy, outcome.Status)
	assert.Equal(t, filepath.Join(tmpDir, "archive", "activity-1.fit"), outcome.Destination)

	// the colliding file is untouched and nothing new appeared
	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "different data", string(content))
	assert.NoFileExists(t, outcome.Destination)
}

// 🧪 TestPlaceDuplicate tests that re-archiving identical content is an
// idempotent skip
func TestPlaceDuplicate(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "activity.fit")
	dst := filepath.Join(tmpDir, "archive", "activity.fit")
	writeFile(t, src, "fit data")
	writeFile(t, dst, "fit data")

	placer := &archive.Placer{MaxSuffix: 100}
	outcome := placer.Place(testCtx(t), src, dst)

	require.Equal(t, archive.StatusSkipped, outcome.Status)
	assert.Equal(t, "duplicate", outcome.Reason)
	assert.FileExists(t, src)

	// no suffixed copy appeared
	assert.NoFileExists(t, filepath.Join(tmpDir, "archive", "activity-1.fit"))
}

// 🧪 TestPlaceDuplicateMove tests that move mode removes the source of a
// duplicate, since its content is already archived
func TestPlaceDuplicateMove(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "activity.fit")
	dst := filepath.Join(tmpDir, "archive", "activity.fit")
	writeFile(t, src, "fit data")
	writeFile(t, dst, "fit data")

	placer := &archive.Placer{Move: true, MaxSuffix: 100}
	outcome := placer.Place(testCtx(t), src, dst)

	require.Equal(t, archive.StatusSkipped, outcome.Status)
	assert.Equal(t, "duplicate", outcome.Reason)
	assert.NoFileExists(t, src)
	assert.FileExists(t, dst)
}

// 🧪 TestPlaceMoveOntoItself tests that moving a file onto its own
// archive location never removes it
func TestPlaceMoveOntoItself(t *testing.T) {
	tmpDir := t.TempDir()
	dst := filepath.Join(tmpDir, "archive", "activity.fit")
	writeFile(t, dst, "fit data")

	placer := &archive.Placer{Move: true, MaxSuffix: 100}
	outcome := placer.Place(testCtx(t), dst, dst)

	require.Equal(t, archive.StatusSkipped, outcome.Status)
	assert.Equal(t, "duplicate", outcome.Reason)

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "fit data", string(content))
}

// 🧪 TestPlaceMoveHardLinkedDuplicate tests that a source hard-linked to
// the destination is left alone instead of being unlinked
func TestPlaceMoveHardLinkedDuplicate(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "activity.fit")
	dst := filepath.Join(tmpDir, "archive", "activity.fit")
	writeFile(t, src, "fit data")
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.Link(src, dst))

	placer := &archive.Placer{Move: true, MaxSuffix: 100}
	outcome := placer.Place(testCtx(t), src, dst)

	require.Equal(t, archive.StatusSkipped, outcome.Status)
	assert.Equal(t, "duplicate", outcome.Reason)
	assert.FileExists(t, src)
	assert.FileExists(t, dst)
}

// 🧪 TestPlaceCollisionSuffix tests that differing content gets a numeric
// suffix instead of overwriting
func TestPlaceCollisionSuffix(t *testing.T) {
	tmpDir := t.TempDir()
	dst := filepath.Join(tmpDir, "archive", "activity.fit")

	srcA := filepath.Join(tmpDir, "a.fit")
	srcB := filepath.Join(tmpDir, "b.fit")
	srcC := filepath.Join(tmpDir, "c.fit")
	writeFile(t, srcA, "content A")
	writeFile(t, srcB, "content B")
	writeFile(t, srcC, "content C")

	placer := &archive.Placer{MaxSuffix: 100}

	outcome := placer.Place(testCtx(t), srcA, dst)
	require.Equal(t, archive.StatusCopied, outcome.Status)
	assert.Equal(t, dst, outcome.Destination)

	outcome = placer.Place(testCtx(t), srcB, dst)
	require.Equal(t, archive.StatusCopied, outcome.Status)
	assert.Equal(t, filepath.Join(tmpDir, "archive", "activity-1.fit"), outcome.Destination)

	outcome = placer.Place(testCtx(t), srcC, dst)
	require.Equal(t, archive.StatusCopied, outcome.Status)
	assert.Equal(t, filepath.Join(tmpDir, "archive", "activity-2.fit"), outcome.Destination)

	// all three are recoverable afterwards
	for path, want := range map[string]string{
		dst: "content A",
		filepath.Join(tmpDir, "archive", "activity-1.fit"): "content B",
		filepath.Join(tmpDir, "archive", "activity-2.fit"): "content C",
	} {
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, string(content))
	}
}

// 🧪 TestPlaceCollisionExhausted tests the bounded retry ceiling
func TestPlaceCollisionExhausted(t *testing.T) {
	tmpDir := t.TempDir()
	dst := filepath.Join(tmpDir, "archive", "activity.fit")
	src := filepath.Join(tmpDir, "src.fit")
	writeFile(t, src, "new content")

	writeFile(t, dst, "existing 0")
	writeFile(t, filepath.Join(tmpDir, "archive", "activity-1.fit"), "existing 1")
	writeFile(t, filepath.Join(tmpDir, "archive", "activity-2.fit"), "existing 2")

	placer := &archive.Placer{MaxSuffix: 2}
	outcome := placer.Place(testCtx(t), src, dst)

	require.Equal(t, archive.StatusFailed, outcome.Status)
	assert.Equal(t, "collision-exhausted", outcome.Reason)
	assert.FileExists(t, src)
}

// 🧪 TestPlaceIdempotentRerun tests that running the same placement twice
// skips on the second run and does not duplicate
func TestPlaceIdempotentRerun(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "activity.fit")
	dst := filepath.Join(tmpDir, "archive", "activity.fit")
	writeFile(t, src, "fit data")

	placer := &archive.Placer{MaxSuffix: 100}

	outcome := placer.Place(testCtx(t), src, dst)
	require.Equal(t, archive.StatusCopied, outcome.Status)

	outcome = placer.Place(testCtx(t), src, dst)
	require.Equal(t, archive.StatusSkipped, outcome.Status)
	assert.Equal(t, "duplicate", outcome.Reason)
}

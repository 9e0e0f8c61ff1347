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
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 Status is the result class of placing one file
type Status int

const (
	StatusUnknown   Status = iota
	StatusCopied           // file copied to the archive
	StatusMoved            // file moved to the archive
	StatusWouldCopy        // dry-run, file would be copied
	StatusWouldMove        // dry-run, file would be moved
	StatusSkipped          // nothing to do, e.g. already archived
	StatusFailed           // per-file failure, batch continues
)

// String returns a string representation of Status
func (s Status) String() string {
	switch s {
	case StatusCopied:
		return "copied"
	case StatusMoved:
		return "moved"
	case StatusWouldCopy:
		return "would copy"
	case StatusWouldMove:
		return "would move"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 Outcome describes what happened to one file
type Outcome struct {
	Status      Status // result class
	Destination string // resolved destination path (collision suffix applied)
	Reason      string // informational reason for skipped/failed outcomes
}

// 🚚 Placer performs the filesystem action for one resolved destination.
// Move selects move over copy, DryRun suppresses every mutation regardless
// of the selected operation.
type Placer struct {
	Move      bool
	DryRun    bool
	MaxSuffix int // collision suffix ceiling, > 0
}

// 📍 Place copies or moves src to dst, resolving destination collisions.
//
// An existing destination is never overwritten: byte-identical content is a
// duplicate skip (move mode still removes the source, its bytes are already
// archived), differing content gets a numeric suffix before the extension
// and the check repeats against the suffixed candidate. Existence checks are
// advisory only; the authoritative check is the O_EXCL create, so a create
// lost to a concurrent worker is treated as a fresh collision.
func (p *Placer) Place(ctx context.Context, src, dst string) Outcome {
	logger := zerolog.Ctx(ctx)

	for n := 0; n <= p.MaxSuffix; n++ {
		candidate := suffixed(dst, n)

		info, err := os.Lstat(candidate)
		switch {
		case err == nil && info.Mode().IsRegular():
			same, err := sameContent(src, candidate)
			if err != nil {
				return Outcome{Status: StatusFailed, Destination: candidate, Reason: err.Error()}
			}
			if !same {
				continue // genuine collision, try the next suffix
			}
			if p.Move && !p.DryRun {
				srcInfo, err := os.Stat(src)
				if err != nil {
					return Outcome{Status: StatusFailed, Destination: candidate, Reason: fmt.Sprintf("stat source: %v", err)}
				}
				// src may BE the candidate (re-running move over an already
				// archived tree, or a hard link); removing it would destroy
				// the only copy.
				if !os.SameFile(srcInfo, info) {
					if err := os.Remove(src); err != nil {
						return Outcome{Status: StatusFailed, Destination: candidate, Reason: fmt.Sprintf("removing source: %v", err)}
					}
				}
			}
			return Outcome{Status: StatusSkipped, Destination: candidate, Reason: "duplicate"}
		case err == nil:
			// something non-regular (directory, symlink) sits there
			continue
		case !errors.Is(err, fs.ErrNotExist):
			return Outcome{Status: StatusFailed, Destination: candidate, Reason: err.Error()}
		}

		if p.DryRun {
			st := StatusWouldCopy
			if p.Move {
				st = StatusWouldMove
			}
			return Outcome{Status: st, Destination: candidate}
		}

		if err := os.MkdirAll(filepath.Dir(candidate), 0o755); err != nil {
			return Outcome{Status: StatusFailed, Destination: candidate, Reason: fmt.Sprintf("creating archive directory: %v", err)}
		}

		if p.Move {
			// Hard link + remove is an atomic move on the same filesystem and
			// fails with EEXIST instead of clobbering on a race.
			if err := os.Link(src, candidate); err == nil {
				if err := os.Remove(src); err != nil {
					return Outcome{Status: StatusFailed, Destination: candidate, Reason: fmt.Sprintf("removing source: %v", err)}
				}
				return Outcome{Status: StatusMoved, Destination: candidate}
			} else if errors.Is(err, fs.ErrExist) {
				logger.Debug().Str("destination", candidate).Msg("lost placement race, retrying with next suffix")
				continue
			}
			// cross-device or unsupported, fall back to copy + remove
		}

		err = copyFileVerified(src, candidate)
		switch {
		case errors.Is(err, fs.ErrExist):
			logger.Debug().Str("destination", candidate).Msg("lost placement race, retrying with next suffix")
			continue
		case err != nil:
			return Outcome{Status: StatusFailed, Destination: candidate, Reason: err.Error()}
		}

		if p.Move {
			if err := os.Remove(src); err != nil {
				return Outcome{Status: StatusFailed, Destination: candidate, Reason: fmt.Sprintf("removing source: %v", err)}
			}
			return Outcome{Status: StatusMoved, Destination: candidate}
		}
		return Outcome{Status: StatusCopied, Destination: candidate}
	}

	return Outcome{Status: StatusFailed, Destination: dst, Reason: "collision-exhausted"}
}

// 🔢 suffixed inserts "-n" before the extension for n > 0
func suffixed(path string, n int) string {
	if n == 0 {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + strconv.Itoa(n) + ext
}

// 🔍 sameContent reports whether two files have byte-identical content,
// comparing sizes before hashing
func sameContent(a, b string) (bool, error) {
	infoA, err := os.Stat(a)
	if err != nil {
		return false, errors.Errorf("stat %s: %w", a, err)
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false, errors.Errorf("stat %s: %w", b, err)
	}
	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	hashA, err := hashFile(a)
	if err != nil {
		return false, err
	}
	hashB, err := hashFile(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(hashA, hashB), nil
}

// #️⃣ hashFile computes the SHA-256 of a file's content
func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, errors.Errorf("hashing %s: %w", path, err)
	}
	return h.Sum(nil), nil
}

// 💾 copyFileVerified streams src to dst with O_EXCL creation and
// SHA-256 + size verification of the written bytes. The destination is
// synced before the function reports success and removed on any mismatch,
// so a move can safely delete the source afterwards.
func copyFileVerified(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source: %w", err)
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return errors.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Errorf("creating destination: %w", err)
	}
	defer out.Close()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, dstHasher), io.TeeReader(in, srcHasher))
	if err != nil {
		_ = os.Remove(dst)
		return errors.Errorf("copying: %w", err)
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return errors.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return errors.Errorf("copy hash mismatch: file corrupted during copy")
	}

	if err := out.Sync(); err != nil {
		_ = os.Remove(dst)
		return errors.Errorf("syncing destination: %w", err)
	}
	return out.Close()
}

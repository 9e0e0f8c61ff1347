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
	"context"
	"path/filepath"

	"github.com/embear/fitarchiver/pkg/fit"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔧 Options contains the immutable configuration for an Archiver
type Options struct {
	// Extractor produces metadata for each input file
	Extractor fit.Extractor
	// Template is the compiled destination template, shared read-only
	Template *Template
	// Directory is the archive base directory
	Directory string
	// Move selects move over copy
	Move bool
	// DryRun suppresses all filesystem mutation
	DryRun bool
	// MaxSuffix bounds the collision suffix retry loop (default 100)
	MaxSuffix int
	// Jobs is the number of files processed concurrently (default 1)
	Jobs int
}

// 📄 Result pairs an input file with its placement outcome
type Result struct {
	Source  string
	Outcome Outcome
}

// 📊 Summary aggregates the per-file outcomes of one batch
type Summary struct {
	Processed int // files examined
	Archived  int // copied or moved (including dry-run would-be placements)
	Skipped   int // duplicates already in the archive
	Failed    int // per-file failures
}

// 🎮 Archiver runs the per-file extract → render → place pipeline
type Archiver struct {
	opts   Options
	placer *Placer
}

// 🏭 New creates an archiver from the given options
func New(opts Options) (*Archiver, error) {
	if opts.Extractor == nil {
		return nil, errors.Errorf("extractor is required")
	}
	if opts.Template == nil {
		return nil, errors.Errorf("template is required")
	}
	if opts.Directory == "" {
		opts.Directory = "."
	}
	if opts.MaxSuffix <= 0 {
		opts.MaxSuffix = 100
	}
	if opts.Jobs <= 0 {
		opts.Jobs = 1
	}
	return &Archiver{
		opts: opts,
		placer: &Placer{
			Move:      opts.Move,
			DryRun:    opts.DryRun,
			MaxSuffix: opts.MaxSuffix,
		},
	}, nil
}

// 🏃 Run processes every input file independently and returns the ordered
// per-file results. A single file failing never aborts the batch; the
// failure is recorded in its outcome and processing continues.
func (a *Archiver) Run(ctx context.Context, files []string) []Result {
	results := make([]Result, len(files))

	if a.opts.Jobs <= 1 {
		for i, file := range files {
			results[i] = Result{Source: file, Outcome: a.processFile(ctx, file)}
		}
		return results
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Jobs)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i] = Result{Source: file, Outcome: a.processFile(ctx, file)}
			return nil
		})
	}
	_ = g.Wait() // workers report through results, never through errors
	return results
}

// 📄 processFile runs one file through extract → render → place
func (a *Archiver) processFile(ctx context.Context, file string) Outcome {
	logger := zerolog.Ctx(ctx)

	meta, err := a.opts.Extractor.Extract(ctx, file)
	if err != nil {
		logger.Debug().Str("file", file).Err(err).Msg("metadata extraction failed")
		return Outcome{Status: StatusFailed, Reason: "unreadable: " + err.Error()}
	}

	rendered, err := a.opts.Template.Render(meta)
	if err != nil {
		logger.Debug().Str("file", file).Err(err).Msg("template rendering failed")
		return Outcome{Status: StatusFailed, Reason: err.Error()}
	}

	// The template never controls the extension; the source keeps its own.
	destination := filepath.Join(a.opts.Directory, rendered+filepath.Ext(file))

	return a.placer.Place(ctx, file, destination)
}

// 🧮 Summarize folds a result list into batch totals
func Summarize(results []Result) Summary {
	var s Summary
	s.Processed = len(results)
	for _, r := range results {
		switch r.Outcome.Status {
		case StatusCopied, StatusMoved, StatusWouldCopy, StatusWouldMove:
			s.Archived++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

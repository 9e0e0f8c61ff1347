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

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/embear/fitarchiver/pkg/archive"
	"github.com/embear/fitarchiver/pkg/config"
	"github.com/embear/fitarchiver/pkg/fit"
	"github.com/embear/fitarchiver/pkg/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// errFilesFailed signals that at least one file failed while the batch
// itself ran to completion
var errFilesFailed = errors.New("some files could not be archived")

const longHelp = `Copy or move FIT activity files into an archive directory layout derived
from the metadata embedded in each file.

The file template mixes strftime-style time directives (expanded from the
activity start time) with FIT specific tags. '/' must be used as the path
separator inside the template.

  Tag   Description     Example          Default
  ------------------------------------------------
  $s    sport type      'running'        'unknown'
  $S    sport subtype   'trail'          'unknown'
  $n    sport name      'trail_run'      'unknown'
  $w    workout name    'temporun_8km'   'unknown'

NOTE: shells may try to expand tags themselves, so pass the template as a
quoted string.`

// 🏭 newRootCmd builds the fitarchiver command
func newRootCmd() *cobra.Command {
	var (
		configFile string
		directory  string
		template   string
		move       bool
		dryRun     bool
		maxSuffix  int
		jobs       int
		debug      bool
	)

	cmd := &cobra.Command{
		Use:           "fitarchiver [flags] <files...>",
		Short:         "Archive FIT files based on information contained in the file",
		Long:          longHelp,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			level := zerolog.WarnLevel
			if cfg.Debug {
				level = zerolog.DebugLevel
			}
			logger := log.New(cmd.OutOrStdout(), level)
			zlog := zerolog.New(zerolog.NewConsoleWriter()).Level(level).With().Timestamp().Logger()
			ctx := zlog.WithContext(cmd.Context())

			files, err := expandArgs(args)
			if err != nil {
				return err
			}

			return run(ctx, cfg, logger, files)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path (YAML or HCL)")
	cmd.Flags().StringVarP(&directory, "directory", "d", ".", "archive base directory")
	cmd.Flags().StringVarP(&template, "file-template", "f", archive.DefaultTemplate,
		"template for the path and name of the archive file")
	cmd.Flags().BoolVarP(&move, "move", "m", false, "move files to archive instead of copying them")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "do not copy or move the files, just show what will happen")
	cmd.Flags().IntVar(&maxSuffix, "max-suffix", 100, "collision suffix retry ceiling")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 1, "number of files processed concurrently")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	return cmd
}

// 📚 resolveConfig loads the config file, applies flag overrides on top and
// validates the result. Flags always win over file values.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	configFile, err := flags.GetString("config")
	if err != nil {
		return nil, errors.Errorf("reading config flag: %w", err)
	}

	cfg, err := loadConfig(cmd, configFile)
	if err != nil {
		return nil, err
	}

	if flags.Changed("directory") {
		cfg.Directory, _ = flags.GetString("directory")
	}
	if flags.Changed("file-template") {
		cfg.Template, _ = flags.GetString("file-template")
	}
	if flags.Changed("move") {
		cfg.Move, _ = flags.GetBool("move")
	}
	if flags.Changed("dry-run") {
		cfg.DryRun, _ = flags.GetBool("dry-run")
	}
	if flags.Changed("max-suffix") {
		cfg.MaxSuffix, _ = flags.GetInt("max-suffix")
	}
	if flags.Changed("jobs") {
		cfg.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// 📚 loadConfig loads the config file when one is given or found, and falls
// back to pure defaults otherwise
func loadConfig(cmd *cobra.Command, configFile string) (*config.Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if configFile != "" {
		return config.Load(ctx, configFile)
	}
	for _, candidate := range []string{".fitarchiver.yaml", ".fitarchiver.hcl"} {
		if _, err := os.Stat(candidate); err == nil {
			return config.Load(ctx, candidate)
		}
	}
	return config.Default(), nil
}

// 🔍 expandArgs expands glob patterns in the file arguments. Plain paths
// pass through untouched so a missing file is still reported per file
// instead of vanishing silently.
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, errors.Errorf("invalid file pattern %q: %w", arg, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no files matched the given arguments")
	}
	return files, nil
}

// 🏃 run compiles the template, archives every file and reports the results
func run(ctx context.Context, cfg *config.Config, logger *log.Logger, files []string) error {
	tmpl, err := archive.Compile(cfg.Template)
	if err != nil {
		logger.Error(fmt.Sprintf("invalid file template %q: %v", cfg.Template, err))
		return err
	}

	archiver, err := archive.New(archive.Options{
		Extractor: fit.NewDecoder(),
		Template:  tmpl,
		Directory: cfg.Directory,
		Move:      cfg.Move,
		DryRun:    cfg.DryRun,
		MaxSuffix: cfg.MaxSuffix,
		Jobs:      cfg.Jobs,
	})
	if err != nil {
		return err
	}

	logger.Header(cfg.String())
	if cfg.DryRun {
		logger.Infof("dry run, no files will be modified")
	}

	results := archiver.Run(ctx, files)
	for _, r := range results {
		logger.LogPlacement(placementFor(r))
	}

	summary := archive.Summarize(results)
	if summary.Failed > 0 {
		logger.Warningf("Processed %d files with %d errors", summary.Processed, summary.Failed)
		return errFilesFailed
	}
	logger.Successf("Processed %d files", summary.Processed)
	return nil
}

// 📝 placementFor maps an archiver result onto its log line
func placementFor(r archive.Result) log.Placement {
	st := r.Outcome.Status
	return log.Placement{
		Source:      r.Source,
		Destination: r.Outcome.Destination,
		Status:      st.String(),
		Reason:      r.Outcome.Reason,
		IsArchived: st == archive.StatusCopied || st == archive.StatusMoved ||
			st == archive.StatusWouldCopy || st == archive.StatusWouldMove,
		IsSkipped: st == archive.StatusSkipped,
		IsFailed:  st == archive.StatusFailed,
	}
}

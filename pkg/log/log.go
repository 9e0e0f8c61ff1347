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

package log

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎯 Placement represents one file's archiving result for logging
type Placement struct {
	Source      string // input file path
	Destination string // resolved archive path
	Status      string // copied/moved/would copy/would move/skipped/failed
	Reason      string // optional reason for skipped/failed
	IsArchived  bool   // file was (or would be) placed in the archive
	IsSkipped   bool   // duplicate already present
	IsFailed    bool   // per-file failure
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 📝 formatPlacement formats a placement for display
func (l *Logger) formatPlacement(p Placement) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case p.IsFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	case p.IsSkipped:
		symbol = '-'
		symbolColor = color.FgYellow
	default:
		symbol = '✓'
		symbolColor = color.FgGreen
	}

	line := fmt.Sprintf("%s '%s' -> '%s' ... %s",
		color.New(symbolColor).Sprint(string(symbol)),
		p.Source,
		p.Destination,
		p.Status)
	if p.Reason != "" {
		line += fmt.Sprintf(" (%s)", p.Reason)
	}
	return line
}

// 📝 LogPlacement logs one file's archiving result
func (l *Logger) LogPlacement(p Placement) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatPlacement(p))

	l.zlog.Info().
		Str("source", p.Source).
		Str("destination", p.Destination).
		Str("status", p.Status).
		Str("reason", p.Reason).
		Bool("is_archived", p.IsArchived).
		Bool("is_skipped", p.IsSkipped).
		Bool("is_failed", p.IsFailed).
		Msg("file placement")
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("fitarchiver")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pterm.Success.WithWriter(l.console).Println(msg)
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pterm.Warning.WithWriter(l.console).Println(msg)
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pterm.Error.WithWriter(l.console).Println(msg)
	l.zlog.Error().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	pterm.Info.WithWriter(l.console).Println(msg)
	l.zlog.Info().Msg(msg)
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

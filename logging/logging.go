/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package logging

import (
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Log source tags used in structured logger contexts.
const (
	SourceApp        = "app"
	SourceWeb        = "web"
	SourceWebRequest = "web_request"
	SourceDB         = "db"
	SourceExtract    = "extract"
	SourceBiomarker  = "biomarker"
)

var (
	initOnce   sync.Once
	baseLogger *log.Logger
)

// Init configures the base logger from LOG_LEVEL (default debug) and
// LOG_FORMAT (logfmt or json), and routes stdlib log output through it.
func Init() {
	initOnce.Do(func() {
		baseLogger = log.NewWithOptions(os.Stdout, log.Options{
			TimeFunction:    log.NowUTC,
			TimeFormat:      time.RFC3339Nano,
			Level:           levelFromEnv(os.Getenv("LOG_LEVEL")),
			ReportTimestamp: true,
			Formatter:       formatterFromEnv(os.Getenv("LOG_FORMAT")),
		})

		stdlog.SetFlags(0)
		stdlog.SetOutput(newStdLogger(SourceApp).Writer())
	})
}

func levelFromEnv(value string) log.Level {
	if value == "" {
		return log.DebugLevel
	}

	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil {
		return log.DebugLevel
	}

	return level
}

func formatterFromEnv(value string) log.Formatter {
	if strings.EqualFold(strings.TrimSpace(value), "json") {
		return log.JSONFormatter
	}

	return log.LogfmtFormatter
}

// Logger returns a structured logger tagged with the provided source.
func Logger(source string) *log.Logger {
	Init()
	return baseLogger.With("source", source)
}

// StdLogger returns a stdlib logger that writes through the base logger with
// a source tag.
func StdLogger(source string) *stdlog.Logger {
	Init()
	return newStdLogger(source)
}

func newStdLogger(source string) *stdlog.Logger {
	return baseLogger.With("source", source).StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
}

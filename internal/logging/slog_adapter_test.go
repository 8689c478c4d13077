// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newBufferedSlogger(level zerolog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).Level(level)
	return slog.New(NewSlogHandlerWithLogger(zl)), &buf
}

func TestSlogHandlerLevels(t *testing.T) {
	tests := []struct {
		name      string
		log       func(*slog.Logger)
		wantLevel string
	}{
		{"debug", func(l *slog.Logger) { l.Debug("m") }, `"level":"debug"`},
		{"info", func(l *slog.Logger) { l.Info("m") }, `"level":"info"`},
		{"warn", func(l *slog.Logger) { l.Warn("m") }, `"level":"warn"`},
		{"error", func(l *slog.Logger) { l.Error("m") }, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slogger, buf := newBufferedSlogger(zerolog.TraceLevel)
			tt.log(slogger)

			if !strings.Contains(buf.String(), tt.wantLevel) {
				t.Errorf("expected %s in output, got: %s", tt.wantLevel, buf.String())
			}
		})
	}
}

func TestSlogHandlerAttrs(t *testing.T) {
	slogger, buf := newBufferedSlogger(zerolog.TraceLevel)

	slogger.Info("service event",
		slog.String("service", "http"),
		slog.Int("restarts", 3),
		slog.Bool("healthy", true),
	)

	output := buf.String()
	for _, want := range []string{`"service":"http"`, `"restarts":3`, `"healthy":true`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestSlogHandlerWithAttrsAndGroups(t *testing.T) {
	slogger, buf := newBufferedSlogger(zerolog.TraceLevel)

	child := slogger.With(slog.String("component", "supervisor")).WithGroup("tree")
	child.Info("spawned", slog.String("name", "api"))

	output := buf.String()
	if !strings.Contains(output, `"component":"supervisor"`) {
		t.Errorf("expected pre-set attr, got: %s", output)
	}
	if !strings.Contains(output, `"tree.name":"api"`) {
		t.Errorf("expected group-prefixed key, got: %s", output)
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).Level(zerolog.WarnLevel)
	handler := NewSlogHandlerWithLogger(zl)

	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug to be disabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}

func TestNewSlogLoggerWritesThroughGlobal(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})

	slogger := NewSlogLogger()
	slogger.Info("bridged message")

	if !strings.Contains(buf.String(), "bridged message") {
		t.Errorf("expected message via global logger, got: %s", buf.String())
	}
}

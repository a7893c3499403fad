/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Leveler{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPrettyHandlerFormatsAttrs(t *testing.T) {
	b := &strings.Builder{}
	h := &prettyTextHandler{opts: prettyOpts{Level: slog.LevelDebug}, w: b}
	l := slog.New(h).With(slog.String("component", "pipeline"))
	l.Info("merged", slog.Int("fragments", 3), slog.Float64("weld", 0.0001))
	out := b.String()
	for _, want := range []string{"INF", "merged", "component=pipeline", "fragments=3", "weld=0.0001"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestGroupedAttrsArePrefixed(t *testing.T) {
	b := &strings.Builder{}
	h := &prettyTextHandler{opts: prettyOpts{Level: slog.LevelDebug}, w: b}
	l := slog.New(h).WithGroup("mesh")
	l.Info("stats", slog.Int("triangles", 12))
	if !strings.Contains(b.String(), "mesh.triangles=12") {
		t.Fatalf("group prefix missing: %q", b.String())
	}
}

func TestInitAndWithComponent(t *testing.T) {
	Init(Options{Level: "debug", Format: "console"})
	if L() == nil {
		t.Fatalf("default logger not set")
	}
	if WithComponent("extrude") == nil {
		t.Fatalf("component logger not built")
	}
}

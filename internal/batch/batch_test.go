/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package batch

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/config"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/gltf"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/history"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/pipeline"
)

const squareFile = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><path d="M0 0 H10 V10 H0 Z"/></svg>`

func testOptions(t *testing.T) Options {
	t.Helper()
	settings, err := pipeline.SettingsFrom(config.Defaults().Pipeline)
	if err != nil {
		t.Fatalf("SettingsFrom: %v", err)
	}
	return Options{Settings: settings, Export: gltf.Options{Format: gltf.FormatGLB}}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestConvertFile(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, in, "square.svg", squareFile)

	opts := testOptions(t)
	path, res, err := ConvertFile(filepath.Join(in, "square.svg"), out, opts.Settings, opts.Export)
	if err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	if filepath.Base(path) != "square.glb" {
		t.Fatalf("output name = %s", path)
	}
	if res.Triangles != 12 {
		t.Fatalf("triangles = %d", res.Triangles)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data[:4]) != "glTF" {
		t.Fatalf("output is not glb")
	}
}

func TestConvertDirSortedAndIsolated(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, in, "b.svg", squareFile)
	writeFile(t, in, "a.svg", squareFile)
	writeFile(t, in, "broken.svg", "<not-svg/>")
	writeFile(t, in, "notes.txt", "ignored")

	sum, err := ConvertDir(context.Background(), in, out, testOptions(t))
	if err != nil {
		t.Fatalf("ConvertDir: %v", err)
	}
	if len(sum.Reports) != 3 {
		t.Fatalf("got %d reports, want 3", len(sum.Reports))
	}
	order := []string{"a.svg", "b.svg", "broken.svg"}
	for i, want := range order {
		if filepath.Base(sum.Reports[i].Source) != want {
			t.Fatalf("report %d is %s, want %s", i, sum.Reports[i].Source, want)
		}
	}
	if sum.Succeeded() != 2 {
		t.Fatalf("succeeded = %d", sum.Succeeded())
	}
	bad := sum.Reports[2]
	if bad.Status != history.StatusError || bad.Err == nil {
		t.Fatalf("broken item report = %+v", bad)
	}
	if sum.Archive != "" {
		t.Fatalf("archive made without being requested")
	}
}

func TestConvertDirArchive(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, in, "a.svg", squareFile)
	writeFile(t, in, "b.svg", squareFile)

	opts := testOptions(t)
	opts.Archive = filepath.Join(out, "models")
	sum, err := ConvertDir(context.Background(), in, out, opts)
	if err != nil {
		t.Fatalf("ConvertDir: %v", err)
	}
	if sum.Archive == "" {
		t.Fatalf("no archive written")
	}
	zr, err := zip.OpenReader(sum.Archive)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 2 {
		t.Fatalf("archive has %d files, want 2", len(zr.File))
	}
}

func TestConvertDirSingleOutputStaysBare(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, in, "only.svg", squareFile)

	opts := testOptions(t)
	opts.Archive = filepath.Join(out, "models.zip")
	sum, err := ConvertDir(context.Background(), in, out, opts)
	if err != nil {
		t.Fatalf("ConvertDir: %v", err)
	}
	if sum.Archive != "" {
		t.Fatalf("single output was archived")
	}
	if _, err := os.Stat(filepath.Join(out, "only.glb")); err != nil {
		t.Fatalf("bare output missing: %v", err)
	}
}

func TestConvertDirRecordsHistory(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, in, "a.svg", squareFile)
	writeFile(t, in, "broken.svg", "<not-svg/>")

	h, err := history.Open(filepath.Join(t.TempDir(), "history.sqlite"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	defer h.Close()

	opts := testOptions(t)
	opts.History = h
	if _, err := ConvertDir(context.Background(), in, out, opts); err != nil {
		t.Fatalf("ConvertDir: %v", err)
	}
	entries, err := h.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d history rows, want 2", len(entries))
	}
	statuses := map[string]int{}
	for _, e := range entries {
		statuses[e.Status]++
	}
	if statuses[history.StatusOK] != 1 || statuses[history.StatusError] != 1 {
		t.Fatalf("statuses = %v", statuses)
	}
}

func TestConvertDirCanceled(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "a.svg", squareFile)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ConvertDir(ctx, in, t.TempDir(), testOptions(t)); err == nil {
		t.Fatalf("canceled context accepted")
	}
}

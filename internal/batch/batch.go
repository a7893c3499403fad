/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package batch converts directories of SVG files sequentially. One bad
// file is reported and skipped; it never aborts the batch.
package batch

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"log/slog"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/gltf"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/history"
	applog "github.com/atticusofsparta/svg-2-gltf-webapp/internal/log"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/pipeline"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/svg"
)

// Options configures a batch run.
type Options struct {
	Settings pipeline.Settings
	Export   gltf.Options
	// Archive, when set, packages the outputs into a single zip if the
	// batch produced more than one file. A single output stays bare.
	Archive string
	// History records one row per item when non-nil.
	History *history.Log
}

// Report is the outcome of one batch item.
type Report struct {
	Source    string
	Output    string
	Status    string // history.StatusOK or history.StatusError
	Err       error
	Shapes    int
	Skipped   int
	Vertices  int
	Triangles int
	Duration  time.Duration
}

// Summary is the outcome of a whole batch.
type Summary struct {
	Reports []Report
	// Archive is the path of the written zip, empty when none was made.
	Archive string
}

// Succeeded counts ok items.
func (s *Summary) Succeeded() int {
	n := 0
	for _, r := range s.Reports {
		if r.Status == history.StatusOK {
			n++
		}
	}
	return n
}

// ConvertFile converts a single SVG file and writes the output next to the
// given path. Returns the written path and the conversion result.
func ConvertFile(path, outDir string, settings pipeline.Settings, export gltf.Options) (string, *pipeline.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("open %s: %w", path, err)
	}
	doc, err := svg.Parse(f, settings.CurveSegments)
	_ = f.Close()
	if err != nil {
		return "", nil, err
	}

	res, err := pipeline.Run(settings, doc)
	if err != nil {
		return "", nil, err
	}
	data, err := gltf.Export(res, export)
	if err != nil {
		return "", nil, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("ensure out dir: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(outDir, base+"."+string(export.Format))
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", nil, fmt.Errorf("write %s: %w", out, err)
	}
	return out, res, nil
}

// ConvertDir converts every *.svg file under inDir, in sorted name order,
// strictly one at a time. Item failures become error reports; the batch
// only fails as a whole when the input directory cannot be read or the
// context is canceled.
func ConvertDir(ctx context.Context, inDir, outDir string, opts Options) (*Summary, error) {
	if opts.Export.Format == "" {
		opts.Export.Format = gltf.FormatGLB
	}
	l := applog.WithOperation(applog.WithComponent("batch"), "convert_dir").With(
		slog.String("in", inDir), slog.String("out", outDir),
	)

	entries, err := os.ReadDir(inDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".svg") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	sum := &Summary{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		src := filepath.Join(inDir, name)
		start := time.Now()
		out, res, err := ConvertFile(src, outDir, opts.Settings, opts.Export)
		rep := Report{Source: src, Output: out, Duration: time.Since(start)}
		if err != nil {
			rep.Status = history.StatusError
			rep.Err = err
			l.Warn("item failed", slog.String("file", name), slog.Any("err", err))
		} else {
			rep.Status = history.StatusOK
			rep.Shapes = res.Shapes
			rep.Skipped = res.Skipped
			rep.Vertices = res.Vertices
			rep.Triangles = res.Triangles
			l.Info("item converted", slog.String("file", name),
				slog.Int("triangles", res.Triangles), slog.Int("skipped", res.Skipped))
		}
		sum.Reports = append(sum.Reports, rep)
		record(ctx, opts.History, rep)
	}

	if opts.Archive != "" && sum.Succeeded() > 1 {
		archive, err := packageOutputs(opts.Archive, sum.Reports)
		if err != nil {
			return sum, err
		}
		sum.Archive = archive
		l.Info("outputs archived", slog.String("archive", archive), slog.Int("files", sum.Succeeded()))
	}
	return sum, nil
}

func record(ctx context.Context, h *history.Log, rep Report) {
	if h == nil {
		return
	}
	e := history.Entry{
		Source:    rep.Source,
		Status:    rep.Status,
		Shapes:    rep.Shapes,
		Skipped:   rep.Skipped,
		Vertices:  rep.Vertices,
		Triangles: rep.Triangles,
		Duration:  rep.Duration,
		Output:    rep.Output,
	}
	if rep.Err != nil {
		e.Error = rep.Err.Error()
	}
	if _, err := h.Record(ctx, e); err != nil {
		applog.WithComponent("batch").Warn("history record failed", slog.Any("err", err))
	}
}

// packageOutputs zips the successful outputs under their base names.
func packageOutputs(outPath string, reports []Report) (string, error) {
	if !strings.HasSuffix(strings.ToLower(outPath), ".zip") {
		outPath += ".zip"
	}
	zw, f, err := createZip(outPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	for _, r := range reports {
		if r.Status != history.StatusOK {
			continue
		}
		data, err := os.ReadFile(r.Output)
		if err != nil {
			return "", fmt.Errorf("read output %s: %w", r.Output, err)
		}
		if err := addZipFile(zw, filepath.Base(r.Output), data); err != nil {
			return "", fmt.Errorf("add %s: %w", r.Output, err)
		}
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finish archive: %w", err)
	}
	return outPath, nil
}

func createZip(outPath string) (*zip.Writer, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create archive: %w", err)
	}
	return zip.NewWriter(f), f, nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

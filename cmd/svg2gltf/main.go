/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"log/slog"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/batch"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/config"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/crash"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/gltf"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/history"
	applog "github.com/atticusofsparta/svg-2-gltf-webapp/internal/log"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/pipeline"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/server"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/version"
)

func usage() {
	fmt.Println("svg2gltf — extrude SVG files into glTF models")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  svg2gltf convert -in file.svg [-out dir] [flags]    Convert one file")
	fmt.Println("  svg2gltf batch -in dir -out dir [-archive out.zip]  Convert a directory")
	fmt.Println("  svg2gltf serve [-addr :8080]                        Run the HTTP server")
	fmt.Println("  svg2gltf version|-v|--version                       Show version")
	fmt.Println()
	fmt.Println("Shared flags: -extrude -bevel -segments -simplify -merge-distance")
	fmt.Println("              -scale -color -wireframe -format -double-sided -history")
}

func main() {
	applog.Init(applog.FromEnv())
	defer crash.Recover()
	l := applog.WithComponent("cli")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "version", "--version", "-v":
		fmt.Println(version.String())
		return
	case "convert":
		err = runConvert(os.Args[2:])
	case "batch":
		err = runBatch(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Printf("unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		l.Error("command failed", slog.String("command", os.Args[1]), slog.Any("err", err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// registerCommonFlags binds the pipeline and export configuration to a
// flag set, seeded with the loaded config so flags override it.
func registerCommonFlags(fs *flag.FlagSet, cfg *config.AppConfig) {
	fs.Float64Var(&cfg.Pipeline.ExtrudeDepth, "extrude", cfg.Pipeline.ExtrudeDepth, "extrusion depth in SVG units")
	fs.Float64Var(&cfg.Pipeline.BevelThickness, "bevel", cfg.Pipeline.BevelThickness, "bevel chamfer thickness, 0 disables")
	fs.IntVar(&cfg.Pipeline.CurveSegments, "segments", cfg.Pipeline.CurveSegments, "line steps per curved segment")
	fs.Float64Var(&cfg.Pipeline.SimplifyTolerance, "simplify", cfg.Pipeline.SimplifyTolerance, "path simplification tolerance, 0 disables")
	fs.Float64Var(&cfg.Pipeline.MergeDistance, "merge-distance", cfg.Pipeline.MergeDistance, "vertex weld distance")
	fs.Float64Var(&cfg.Pipeline.ScaleMeters, "scale", cfg.Pipeline.ScaleMeters, "longest output dimension in meters")
	fs.StringVar(&cfg.Pipeline.MeshColor, "color", cfg.Pipeline.MeshColor, "mesh base color")
	fs.BoolVar(&cfg.Pipeline.Wireframe, "wireframe", cfg.Pipeline.Wireframe, "export edges instead of faces")
	fs.StringVar(&cfg.Export.Format, "format", cfg.Export.Format, "output format: glb or gltf")
	fs.BoolVar(&cfg.Export.DoubleSided, "double-sided", cfg.Export.DoubleSided, "mark the material double sided")
	fs.StringVar(&cfg.History.Path, "history", cfg.History.Path, "sqlite conversion log path, empty disables")
}

func loadConfig() config.AppConfig {
	cfg, err := config.Load()
	if err != nil {
		applog.WithComponent("cli").Warn("config load failed, using defaults", slog.Any("err", err))
		return config.Defaults()
	}
	return cfg
}

func buildOptions(cfg config.AppConfig) (pipeline.Settings, gltf.Options, error) {
	settings, err := pipeline.SettingsFrom(cfg.Pipeline)
	if err != nil {
		return pipeline.Settings{}, gltf.Options{}, err
	}
	format, err := gltf.ParseFormat(cfg.Export.Format)
	if err != nil {
		return pipeline.Settings{}, gltf.Options{}, err
	}
	return settings, gltf.Options{Format: format, DoubleSided: cfg.Export.DoubleSided}, nil
}

func openHistory(cfg config.AppConfig) *history.Log {
	if cfg.History.Path == "" {
		return nil
	}
	h, err := history.Open(cfg.History.Path)
	if err != nil {
		applog.WithComponent("cli").Warn("history unavailable", slog.Any("err", err))
		return nil
	}
	return h
}

func runConvert(args []string) error {
	cfg := loadConfig()
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	in := fs.String("in", "", "input SVG file (required)")
	out := fs.String("out", ".", "output directory")
	registerCommonFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("convert requires -in file.svg")
	}

	settings, export, err := buildOptions(cfg)
	if err != nil {
		return err
	}
	path, res, err := batch.ConvertFile(*in, *out, settings, export)
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(path)
	fmt.Printf("Wrote %s (%d shapes, %d skipped, %d vertices, %d triangles)\n",
		abs, res.Shapes, res.Skipped, res.Vertices, res.Triangles)
	return nil
}

func runBatch(args []string) error {
	cfg := loadConfig()
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	in := fs.String("in", "", "input directory (required)")
	out := fs.String("out", "", "output directory (required)")
	archive := fs.String("archive", "", "zip path for multiple outputs")
	registerCommonFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return fmt.Errorf("batch requires -in dir and -out dir")
	}

	settings, export, err := buildOptions(cfg)
	if err != nil {
		return err
	}
	h := openHistory(cfg)
	defer h.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := batch.ConvertDir(ctx, *in, *out, batch.Options{
		Settings: settings,
		Export:   export,
		Archive:  *archive,
		History:  h,
	})
	if err != nil {
		return err
	}
	for _, rep := range sum.Reports {
		if rep.Err != nil {
			fmt.Printf("FAIL %s: %v\n", rep.Source, rep.Err)
			continue
		}
		fmt.Printf("ok   %s -> %s (%d triangles)\n", rep.Source, rep.Output, rep.Triangles)
	}
	if sum.Archive != "" {
		fmt.Printf("Archived %d files into %s\n", sum.Succeeded(), sum.Archive)
	}
	if failed := len(sum.Reports) - sum.Succeeded(); failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(sum.Reports))
	}
	return nil
}

func runServe(args []string) error {
	cfg := loadConfig()
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.Server.Addr, "listen address")
	registerCommonFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Server.Addr = *addr

	// reject a bad configuration before binding the socket
	if _, _, err := buildOptions(cfg); err != nil {
		return err
	}
	h := openHistory(cfg)
	defer h.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(cfg, h).ListenAndServe(ctx)
}

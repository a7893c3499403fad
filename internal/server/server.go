/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package server exposes the conversion pipeline over HTTP. Every request
// runs its own pipeline on a fresh settings snapshot; there is no shared
// mutable conversion state.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/config"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/gltf"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/history"
	applog "github.com/atticusofsparta/svg-2-gltf-webapp/internal/log"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/pipeline"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/svg"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/version"
)

// maxUploadBytes caps the multipart form we are willing to buffer.
const maxUploadBytes = 32 << 20

// Server holds the configured defaults a request's settings overlay.
type Server struct {
	cfg     config.AppConfig
	history *history.Log
	log     *slog.Logger
}

// New builds a server around configured defaults. history may be nil.
func New(cfg config.AppConfig, h *history.Log) *Server {
	return &Server{cfg: cfg, history: h, log: applog.WithComponent("server")}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(version.String()))
	})
	mux.HandleFunc("/convert", s.handleConvert)
	return mux
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", slog.String("addr", s.cfg.Server.Addr))
	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errc:
		return err
	}
}

// handleConvert accepts a multipart form with a "file" part holding SVG
// bytes and an optional "settings" part holding a JSON overlay. Responses:
// 422 for invalid settings or unreadable XML, 200 with a zero-triangle
// model for a readable but empty document.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("use POST"))
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse multipart form: %w", err))
		return
	}

	cfg := s.cfg
	if raw := r.FormValue("settings"); raw != "" {
		payload, err := config.ParseSettingsJSON([]byte(raw))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		cfg = payload.Apply(cfg)
	}
	settings, err := pipeline.SettingsFrom(cfg.Pipeline)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	format, err := gltf.ParseFormat(cfg.Export.Format)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file part: %w", err))
		return
	}
	defer file.Close()

	start := time.Now()
	doc, err := svg.Parse(io.LimitReader(file, maxUploadBytes), settings.CurveSegments)
	if err != nil {
		s.record(r.Context(), header.Filename, "", nil, time.Since(start), err)
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	res, err := pipeline.Run(settings, doc)
	if err != nil {
		s.record(r.Context(), header.Filename, "", nil, time.Since(start), err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	data, err := gltf.Export(res, gltf.Options{Format: format, DoubleSided: cfg.Export.DoubleSided})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.record(r.Context(), header.Filename, "", res, time.Since(start), nil)

	ct := "model/gltf-binary"
	if format == gltf.FormatGLTF {
		ct = "model/gltf+json"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("X-Shapes", strconv.Itoa(res.Shapes))
	w.Header().Set("X-Shapes-Skipped", strconv.Itoa(res.Skipped))
	w.Header().Set("X-Vertices", strconv.Itoa(res.Vertices))
	w.Header().Set("X-Triangles", strconv.Itoa(res.Triangles))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.Warn("write response failed", slog.Any("err", err))
	}
}

func (s *Server) record(ctx context.Context, source, output string, res *pipeline.Result, dur time.Duration, convErr error) {
	if s.history == nil {
		return
	}
	e := history.Entry{Source: source, Output: output, Duration: dur, Status: history.StatusOK}
	if convErr != nil {
		e.Status = history.StatusError
		e.Error = convErr.Error()
	}
	if res != nil {
		e.Shapes = res.Shapes
		e.Skipped = res.Skipped
		e.Vertices = res.Vertices
		e.Triangles = res.Triangles
	}
	if _, err := s.history.Record(ctx, e); err != nil {
		s.log.Warn("history record failed", slog.Any("err", err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

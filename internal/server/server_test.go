/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/config"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/history"
)

const squareSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><path d="M0 0 H10 V10 H0 Z"/></svg>`

func newTestServer(t *testing.T, h *history.Log) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(config.Defaults(), h).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func multipartBody(t *testing.T, svgData, settings string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if svgData != "" {
		fw, err := mw.CreateFormFile("file", "input.svg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := io.WriteString(fw, svgData); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if settings != "" {
		if err := mw.WriteField("settings", settings); err != nil {
			t.Fatalf("write settings field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func postConvert(t *testing.T, ts *httptest.Server, svgData, settings string) *http.Response {
	t.Helper()
	body, ct := multipartBody(t, svgData, settings)
	resp, err := http.Post(ts.URL+"/convert", ct, body)
	if err != nil {
		t.Fatalf("POST /convert: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/version")
	if err != nil {
		t.Fatalf("GET /version: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "svg2gltf") {
		t.Fatalf("version body = %q", b)
	}
}

func TestConvertRejectsGet(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/convert")
	if err != nil {
		t.Fatalf("GET /convert: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestConvertSquare(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postConvert(t, ts, squareSVG, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "model/gltf-binary" {
		t.Fatalf("content type = %q", got)
	}
	if got := resp.Header.Get("X-Triangles"); got != "12" {
		t.Fatalf("X-Triangles = %q", got)
	}
	b, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(b, []byte("glTF")) {
		t.Fatalf("response is not glb")
	}
}

func TestConvertSettingsOverride(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postConvert(t, ts, squareSVG, `{"format":"gltf","doubleSided":true,"extrudeDepth":5}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "model/gltf+json" {
		t.Fatalf("content type = %q", got)
	}
	b, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(b, []byte(`"doubleSided":true`)) {
		t.Fatalf("material not double sided")
	}
}

func TestConvertInvalidSettings(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, raw := range []string{
		`{"extrudeDepth":-1}`,
		`{"format":"obj"}`,
		`{"unknown":true}`,
		`not json`,
	} {
		resp := postConvert(t, ts, squareSVG, raw)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("settings %q: status = %d, want 422", raw, resp.StatusCode)
		}
		var body map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("settings %q: error body not JSON: %v", raw, err)
		}
		if body["error"] == "" {
			t.Fatalf("settings %q: empty error message", raw)
		}
	}
}

func TestConvertUnreadableXML(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postConvert(t, ts, `<html><body>nope</body></html>`, "")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestConvertEmptyDocumentYieldsEmptyModel(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postConvert(t, ts, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"></svg>`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Triangles"); got != "0" {
		t.Fatalf("X-Triangles = %q, want 0", got)
	}
}

func TestConvertMissingFile(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postConvert(t, ts, "", `{"extrudeDepth":5}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestConvertRecordsHistory(t *testing.T) {
	h, err := history.Open(filepath.Join(t.TempDir(), "history.sqlite"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	defer h.Close()

	ts := newTestServer(t, h)
	if resp := postConvert(t, ts, squareSVG, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp := postConvert(t, ts, "<nope/>", ""); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("bad doc status not 422")
	}

	entries, err := h.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d history rows, want 2", len(entries))
	}
	if entries[0].Status != history.StatusError || entries[1].Status != history.StatusOK {
		t.Fatalf("statuses = %s, %s", entries[0].Status, entries[1].Status)
	}
	if entries[1].Triangles != 12 {
		t.Fatalf("recorded triangles = %d", entries[1].Triangles)
	}
}

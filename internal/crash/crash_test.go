/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRecoverWritesReportAndExits(t *testing.T) {
	dir := t.TempDir()
	reportDir = dir
	defer func() { reportDir = "" }()

	exitCode := -1
	exitFn = func(code int) { exitCode = code }
	defer func() { exitFn = os.Exit }()

	func() {
		defer Recover()
		panic("boom")
	}()

	if exitCode != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read report dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d report files, want 1", len(entries))
	}
	b, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	body := string(b)
	if !strings.Contains(body, "Panic: boom") {
		t.Fatalf("report lacks panic value:\n%s", body)
	}
	if !strings.Contains(body, "Stack:") {
		t.Fatalf("report lacks stack trace")
	}
}

func TestRecoverNoopWithoutPanic(t *testing.T) {
	exitCode := -1
	exitFn = func(code int) { exitCode = code }
	defer func() { exitFn = os.Exit }()

	func() {
		defer Recover()
	}()
	if exitCode != -1 {
		t.Fatalf("Recover exited without a panic")
	}
}

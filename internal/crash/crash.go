/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns an unhandled panic into a crash report file and a
// clean non-zero exit.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "github.com/atticusofsparta/svg-2-gltf-webapp/internal/log"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// reportDir overrides the report location in tests; empty selects os.TempDir.
var reportDir = ""

// Recover captures a panic, logs an error with stacktrace and writes an
// error report file before exiting with code 2.
//
// Usage: defer crash.Recover()
func Recover() {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(r, stack)
		if err != nil {
			l.Error("write crash report failed", slog.Any("err", err))
		}
		fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
		fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
		exitFn(2)
	}
}

func writeReport(panicVal any, stack []byte) (string, error) {
	dir := reportDir
	if dir == "" {
		dir = os.TempDir()
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("svg2gltf-crash-%s.log", stamp))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "svg2gltf Crash Report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}

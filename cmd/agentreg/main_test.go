// Copyright 2026 The polka-agent Authors
// This file is part of polka-agent.
//
// polka-agent is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// polka-agent is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with polka-agent. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"os"
	"os/exec"
	"strings"
	"testing"
)

const runMainEnv = "AGENTREG_TEST_RUN_MAIN"

// TestMainFatalExit runs the binary entry point in a child process and
// checks that a failing command is reported through Fatalf.
func TestMainFatalExit(t *testing.T) {
	if dir := os.Getenv(runMainEnv); dir != "" {
		os.Args = []string{clientIdentifier, "--verbosity", "0", "--datadir", dir, "total"}
		main()
		return
	}
	cmd := exec.Command(os.Args[0], "-test.run=^TestMainFatalExit$")
	cmd.Env = append(os.Environ(), runMainEnv+"="+t.TempDir())
	out, err := cmd.CombinedOutput()

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected non-zero exit, got %v\n%s", err, out)
	}
	if code := exitErr.ExitCode(); code != 1 {
		t.Errorf("exit code mismatch: have %d, want 1", code)
	}
	if !strings.Contains(string(out), "Fatal: registry not deployed") {
		t.Errorf("missing fatal message in output:\n%s", out)
	}
}

// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mintProgram       = "(program 1.1.0 (lam ctx (con unit ())))"
	alwaysSucceedsHex = "46450101002499"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	rootCmd, err := newRootCommand()
	require.NoError(t, err)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestListPlugins(t *testing.T) {
	shouldExit, output := listPlugins("list", "")
	assert.True(t, shouldExit)
	assert.Contains(t, output, "Available blob plugins:")
	assert.Contains(t, output, "badger")
	assert.NotContains(t, output, "metadata plugins")

	shouldExit, output = listPlugins("badger", "sqlite")
	assert.False(t, shouldExit)
	assert.Empty(t, output)

	all := listAllPlugins()
	assert.Contains(t, all, "badger")
	assert.Contains(t, all, "sqlite")
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, "text", detectFormat([]byte("  (program 1.1.0 (error))")))
	assert.Equal(t, "hex", detectFormat([]byte(alwaysSucceedsHex+"\n")))
	assert.Equal(t, "binary", detectFormat([]byte{0x01, 0x01, 0x00, 0x24, 0x99}))
	assert.Equal(t, "binary", detectFormat([]byte("abc")))
}

func TestDecompileCommand(t *testing.T) {
	input := writeFile(t, t.TempDir(), "mint.uplc", mintProgram)
	out, err := runCommand(t, "--no-cache", "decompile", "--validator", "minter", input)
	require.NoError(t, err)
	assert.Contains(t, out, "validator minter {")
	assert.Contains(t, out, "mint(ctx: ScriptContext)")
}

func TestAnalyzeCommand(t *testing.T) {
	input := writeFile(t, t.TempDir(), "script.hex", alwaysSucceedsHex)
	out, err := runCommand(t, "--no-cache", "analyze", input)
	require.NoError(t, err)
	assert.Contains(t, out, "purpose: mint")
}

func TestCostCommand(t *testing.T) {
	input := writeFile(t, t.TempDir(), "mint.uplc", mintProgram)
	out, err := runCommand(t, "--no-cache", "cost", input)
	require.NoError(t, err)
	assert.Contains(t, out, "fits transaction limit: yes")
}

func TestIRCommand(t *testing.T) {
	input := writeFile(t, t.TempDir(), "mint.uplc", mintProgram)
	out, err := runCommand(t, "--no-cache", "ir", "--format", "text", input)
	require.NoError(t, err)
	assert.Contains(t, out, "fn validator(ctx)")
}

func TestDecompileCommandBadFormat(t *testing.T) {
	input := writeFile(t, t.TempDir(), "mint.uplc", mintProgram)
	_, err := runCommand(t, "--no-cache", "decompile", "--format", "yaml", input)
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeFile(t, inDir, "a.uplc", mintProgram)
	writeFile(t, inDir, "b.hex", alwaysSucceedsHex)
	writeFile(t, inDir, "notes.txt", "ignored")
	textfile := filepath.Join(t.TempDir(), "batch.prom")

	out, err := runCommand(
		t,
		"--no-cache",
		"batch",
		"--workers", "2",
		"--output", outDir,
		"--metrics-textfile", textfile,
		inDir,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "a.uplc: mint")
	assert.NotContains(t, out, "notes.txt")
	assert.FileExists(t, filepath.Join(outDir, "a.ak"))
	assert.FileExists(t, filepath.Join(outDir, "b.ak"))
	metrics, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "uplcdec_decompile_requests_total")
}

func TestBatchCommandReportsFailures(t *testing.T) {
	inDir := t.TempDir()
	writeFile(t, inDir, "bad.uplc", "(program 1.1.0")
	out, err := runCommand(t, "--no-cache", "batch", inDir)
	assert.Error(t, err)
	assert.Contains(t, out, "FAIL")
}

func TestListCommand(t *testing.T) {
	dataDir := t.TempDir()
	configFile := writeFile(
		t,
		t.TempDir(),
		"uplcdec.yaml",
		"databasePath: \""+dataDir+"\"\n",
	)
	input := writeFile(t, t.TempDir(), "mint.uplc", mintProgram)
	_, err := runCommand(t, "--config", configFile, "decompile", input)
	require.NoError(t, err)

	out, err := runCommand(t, "--config", configFile, "list", "--purpose", "mint")
	require.NoError(t, err)
	assert.Contains(t, out, "PURPOSE")
	assert.Contains(t, out, "mint")

	out, err = runCommand(t, "--config", configFile, "list", "--purpose", "spend")
	require.NoError(t, err)
	assert.NotContains(t, out, "mint")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "uplcdec devel")
}

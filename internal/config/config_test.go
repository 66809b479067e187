// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
output: text
padding: 2
dq:
  output: json
  ci:
    - "--exit-code"
    - "--output json"
`

func loadSample(t *testing.T, ns string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tfdrift.yaml"), []byte(sampleConfig), 0o644))
	t.Setenv("XDG_CONFIG_HOME", dir)
	_, err := Load(ns)
	require.NoError(t, err)
}

func TestGetString_Global(t *testing.T) {
	loadSample(t, "")
	v, err := GetString("output")
	assert.NoError(t, err)
	assert.Equal(t, "text", v)
}

func TestGetString_NamespaceWins(t *testing.T) {
	loadSample(t, "dq")
	v, err := GetString("output")
	assert.NoError(t, err)
	assert.Equal(t, "json", v)
}

func TestGetString_Default(t *testing.T) {
	loadSample(t, "")
	v, err := GetString("nope", "fallback")
	assert.NoError(t, err)
	assert.Equal(t, "fallback", v)
}

func TestGetInt(t *testing.T) {
	loadSample(t, "")
	v, err := GetInt("padding")
	assert.NoError(t, err)
	assert.Equal(t, 2, v)

	v, err = GetInt("missing", 7)
	assert.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestGetStringSlice(t *testing.T) {
	loadSample(t, "")
	v, err := GetStringSlice("dq.ci")
	assert.NoError(t, err)
	assert.Equal(t, []string{"--exit-code", "--output json"}, v)

	_, err = GetStringSlice("dq.nope")
	assert.Error(t, err)
}

// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runMain invokes realMain with a fake os.Args, restoring the original.
func runMain(t *testing.T, args ...string) int {
	t.Helper()

	saved := os.Args
	t.Cleanup(func() { os.Args = saved })

	os.Args = append([]string{"tfdrift"}, args...)
	return realMain()
}

func TestRealMainNoArgsIsUsageFailure(t *testing.T) {
	assert.Equal(t, 1, runMain(t))
}

func TestRealMainOneDocIsUsageFailure(t *testing.T) {
	// One document spec mangles into `dq <doc>`, which the dq validator
	// rejects before any file I/O.
	code := runMain(t, "only.tfstate")
	assert.NotEqual(t, 0, code)
}

func TestRealMainComparesTwoDocs(t *testing.T) {
	dir := t.TempDir()

	old := dir + "/old.tfstate"
	require.NoError(t, os.WriteFile(old, []byte(`{
		"version": 4, "serial": 1, "lineage": "l",
		"resources": [{
			"mode": "managed", "type": "aws_instance", "name": "web",
			"provider": "provider[\"registry.terraform.io/hashicorp/aws\"]",
			"instances": [{"attributes": {"instance_type": "t3.micro"}}]
		}]
	}`), 0o600))

	new := dir + "/new.tfstate"
	require.NoError(t, os.WriteFile(new, []byte(`{
		"version": 4, "serial": 2, "lineage": "l",
		"resources": [{
			"mode": "managed", "type": "aws_instance", "name": "web",
			"provider": "provider[\"registry.terraform.io/hashicorp/aws\"]",
			"instances": [{"attributes": {"instance_type": "t3.small"}}]
		}]
	}`), 0o600))

	// Drift exists, but without --exit-code a successful comparison is 0.
	assert.Equal(t, 0, runMain(t, "dq", old, new))
}

func TestRealMainMissingFileFails(t *testing.T) {
	assert.Equal(t, 2, runMain(t, "dq", "/no/such/old.tfstate", "/no/such/new.tfstate"))
}

// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	diff "github.com/yudai/gojsondiff"

	"github.com/staranto/tfdriftgo/internal/state"
)

func doc(resources map[string]map[string]interface{}) *state.Document {
	d := &state.Document{Kind: state.KindState, Resources: map[string]state.Resource{}}
	for addr, attrs := range resources {
		d.Resources[addr] = state.Resource{
			Address:    addr,
			Mode:       "managed",
			Type:       "aws_instance",
			Name:       addr,
			Attributes: attrs,
		}
	}
	return d
}

func TestCompare_Identical(t *testing.T) {
	old := doc(map[string]map[string]interface{}{
		"aws_instance.web": {"id": "i-1", "tags": map[string]interface{}{"env": "prod"}},
	})
	new := doc(map[string]map[string]interface{}{
		"aws_instance.web": {"id": "i-1", "tags": map[string]interface{}{"env": "prod"}},
	})

	report := Compare(old, new)

	assert.False(t, report.HasDrift())
	assert.Empty(t, report.Added)
	assert.Empty(t, report.Removed)
	assert.Empty(t, report.Modified)
	assert.Equal(t, []string{"aws_instance.web"}, report.Unchanged)
	assert.Equal(t, 0, report.Summary.Total)
}

func TestCompare_AddedAndRemoved(t *testing.T) {
	old := doc(map[string]map[string]interface{}{
		"aws_instance.a": {"id": "i-a"},
		"aws_instance.b": {"id": "i-b"},
	})
	new := doc(map[string]map[string]interface{}{
		"aws_instance.b": {"id": "i-b"},
		"aws_instance.c": {"id": "i-c"},
	})

	report := Compare(old, new)

	assert.True(t, report.HasDrift())
	assert.Equal(t, []string{"aws_instance.c"}, report.Added)
	assert.Equal(t, []string{"aws_instance.a"}, report.Removed)
	assert.Equal(t, []string{"aws_instance.b"}, report.Unchanged)
	assert.Equal(t, 2, report.Summary.Total)
}

func TestCompare_AddedKey(t *testing.T) {
	old := doc(map[string]map[string]interface{}{
		"aws_instance.web": {"id": "i-1"},
	})
	new := doc(map[string]map[string]interface{}{
		"aws_instance.web": {"id": "i-1", "monitoring": true},
	})

	report := Compare(old, new)

	require.Len(t, report.Modified, 1)
	rd := report.Modified[0]
	assert.Equal(t, "aws_instance.web", rd.Address)

	require.Len(t, rd.Changes, 1)
	assert.Equal(t, "monitoring", rd.Changes[0].Path)
	assert.Equal(t, KindAdded, rd.Changes[0].Kind)
	assert.Equal(t, true, rd.Changes[0].New)
}

func TestCompare_ChangedScalarPath(t *testing.T) {
	old := doc(map[string]map[string]interface{}{
		"aws_instance.web": {
			"id": "i-1",
			"root_block_device": map[string]interface{}{
				"volume_size": 20.0,
			},
		},
	})
	new := doc(map[string]map[string]interface{}{
		"aws_instance.web": {
			"id": "i-1",
			"root_block_device": map[string]interface{}{
				"volume_size": 100.0,
			},
		},
	})

	report := Compare(old, new)

	require.Len(t, report.Modified, 1)
	changes := report.Modified[0].Changes
	require.Len(t, changes, 1)
	assert.Equal(t, "root_block_device.volume_size", changes[0].Path)
	assert.Equal(t, KindModified, changes[0].Kind)
	assert.Equal(t, 20.0, changes[0].Old)
	assert.Equal(t, 100.0, changes[0].New)
}

func TestCompare_TypeChanged(t *testing.T) {
	old := doc(map[string]map[string]interface{}{
		"aws_instance.web": {"count": 2.0},
	})
	new := doc(map[string]map[string]interface{}{
		"aws_instance.web": {"count": true},
	})

	report := Compare(old, new)

	require.Len(t, report.Modified, 1)
	changes := report.Modified[0].Changes
	require.Len(t, changes, 1)
	assert.Equal(t, KindTypeChanged, changes[0].Kind)
	assert.Equal(t, 2.0, changes[0].Old)
	assert.Equal(t, true, changes[0].New)
}

func TestCompare_RemovedKey(t *testing.T) {
	old := doc(map[string]map[string]interface{}{
		"aws_instance.web": {"id": "i-1", "ebs_optimized": false},
	})
	new := doc(map[string]map[string]interface{}{
		"aws_instance.web": {"id": "i-1"},
	})

	report := Compare(old, new)

	require.Len(t, report.Modified, 1)
	changes := report.Modified[0].Changes
	require.Len(t, changes, 1)
	assert.Equal(t, "ebs_optimized", changes[0].Path)
	assert.Equal(t, KindRemoved, changes[0].Kind)
	assert.Equal(t, false, changes[0].Old)
}

func TestCompare_NilAttributes(t *testing.T) {
	old := doc(map[string]map[string]interface{}{
		"aws_instance.web": nil,
	})
	new := doc(map[string]map[string]interface{}{
		"aws_instance.web": {"id": "i-1"},
	})

	report := Compare(old, new)

	require.Len(t, report.Modified, 1)
	assert.Equal(t, KindAdded, report.Modified[0].Changes[0].Kind)
}

func TestCompare_SortedOutput(t *testing.T) {
	old := doc(map[string]map[string]interface{}{
		"aws_instance.z": {"id": "1"},
		"aws_instance.a": {"id": "2"},
	})
	new := doc(map[string]map[string]interface{}{})

	report := Compare(old, new)

	assert.Equal(t, []string{"aws_instance.a", "aws_instance.z"}, report.Removed)
}

func TestWalk_Moved(t *testing.T) {
	moved := diff.NewMoved(diff.Index(0), diff.Index(2), "subnet-a", nil)

	changes := walk([]diff.Delta{moved}, "subnet_ids")

	require.Len(t, changes, 1)
	fc := changes[0]
	assert.Equal(t, KindMoved, fc.Kind)
	assert.Equal(t, "subnet_ids.2", fc.Path)
	assert.Equal(t, "subnet_ids.0", fc.From)
	// Old and New carry the element value, never an index.
	assert.Equal(t, "subnet-a", fc.Old)
	assert.Equal(t, "subnet-a", fc.New)
}

func TestModificationKind(t *testing.T) {
	assert.Equal(t, KindModified, modificationKind(1.0, 2.0))
	assert.Equal(t, KindModified, modificationKind(nil, "x"))
	assert.Equal(t, KindTypeChanged, modificationKind("1", 1.0))
}

// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"reflect"

	"github.com/apex/log"
	diff "github.com/yudai/gojsondiff"
)

// Kind labels a single field-level change.
type Kind string

const (
	KindAdded       Kind = "added"
	KindRemoved     Kind = "removed"
	KindModified    Kind = "modified"
	KindTypeChanged Kind = "type-changed"
	KindMoved       Kind = "moved"
)

// FieldChange is one change at a dotted path inside a resource's attributes.
// For moved array elements Path is the new location and From the old one;
// Old and New always hold values, never positions.
type FieldChange struct {
	Path string      `json:"path" yaml:"path"`
	From string      `json:"from,omitempty" yaml:"from,omitempty"`
	Kind Kind        `json:"kind" yaml:"kind"`
	Old  interface{} `json:"old,omitempty" yaml:"old,omitempty"`
	New  interface{} `json:"new,omitempty" yaml:"new,omitempty"`
}

// Flatten walks a gojsondiff delta tree into flat field change records.
func Flatten(d diff.Diff) []FieldChange {
	return walk(d.Deltas(), "")
}

func walk(deltas []diff.Delta, prefix string) []FieldChange {
	changes := make([]FieldChange, 0, len(deltas))

	for _, delta := range deltas {
		path := join(prefix, position(delta))

		switch t := delta.(type) {
		case *diff.Object:
			changes = append(changes, walk(t.Deltas, path)...)
		case *diff.Array:
			changes = append(changes, walk(t.Deltas, path)...)
		case *diff.Added:
			changes = append(changes, FieldChange{Path: path, Kind: KindAdded, New: t.Value})
		case *diff.Deleted:
			changes = append(changes, FieldChange{Path: path, Kind: KindRemoved, Old: t.Value})
		case *diff.Modified:
			changes = append(changes, FieldChange{
				Path: path,
				Kind: modificationKind(t.OldValue, t.NewValue),
				Old:  t.OldValue,
				New:  t.NewValue,
			})
		case *diff.TextDiff:
			changes = append(changes, FieldChange{Path: path, Kind: KindModified, Old: t.OldValue, New: t.NewValue})
		case *diff.Moved:
			fc := FieldChange{Path: path, Kind: KindMoved, Old: t.Value, New: t.Value}
			if pre, ok := delta.(diff.PreDelta); ok {
				fc.From = join(prefix, pre.PrePosition().String())
			}
			changes = append(changes, fc)
		default:
			log.Debugf("unhandled delta type %T at %s", delta, path)
		}
	}

	return changes
}

// position extracts the key or index a delta applies to. Post positions win
// because the report describes the new document.
func position(delta diff.Delta) string {
	if post, ok := delta.(diff.PostDelta); ok {
		return post.PostPosition().String()
	}
	if pre, ok := delta.(diff.PreDelta); ok {
		return pre.PrePosition().String()
	}
	return ""
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// modificationKind separates same-type value changes from JSON type changes.
func modificationKind(old, new interface{}) Kind {
	if old == nil || new == nil {
		return KindModified
	}
	if reflect.TypeOf(old) != reflect.TypeOf(new) {
		return KindTypeChanged
	}
	return KindModified
}

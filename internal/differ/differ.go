// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"sort"

	"github.com/apex/log"
	diff "github.com/yudai/gojsondiff"

	"github.com/staranto/tfdriftgo/internal/state"
)

// ResourceDiff is one modified resource with its field-level changes. The
// raw gojsondiff delta set and the old attributes are kept so output can
// render the full structural diff on request.
type ResourceDiff struct {
	Address string        `json:"address" yaml:"address"`
	Type    string        `json:"type" yaml:"type"`
	Name    string        `json:"name" yaml:"name"`
	Changes []FieldChange `json:"changes" yaml:"changes"`

	Delta diff.Diff              `json:"-" yaml:"-"`
	Old   map[string]interface{} `json:"-" yaml:"-"`
}

// Summary carries the change counts for the report header.
type Summary struct {
	Added     int `json:"added" yaml:"added"`
	Removed   int `json:"removed" yaml:"removed"`
	Modified  int `json:"modified" yaml:"modified"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Total     int `json:"total_changes" yaml:"total_changes"`
}

// Report is the complete result of comparing two documents.
type Report struct {
	OldSource string         `json:"old_source" yaml:"old_source"`
	NewSource string         `json:"new_source" yaml:"new_source"`
	Added     []string       `json:"added" yaml:"added"`
	Removed   []string       `json:"removed" yaml:"removed"`
	Modified  []ResourceDiff `json:"modified" yaml:"modified"`
	Unchanged []string       `json:"unchanged" yaml:"unchanged"`
	Summary   Summary        `json:"summary" yaml:"summary"`
}

// HasDrift reports whether any change at all was detected.
func (r *Report) HasDrift() bool {
	return r.Summary.Total > 0
}

// Compare classifies the resources of two documents. Address-set arithmetic
// yields added/removed; common addresses are compared structurally and land
// in modified or unchanged.
func Compare(old, new *state.Document) *Report {
	report := &Report{
		Added:     []string{},
		Removed:   []string{},
		Modified:  []ResourceDiff{},
		Unchanged: []string{},
	}

	differ := diff.New()

	for addr, oldRes := range old.Resources {
		newRes, ok := new.Resources[addr]
		if !ok {
			report.Removed = append(report.Removed, addr)
			continue
		}

		d := differ.CompareObjects(normalize(oldRes.Attributes), normalize(newRes.Attributes))
		if !d.Modified() {
			report.Unchanged = append(report.Unchanged, addr)
			continue
		}

		report.Modified = append(report.Modified, ResourceDiff{
			Address: addr,
			Type:    oldRes.Type,
			Name:    oldRes.Name,
			Changes: Flatten(d),
			Delta:   d,
			Old:     normalize(oldRes.Attributes),
		})
	}

	for addr := range new.Resources {
		if _, ok := old.Resources[addr]; !ok {
			report.Added = append(report.Added, addr)
		}
	}

	sort.Strings(report.Added)
	sort.Strings(report.Removed)
	sort.Strings(report.Unchanged)
	sort.Slice(report.Modified, func(i, j int) bool {
		return report.Modified[i].Address < report.Modified[j].Address
	})

	report.Summary = Summary{
		Added:     len(report.Added),
		Removed:   len(report.Removed),
		Modified:  len(report.Modified),
		Unchanged: len(report.Unchanged),
	}
	report.Summary.Total = report.Summary.Added + report.Summary.Removed + report.Summary.Modified

	log.Debugf("compared %d old / %d new resources, %d changes",
		len(old.Resources), len(new.Resources), report.Summary.Total)

	return report
}

// normalize shields gojsondiff from nil maps.
func normalize(attrs map[string]interface{}) map[string]interface{} {
	if attrs == nil {
		return map[string]interface{}{}
	}
	return attrs
}

// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cost shells out to infracost and extracts monthly cost totals for
// the cost impact section of a drift report.
package cost

import (
	"context"
	"fmt"
	"os/exec"
	"sort"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// Breakdown is the subset of an infracost breakdown this tool reports on.
type Breakdown struct {
	Currency         string             `json:"currency" yaml:"currency"`
	TotalMonthlyCost float64            `json:"total_monthly_cost" yaml:"total_monthly_cost"`
	Resources        map[string]float64 `json:"resources" yaml:"resources"`
}

// Run executes `infracost breakdown` against a Terraform directory and
// parses its JSON output.
func Run(ctx context.Context, tfDir string) (*Breakdown, error) {
	if _, err := exec.LookPath("infracost"); err != nil {
		return nil, fmt.Errorf("infracost not found on PATH: %w", err)
	}

	c := exec.CommandContext(ctx, "infracost", "breakdown", "--path", tfDir, "--format", "json")
	out, err := c.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("infracost failed: %s", string(ee.Stderr))
		}
		return nil, fmt.Errorf("failed to run infracost: %w", err)
	}

	return ParseBreakdown(out)
}

// ParseBreakdown extracts totals and per-resource monthly costs from raw
// infracost JSON. Resources with no price (null monthlyCost) count as zero.
func ParseBreakdown(raw []byte) (*Breakdown, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("infracost output is not valid JSON")
	}

	parsed := gjson.ParseBytes(raw)
	if !parsed.Get("projects").Exists() {
		return nil, fmt.Errorf("infracost output has no projects")
	}

	b := &Breakdown{
		Currency:  parsed.Get("currency").String(),
		Resources: map[string]float64{},
	}

	parsed.Get("projects").ForEach(func(_, project gjson.Result) bool {
		breakdown := project.Get("breakdown")
		if !breakdown.Exists() {
			return true
		}

		b.TotalMonthlyCost += breakdown.Get("totalMonthlyCost").Float()

		breakdown.Get("resources").ForEach(func(_, res gjson.Result) bool {
			name := res.Get("name").String()
			if name == "" {
				name = "unknown"
			}
			b.Resources[name] += res.Get("monthlyCost").Float()
			return true
		})

		return true
	})

	log.Debugf("parsed breakdown: %d resources, %.2f/month total",
		len(b.Resources), b.TotalMonthlyCost)

	return b, nil
}

// ResourceDelta is the cost movement of one resource between two breakdowns.
type ResourceDelta struct {
	Name   string  `json:"name" yaml:"name"`
	Old    float64 `json:"old" yaml:"old"`
	New    float64 `json:"new" yaml:"new"`
	Change float64 `json:"change" yaml:"change"`
}

// Delta is the cost movement between two breakdowns. Old may equal New when
// only one Terraform directory was analyzed.
type Delta struct {
	Old       *Breakdown      `json:"old" yaml:"old"`
	New       *Breakdown      `json:"new" yaml:"new"`
	Resources []ResourceDelta `json:"resources" yaml:"resources"`
}

// NewDelta joins two breakdowns on resource name, sorted for stable output.
func NewDelta(old, new *Breakdown) *Delta {
	names := map[string]struct{}{}
	for name := range old.Resources {
		names[name] = struct{}{}
	}
	for name := range new.Resources {
		names[name] = struct{}{}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	d := &Delta{Old: old, New: new}
	for _, name := range sorted {
		o := old.Resources[name]
		n := new.Resources[name]
		d.Resources = append(d.Resources, ResourceDelta{
			Name:   name,
			Old:    o,
			New:    n,
			Change: n - o,
		})
	}

	return d
}

// Change is the total monthly cost movement.
func (d *Delta) Change() float64 {
	return d.New.TotalMonthlyCost - d.Old.TotalMonthlyCost
}

// Percent is the total movement relative to the old total. Zero old cost
// yields zero to keep the report printable.
func (d *Delta) Percent() float64 {
	if d.Old.TotalMonthlyCost == 0 {
		return 0
	}
	return d.Change() / d.Old.TotalMonthlyCost * 100
}

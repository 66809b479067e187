// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBreakdown = `{
  "version": "0.2",
  "currency": "USD",
  "projects": [
    {
      "name": "main",
      "breakdown": {
        "totalMonthlyCost": "125.50",
        "resources": [
          {"name": "aws_instance.web", "monthlyCost": "100.00"},
          {"name": "aws_s3_bucket.logs", "monthlyCost": "25.50"},
          {"name": "aws_iam_role.app", "monthlyCost": null}
        ]
      }
    },
    {
      "name": "secondary",
      "breakdown": {
        "totalMonthlyCost": "10.00",
        "resources": [
          {"name": "aws_sqs_queue.jobs", "monthlyCost": "10.00"}
        ]
      }
    }
  ]
}`

func TestParseBreakdown(t *testing.T) {
	b, err := ParseBreakdown([]byte(sampleBreakdown))
	require.NoError(t, err)

	assert.Equal(t, "USD", b.Currency)
	assert.InDelta(t, 135.50, b.TotalMonthlyCost, 0.001)
	assert.Len(t, b.Resources, 4)
	assert.InDelta(t, 100.00, b.Resources["aws_instance.web"], 0.001)
	assert.InDelta(t, 0.0, b.Resources["aws_iam_role.app"], 0.001)
}

func TestParseBreakdown_Invalid(t *testing.T) {
	_, err := ParseBreakdown([]byte("{nope"))
	assert.Error(t, err)

	_, err = ParseBreakdown([]byte(`{"currency": "USD"}`))
	assert.Error(t, err)
}

func TestNewDelta(t *testing.T) {
	old := &Breakdown{
		TotalMonthlyCost: 100,
		Resources:        map[string]float64{"a": 60, "b": 40},
	}
	new := &Breakdown{
		TotalMonthlyCost: 150,
		Resources:        map[string]float64{"a": 90, "c": 60},
	}

	d := NewDelta(old, new)

	assert.InDelta(t, 50, d.Change(), 0.001)
	assert.InDelta(t, 50, d.Percent(), 0.001)

	require.Len(t, d.Resources, 3)
	assert.Equal(t, "a", d.Resources[0].Name)
	assert.InDelta(t, 30, d.Resources[0].Change, 0.001)
	assert.Equal(t, "b", d.Resources[1].Name)
	assert.InDelta(t, -40, d.Resources[1].Change, 0.001)
	assert.Equal(t, "c", d.Resources[2].Name)
	assert.InDelta(t, 60, d.Resources[2].Change, 0.001)
}

func TestDelta_ZeroOldCost(t *testing.T) {
	d := NewDelta(&Breakdown{}, &Breakdown{TotalMonthlyCost: 50})
	assert.InDelta(t, 0, d.Percent(), 0.001)
	assert.InDelta(t, 50, d.Change(), 0.001)
}

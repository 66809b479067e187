// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output renders drift reports, resource listings, and cost deltas
// in the formats selected by the --output flag.
package output

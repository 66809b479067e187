// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package command wires the tfdrift subcommands: dq (drift query), sq
// (state query), and cq (cost query).
package command

// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package version

// Version is stamped at release time via -ldflags.
var Version = "dev"

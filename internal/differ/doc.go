// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package differ classifies resources across two Terraform documents as
// added, removed, modified, or unchanged. Structural comparison of modified
// resources is delegated to gojsondiff: maps compare key-wise, arrays
// compare positionally with LCS move detection, and values of differing
// JSON types are reported as modifications carrying both sides.
package differ

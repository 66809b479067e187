// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package state parses Terraform state files and plan exports into a common
// resource map, and supports optional decryption of encrypted OpenTofu
// state documents.
package state

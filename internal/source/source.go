// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package source resolves document specs to raw Terraform documents. A spec
// is a local file path, an s3://bucket/key object, or a tfe://org/workspace
// reference to the current state version of a Terraform Cloud workspace.
package source

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Source fetches the raw bytes of one Terraform document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// Options carry the connection overrides shared by the non-local sources.
type Options struct {
	Host  string
	Token string
}

// New dispatches a document spec to the right Source implementation.
func New(spec string, opts Options) (Source, error) {
	switch {
	case strings.HasPrefix(spec, "s3://"):
		return NewS3(spec)
	case strings.HasPrefix(spec, "tfe://"):
		return NewTFE(spec, opts)
	case spec == "":
		return nil, fmt.Errorf("empty document spec")
	default:
		return &Local{Path: spec}, nil
	}
}

// LooksLikeSpec reports whether the arg could be a document spec rather than
// a subcommand name. Used by the arg mangling that makes the bare
// `tfdrift <old> <new>` form work.
func LooksLikeSpec(arg string) bool {
	if strings.HasPrefix(arg, "s3://") || strings.HasPrefix(arg, "tfe://") {
		return true
	}
	if fi, err := os.Stat(arg); err == nil && !fi.IsDir() {
		return true
	}
	// A path separator or a tfstate/json suffix is enough of a hint even when
	// the file doesn't exist yet. The dq action will report the real error.
	return strings.ContainsRune(arg, os.PathSeparator) ||
		strings.HasSuffix(arg, ".tfstate") ||
		strings.HasSuffix(arg, ".json")
}

// Local reads a document from the filesystem.
type Local struct {
	Path string
}

func (s *Local) Fetch(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return data, nil
}

func (s *Local) String() string {
	return s.Path
}

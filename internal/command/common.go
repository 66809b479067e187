// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/tfdriftgo/internal/meta"
	"github.com/staranto/tfdriftgo/internal/source"
	"github.com/staranto/tfdriftgo/internal/state"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr tfdrift <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "tfdrift", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// exitError carries a specific process exit code up to realMain.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

// NewDriftExit is returned by dq under --exit-code when drift was found, so
// CI pipelines can distinguish drift (3) from failures (2).
func NewDriftExit() error {
	return &exitError{code: 3, msg: "drift detected"}
}

// ExitCode extracts a specific exit code from an error chain, if one was
// attached.
func ExitCode(err error) (int, bool) {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code, true
	}
	return 0, false
}

// validatePositional enforces an exact positional arg count before any file
// or network I/O happens.
func validatePositional(cmd *cli.Command, want int, usage string) error {
	if got := cmd.Args().Len(); got != want {
		return fmt.Errorf("expected %d argument(s), got %d\nusage: %s", want, got, usage)
	}
	return nil
}

// FetchDocument resolves a document spec, fetches it, decrypts it when it
// turns out to be an encrypted OpenTofu state, and parses it.
func FetchDocument(ctx context.Context, cmd *cli.Command, spec string) (*state.Document, error) {
	src, err := source.New(spec, source.Options{
		Host:  cmd.String("host"),
		Token: cmd.String("token"),
	})
	if err != nil {
		return nil, err
	}

	doc, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	log.Debugf("fetched %s (%d bytes)", src, len(doc))

	if state.IsEncrypted(doc) {
		passphrase, err := resolvePassphrase(cmd)
		if err != nil {
			return nil, err
		}
		doc, err = state.DecryptState(doc, passphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt %s: %w", src, err)
		}
	}

	parsed, err := state.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return parsed, nil
}

// resolvePassphrase applies the flag > env > prompt fallback chain.
func resolvePassphrase(cmd *cli.Command) (string, error) {
	passphrase := cmd.String("passphrase")

	if passphrase == "" {
		passphrase = os.Getenv("TFDRIFT_PASSPHRASE")
	}

	if passphrase == "" {
		return state.GetPassphrase()
	}

	return passphrase, nil
}

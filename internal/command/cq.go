// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/tfdriftgo/internal/config"
	"github.com/staranto/tfdriftgo/internal/cost"
	"github.com/staranto/tfdriftgo/internal/meta"
	"github.com/staranto/tfdriftgo/internal/output"
)

// CqCommandAction is the action handler for the "cq" subcommand. It runs
// infracost against one or two Terraform directories and reports the
// monthly cost impact.
func CqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "cq") {
		return nil
	}

	config.Config.Namespace = "cq"

	tfDir := cmd.String("tf-dir")
	if fi, err := os.Stat(tfDir); err != nil || !fi.IsDir() {
		return fmt.Errorf("--tf-dir %q is not a directory", tfDir)
	}

	old, err := cost.Run(ctx, tfDir)
	if err != nil {
		return err
	}

	// With a single directory the old and new sides are the same breakdown
	// and the report degenerates to a plain cost listing.
	new := old
	if newDir := cmd.String("tf-dir-new"); newDir != "" {
		if fi, err := os.Stat(newDir); err != nil || !fi.IsDir() {
			return fmt.Errorf("--tf-dir-new %q is not a directory", newDir)
		}
		new, err = cost.Run(ctx, newDir)
		if err != nil {
			return err
		}
	}

	return output.RenderCost(os.Stdout, cost.NewDelta(old, new), cmd)
}

// CqCommandBuilder constructs the cli.Command for "cq", wiring metadata,
// flags, and action/validator handlers.
func CqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "cq",
		Usage:     "cost query",
		UsageText: `tfdrift cq --tf-dir <dir> [--tf-dir-new <dir>] [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "tf-dir",
				Usage:    "Terraform directory to run infracost against",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "tf-dir-new",
				Usage: "second Terraform directory for an old/new cost delta",
			},
			tldrFlag,
		}, NewGlobalFlags("cq")...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := CqCommandValidator(ctx, cmd); err != nil {
				return err
			}
			return CqCommandAction(ctx, cmd)
		},
	}
}

// CqCommandValidator rejects stray positional arguments (cq is flag-only)
// and delegates to GlobalFlagsValidator.
func CqCommandValidator(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("tldr") {
		return nil
	}
	if err := validatePositional(cmd, 0, cmd.UsageText); err != nil {
		return err
	}
	return GlobalFlagsValidator(ctx, cmd)
}

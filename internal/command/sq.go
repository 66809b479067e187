// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/tfdriftgo/internal/config"
	"github.com/staranto/tfdriftgo/internal/filters"
	"github.com/staranto/tfdriftgo/internal/meta"
	"github.com/staranto/tfdriftgo/internal/output"
)

// SqCommandAction is the action handler for the "sq" subcommand. It lists
// the resources of a single document.
func SqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "sq") {
		return nil
	}

	config.Config.Namespace = "sq"

	doc, err := FetchDocument(ctx, cmd, cmd.Args().First())
	if err != nil {
		return err
	}

	doc = filters.Apply(doc, filters.BuildFilters(cmd.String("filter")))

	return output.RenderResources(os.Stdout, doc, cmd)
}

// SqCommandBuilder constructs the cli.Command for "sq", wiring metadata,
// flags, and action/validator handlers.
func SqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "sq",
		Usage:     "state query",
		UsageText: `tfdrift sq <doc> [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			NewPassphraseFlag(),
			NewHostFlag("sq", cfg.Source),
			NewTokenFlag("sq", cfg.Source),
			tldrFlag,
		}, NewGlobalFlags("sq")...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := SqCommandValidator(ctx, cmd); err != nil {
				return err
			}
			return SqCommandAction(ctx, cmd)
		},
	}
}

// SqCommandValidator performs validation for "sq" and delegates to
// GlobalFlagsValidator.
func SqCommandValidator(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("tldr") {
		return nil
	}
	if err := validatePositional(cmd, 1, cmd.UsageText); err != nil {
		return err
	}
	return GlobalFlagsValidator(ctx, cmd)
}

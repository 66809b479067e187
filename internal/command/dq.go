// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/tfdriftgo/internal/config"
	"github.com/staranto/tfdriftgo/internal/differ"
	"github.com/staranto/tfdriftgo/internal/filters"
	"github.com/staranto/tfdriftgo/internal/meta"
	"github.com/staranto/tfdriftgo/internal/output"
)

// DqCommandAction is the action handler for the "dq" subcommand. It fetches
// and parses the two documents, compares them, and emits the drift report
// per common flags.
func DqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Bail out early if we're just dumping tldr.
	if ShortCircuitTLDR(ctx, cmd, "dq") {
		return nil
	}

	config.Config.Namespace = "dq"

	args := cmd.Args().Slice()

	oldDoc, err := FetchDocument(ctx, cmd, args[0])
	if err != nil {
		return err
	}

	newDoc, err := FetchDocument(ctx, cmd, args[1])
	if err != nil {
		return err
	}

	fl := filters.BuildFilters(cmd.String("filter"))
	oldDoc = filters.Apply(oldDoc, fl)
	newDoc = filters.Apply(newDoc, fl)

	report := differ.Compare(oldDoc, newDoc)
	report.OldSource = args[0]
	report.NewSource = args[1]

	if err := output.Render(os.Stdout, report, cmd); err != nil {
		return err
	}

	if cmd.Bool("exit-code") && report.HasDrift() {
		return NewDriftExit()
	}

	return nil
}

// DqCommandBuilder constructs the cli.Command for "dq", wiring metadata,
// flags, and action/validator handlers.
func DqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "dq",
		Usage:     "drift query",
		UsageText: `tfdrift dq <old-doc> <new-doc> [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:    "detailed",
				Aliases: []string{"d"},
				Usage:   "show the full structural diff for each modified resource",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("dq.detailed", altsrc.StringSourcer(cfg.Source)),
				),
				Value: false,
			},
			&cli.BoolFlag{
				Name:  "exit-code",
				Usage: "exit 3 when drift is found",
				Value: false,
			},
			&cli.BoolFlag{
				Name:  "unchanged",
				Usage: "include unchanged resources in the report",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("dq.unchanged", altsrc.StringSourcer(cfg.Source)),
				),
				Value: false,
			},
			NewPassphraseFlag(),
			NewHostFlag("dq", cfg.Source),
			NewTokenFlag("dq", cfg.Source),
			tldrFlag,
		}, NewGlobalFlags("dq")...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := DqCommandValidator(ctx, cmd); err != nil {
				return err
			}
			return DqCommandAction(ctx, cmd)
		},
	}
}

// DqCommandValidator enforces the two-document contract before any I/O and
// delegates to GlobalFlagsValidator.
func DqCommandValidator(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("tldr") {
		return nil
	}
	if err := validatePositional(cmd, 2, cmd.UsageText); err != nil {
		return err
	}
	return GlobalFlagsValidator(ctx, cmd)
}

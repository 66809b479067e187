// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/tfdriftgo/internal/config"
)

func init() {
	cfg, _ = config.Load("")
}

var (
	cfg config.Type

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
)

func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"color", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("color", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to resources",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"output", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
	}

	return
}

// NewHostFlag constructs the "host" flag for commands that can talk to a TFE
// server, optionally namespaced to the config file.
func NewHostFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "host",
		Usage: "TFE host for tfe:// document specs",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TFDRIFT_HOST"),
			cli.EnvVar("TF_CLOUD_HOSTNAME"),
		),
		Value: "app.terraform.io",
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewTokenFlag constructs the "token" flag for commands that can talk to a
// TFE server. The empty default defers to the env and credentials file
// resolution in the source package.
func NewTokenFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "token",
		Usage: "TFE API token for tfe:// document specs",
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewPassphraseFlag constructs the "passphrase" flag for commands that may
// read encrypted OpenTofu state.
func NewPassphraseFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "passphrase",
		Usage: "encrypted state passphrase",
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config
// file sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas checks if the given executable exists on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}

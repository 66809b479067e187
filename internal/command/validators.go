// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// OutputValidator restricts --output to the formats the output package
// knows how to render.
func OutputValidator(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("output format must be a string")
	}

	switch s {
	case "text", "json", "yaml", "raw":
		return nil
	}
	return fmt.Errorf("unsupported output format %q (want text, json, yaml, or raw)", s)
}

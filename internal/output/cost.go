// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	yaml "gopkg.in/yaml.v2"

	"github.com/staranto/tfdriftgo/internal/cost"
)

// RenderCost writes the cq cost impact report.
func RenderCost(w io.Writer, delta *cost.Delta, cmd *cli.Command) error {
	switch cmd.String("output") {
	case "json":
		out, err := json.MarshalIndent(delta, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal cost delta: %w", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	case "yaml":
		out, err := yaml.Marshal(delta)
		if err != nil {
			return fmt.Errorf("failed to marshal cost delta: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return renderCostText(w, delta)
	}
}

func renderCostText(w io.Writer, delta *cost.Delta) error {
	fmt.Fprintln(w, "Monthly cost summary:")
	fmt.Fprintf(w, "  Old: $%s\n", money(delta.Old.TotalMonthlyCost))
	fmt.Fprintf(w, "  New: $%s\n", money(delta.New.TotalMonthlyCost))
	fmt.Fprintf(w, "  Change: %s\n", signedMoney(delta.Change()))
	if delta.Old.TotalMonthlyCost > 0 {
		fmt.Fprintf(w, "  Percent: %+.2f%%\n", delta.Percent())
	}

	if len(delta.Resources) == 0 {
		return nil
	}

	fmt.Fprintln(w, "\nResource cost changes:")
	for _, rd := range delta.Resources {
		switch {
		case rd.Old == 0 && rd.New > 0:
			fmt.Fprintf(w, "  + %s: $%s/month (new)\n", rd.Name, money(rd.New))
		case rd.Old > 0 && rd.New == 0:
			fmt.Fprintf(w, "  - %s: $%s/month (removed)\n", rd.Name, money(rd.Old))
		case rd.Change != 0:
			fmt.Fprintf(w, "  ~ %s: $%s -> $%s (%s)\n",
				rd.Name, money(rd.Old), money(rd.New), signedMoney(rd.Change))
		}
	}

	return nil
}

func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func signedMoney(v float64) string {
	if v < 0 {
		return "-$" + money(-v)
	}
	return "+$" + money(v)
}

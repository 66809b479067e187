// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/urfave/cli/v3"
	"github.com/yudai/gojsondiff/formatter"
	yaml "gopkg.in/yaml.v2"

	"github.com/staranto/tfdriftgo/internal/config"
	"github.com/staranto/tfdriftgo/internal/differ"
	"github.com/staranto/tfdriftgo/internal/state"
)

// Render writes a drift report in the format selected by --output.
func Render(w io.Writer, report *differ.Report, cmd *cli.Command) error {
	switch cmd.String("output") {
	case "json":
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	case "yaml":
		out, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = w.Write(out)
		return err
	case "raw":
		return renderRaw(w, report, cmd)
	default:
		return renderText(w, report, cmd)
	}
}

// renderRaw dumps the full structural diff of every modified resource, in
// gojsondiff's ascii rendering.
func renderRaw(w io.Writer, report *differ.Report, cmd *cli.Command) error {
	for _, rd := range report.Modified {
		fmt.Fprintf(w, "%s\n", rd.Address)
		if err := writeAsciiDelta(w, rd, cmd.Bool("color")); err != nil {
			return err
		}
	}
	return nil
}

func writeAsciiDelta(w io.Writer, rd differ.ResourceDiff, coloring bool) error {
	f := formatter.NewAsciiFormatter(rd.Old, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       coloring,
	})
	out, err := f.Format(rd.Delta)
	if err != nil {
		return fmt.Errorf("failed to format diff for %s: %w", rd.Address, err)
	}
	fmt.Fprint(w, out)
	return nil
}

func renderText(w io.Writer, report *differ.Report, cmd *cli.Command) error {
	color := cmd.Bool("color")

	addedStyle := lineStyle(color, "colors.added", "10")
	removedStyle := lineStyle(color, "colors.removed", "9")
	modifiedStyle := lineStyle(color, "colors.modified", "11")

	fmt.Fprintf(w, "Drift: %s -> %s\n\n", report.OldSource, report.NewSource)
	summaryTable(w, report)

	if len(report.Added) > 0 {
		fmt.Fprintf(w, "\nADDED (%d):\n", len(report.Added))
		for _, addr := range report.Added {
			fmt.Fprintln(w, addedStyle.Render("  + "+addr))
		}
	}

	if len(report.Removed) > 0 {
		fmt.Fprintf(w, "\nREMOVED (%d):\n", len(report.Removed))
		for _, addr := range report.Removed {
			fmt.Fprintln(w, removedStyle.Render("  - "+addr))
		}
	}

	if len(report.Modified) > 0 {
		fmt.Fprintf(w, "\nMODIFIED (%d):\n", len(report.Modified))
		for _, rd := range report.Modified {
			fmt.Fprintln(w, modifiedStyle.Render("  ~ "+rd.Address))
			for _, fc := range rd.Changes {
				switch fc.Kind {
				case differ.KindAdded:
					fmt.Fprintf(w, "      %s: %s (%v)\n", fc.Path, fc.Kind, renderValue(fc.New))
				case differ.KindRemoved:
					fmt.Fprintf(w, "      %s: %s (%v)\n", fc.Path, fc.Kind, renderValue(fc.Old))
				case differ.KindMoved:
					fmt.Fprintf(w, "      %s: %s (from %s)\n", fc.Path, fc.Kind, fc.From)
				default:
					fmt.Fprintf(w, "      %s: %s\n", fc.Path, fc.Kind)
					fmt.Fprintf(w, "        old: %v\n", renderValue(fc.Old))
					fmt.Fprintf(w, "        new: %v\n", renderValue(fc.New))
				}
			}

			if cmd.Bool("detailed") {
				if err := writeAsciiDelta(w, rd, color); err != nil {
					return err
				}
			}
		}
	}

	if cmd.Bool("unchanged") && len(report.Unchanged) > 0 {
		fmt.Fprintf(w, "\nUNCHANGED (%d):\n", len(report.Unchanged))
		for _, addr := range report.Unchanged {
			fmt.Fprintln(w, "    "+addr)
		}
	}

	if !report.HasDrift() {
		fmt.Fprintln(w, "\nNo drift detected.")
	}

	return nil
}

func summaryTable(w io.Writer, report *differ.Report) {
	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		Headers("Added", "Removed", "Modified", "Unchanged", "Total Changes").
		BorderHeader(false).
		Rows([]string{
			fmt.Sprintf("%d", report.Summary.Added),
			fmt.Sprintf("%d", report.Summary.Removed),
			fmt.Sprintf("%d", report.Summary.Modified),
			fmt.Sprintf("%d", report.Summary.Unchanged),
			fmt.Sprintf("%d", report.Summary.Total),
		})

	fmt.Fprintln(w, t)
}

// lineStyle returns a colored style when color output is on. The ANSI color
// number can be overridden per-section in the config file.
func lineStyle(color bool, key string, fallback string) lipgloss.Style {
	style := lipgloss.NewStyle()
	if !color {
		return style
	}

	c, _ := config.GetString(key, fallback)
	return style.Foreground(lipgloss.Color(c))
}

// renderValue keeps nested values readable on a single report line.
func renderValue(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]interface{}, []interface{}:
		out, err := json.Marshal(v)
		if err != nil {
			log.Debugf("failed to render value: %v", err)
			return fmt.Sprintf("%v", v)
		}
		return string(out)
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// RenderResources writes the sq listing for one document.
func RenderResources(w io.Writer, doc *state.Document, cmd *cli.Command) error {
	addrs := make([]string, 0, len(doc.Resources))
	for addr := range doc.Resources {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	switch cmd.String("output") {
	case "json":
		out, err := json.MarshalIndent(resourceRows(doc, addrs), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal resources: %w", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	case "yaml":
		out, err := yaml.Marshal(resourceRows(doc, addrs))
		if err != nil {
			return fmt.Errorf("failed to marshal resources: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		var rows [][]string
		for _, addr := range addrs {
			res := doc.Resources[addr]
			rows = append(rows, []string{res.Address, res.Mode, res.Type, res.Name, shortProvider(res.Provider)})
		}

		t := table.New().
			BorderBottom(false).
			BorderTop(false).
			BorderLeft(false).
			BorderRight(false).
			Border(lipgloss.HiddenBorder()).
			Headers("Address", "Mode", "Type", "Name", "Provider").
			BorderHeader(false).
			Rows(rows...)

		fmt.Fprintln(w, t)
		return nil
	}
}

func resourceRows(doc *state.Document, addrs []string) []state.Resource {
	rows := make([]state.Resource, 0, len(addrs))
	for _, addr := range addrs {
		res := doc.Resources[addr]
		res.Attributes = nil
		rows = append(rows, res)
	}
	return rows
}

// shortProvider trims the registry noise from a state provider string, e.g.
// provider["registry.terraform.io/hashicorp/aws"] -> hashicorp/aws.
func shortProvider(provider string) string {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(provider, `provider["`), `"]`)
	return strings.TrimPrefix(trimmed, "registry.terraform.io/")
}

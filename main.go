// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/tfdriftgo/internal/command"
	"github.com/staranto/tfdriftgo/internal/config"
	mylog "github.com/staranto/tfdriftgo/internal/log"
	"github.com/staranto/tfdriftgo/internal/source"
	"github.com/staranto/tfdriftgo/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	// No args at all is a usage failure, not a successful run. Render the
	// help text for the stranded user, but exit non-zero.
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		if app, err := command.InitApp(ctx, args); err == nil {
			_ = app.Run(ctx, append(args, "--help"))
		}
		return 1
	}

	args = mangleArguments(args)

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if code, ok := command.ExitCode(err); ok {
			return code
		}
		return 2
	}

	return 0
}

// knownCommands are the subcommand names that must not be swallowed by the
// default-command insertion below.
var knownCommands = []string{"dq", "sq", "cq", "completion", "help"}

// mangleArguments massages os.Args before urfave/cli sees them. Two jobs:
//
//  1. The documented short form `tfdrift <old> <new>` has no subcommand, so
//     when arg[1] looks like a document spec rather than a command, "dq" is
//     inserted.
//  2. An @set arg (e.g. @ci) expands to the args stored under <cmd>.<set> in
//     the config file, in place.
func mangleArguments(args []string) []string {
	// Keep help requests untouched so urfave can render them.
	for _, a := range args[1:] {
		if a == "--help" || a == "-h" {
			return args
		}
	}

	cmdIsKnown := false
	for _, c := range knownCommands {
		if args[1] == c {
			cmdIsKnown = true
			break
		}
	}

	if !cmdIsKnown && !strings.HasPrefix(args[1], "-") && source.LooksLikeSpec(args[1]) {
		args = append(args[:1], append([]string{"dq"}, args[1:]...)...)
	}

	// Expand the first @set arg, if any, from the config file.
	for i, a := range args[2:] {
		if !strings.HasPrefix(a, "@") {
			continue
		}
		idx := i + 2
		setArgs, err := config.GetStringSlice(args[1] + "." + a[1:])
		if err != nil {
			log.Debugf("no arg set %s for %s", a, args[1])
			setArgs = nil
		}
		expanded := make([]string, 0, len(args)+len(setArgs))
		expanded = append(expanded, args[:idx]...)
		for _, sa := range setArgs {
			expanded = append(expanded, strings.Fields(sa)...)
		}
		expanded = append(expanded, args[idx+1:]...)
		args = expanded
		break
	}

	log.Debugf("args=%v", args)
	return args
}

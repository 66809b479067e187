// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/staranto/tfdriftgo/internal/meta"
	"github.com/urfave/cli/v3"
)

const bashCompletionScript = `# bash completion for tfdrift
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_tfdrift()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "dq sq cq completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--color -c --filter -f --output -o --tldr"

    case "$cmd" in
        dq)
            local opts="$common --detailed -d --exit-code --unchanged --passphrase --host --token"
            ;;
        sq)
            local opts="$common --passphrase --host --token"
            ;;
        cq)
            local opts="$common --tf-dir --tf-dir-new"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json yaml raw" -- "$cur") )
        return 0
    fi

    if [[ "$prev" == "--tf-dir" || "$prev" == "--tf-dir-new" ]]; then
        COMPREPLY=( $(compgen -o dirnames -- "$cur") )
        return 0
    fi

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    # Otherwise complete document paths.
    COMPREPLY=( $(compgen -o default -- "$cur") )
    return 0
}

complete -F _tfdrift tfdrift
`

const zshCompletionScript = `#compdef tfdrift

_tfdrift() {
  local -a cmds
  cmds=(
    'dq:drift query'
    'sq:state query'
    'cq:cost query'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml raw)'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'tfdrift commands' cmds
    return
  fi

  case $words[2] in
    dq)
      _arguments -C \
        $common \
        '(-d --detailed)'{-d,--detailed}'[full structural diff]' \
        '--exit-code[exit 3 when drift is found]' \
        '--unchanged[include unchanged resources]' \
        '--passphrase[state passphrase]' \
        '--host[TFE host]' \
        '--token[TFE token]' \
        '1:old document:_files' \
        '2:new document:_files'
      ;;
    sq)
      _arguments -C \
        $common \
        '--passphrase[state passphrase]' \
        '--host[TFE host]' \
        '--token[TFE token]' \
        '1:document:_files'
      ;;
    cq)
      _arguments -C \
        $common \
        '--tf-dir[Terraform directory]:directory:_directories' \
        '--tf-dir-new[second Terraform directory]:directory:_directories'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _tfdrift tfdrift tfdriftgo
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(os.Stdout, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(os.Stdout, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: tfdrift completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "tfdrift completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}

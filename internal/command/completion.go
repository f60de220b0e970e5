// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/wxctlgo/internal/meta"
)

const bashCompletionScript = `# bash completion for wxctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_wxctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "fq cq cp completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --local --output -o --sort -s --titles -t --tldr"

    case "$cmd" in
        fq)
            local opts="$common --schema --days -d --units -u --refresh -r --interactive -i --stats"
            ;;
        cq)
            local opts="$common --schema"
            ;;
        cp)
            local opts="--all --tldr"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --units|-u)
            COMPREPLY=( $(compgen -W "celsius fahrenheit" -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    fi
    return 0
}

complete -F _wxctl wxctl
`

const zshCompletionScript = `#compdef wxctl

_wxctl() {
  local -a cmds
  cmds=(
    'fq:forecast query'
    'cq:cache query'
    'cp:cache purge'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '--local[show times in the local timezone]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'wxctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    fq)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-d --days)'{-d,--days}'[number of days]:days' \
        '(-u --units)'{-u,--units}'[temperature units]:units:(celsius fahrenheit)' \
        '(-r --refresh)'{-r,--refresh}'[bypass the cache]' \
        '(-i --interactive)'{-i,--interactive}'[read cities from stdin]' \
        '--stats[report cache statistics]' \
        '::city:'
      ;;
    cq)
      _arguments -C \
        $common \
        '--schema[dump schema]'
      ;;
    cp)
      _arguments -C \
        '--all[remove the whole snapshot]' \
        '--tldr[show tldr page]'
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
compdef _wxctl wxctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	case "":
		// Try to detect from SHELL.
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(cmd.Root().ErrWriter, "usage: wxctl completion [bash|zsh]")
		}
	default:
		return fmt.Errorf("unsupported shell %q: must be bash or zsh", shell)
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "wxctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}

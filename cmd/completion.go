package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(ExitGeneric)
	}
}

const bashCompletion = `_nxsteg() {
    local cur prev words cword
    _init_completion || return

    local commands="embed extract capacity verify history compact keyring menu help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        embed)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-i -e -o -p --keyring" -- "$cur"))
            else
                _filedir
            fi
            ;;
        extract)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-i -o -p --keyring --force" -- "$cur"))
            else
                _filedir
            fi
            ;;
        capacity)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-i" -- "$cur"))
            else
                _filedir
            fi
            ;;
        verify)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-i -f -p --keyring" -- "$cur"))
            else
                _filedir
            fi
            ;;
        history)
            COMPREPLY=($(compgen -W "--clear --show --delete" -- "$cur"))
            ;;
        keyring)
            if [[ $cword -eq 2 ]]; then
                COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            fi
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _nxsteg nxsteg
`

const zshCompletion = `#compdef nxsteg

_nxsteg() {
    local -a commands
    commands=(
        'embed:Hide a file inside an image'
        'extract:Recover a hidden file from an image'
        'capacity:Show how much an image can hold'
        'verify:Compare hidden data with a local file'
        'history:List or clear past embed and extract runs'
        'compact:Compact the history database'
        'keyring:Manage password profiles in OS keyring'
        'menu:Interactive mode'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'nxsteg commands' commands
            ;;
        args)
            case "${words[2]}" in
                embed)
                    _arguments \
                        '-i[Carrier image]:carrier:_files' \
                        '-e[File to embed]:payload:_files' \
                        '-o[Output image (.png or .bmp)]:output:_files' \
                        '-p[Encrypt with a password]' \
                        '--keyring[Use password from keyring profile]:profile:'
                    ;;
                extract)
                    _arguments \
                        '-i[Stego image]:image:_files' \
                        '-o[Output file]:output:_files' \
                        '-p[Decrypt with a password]' \
                        '--keyring[Use password from keyring profile]:profile:' \
                        '--force[Overwrite output without asking]'
                    ;;
                capacity)
                    _arguments '-i[Carrier image]:carrier:_files'
                    ;;
                verify)
                    _arguments \
                        '-i[Stego image]:image:_files' \
                        '-f[Local file to compare]:file:_files' \
                        '-p[Decrypt with a password]' \
                        '--keyring[Use password from keyring profile]:profile:'
                    ;;
                history)
                    _arguments \
                        '--clear[Remove all records]' \
                        '--show[Print one record]:id:' \
                        '--delete[Remove one record]:id:'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'nxsteg commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_nxsteg "$@"
`

const fishCompletion = `# nxsteg fish completions

set -l commands embed extract capacity verify history compact keyring menu help completion

complete -c nxsteg -f

# Commands
complete -c nxsteg -n "not __fish_seen_subcommand_from $commands" -a embed -d 'Hide a file inside an image'
complete -c nxsteg -n "not __fish_seen_subcommand_from $commands" -a extract -d 'Recover a hidden file'
complete -c nxsteg -n "not __fish_seen_subcommand_from $commands" -a capacity -d 'Show image capacity'
complete -c nxsteg -n "not __fish_seen_subcommand_from $commands" -a verify -d 'Compare hidden data with a file'
complete -c nxsteg -n "not __fish_seen_subcommand_from $commands" -a history -d 'List past runs'
complete -c nxsteg -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact history database'
complete -c nxsteg -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage password profiles'
complete -c nxsteg -n "not __fish_seen_subcommand_from $commands" -a menu -d 'Interactive mode'
complete -c nxsteg -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c nxsteg -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# embed flags
complete -c nxsteg -n "__fish_seen_subcommand_from embed" -s i -r -F -d 'Carrier image'
complete -c nxsteg -n "__fish_seen_subcommand_from embed" -s e -r -F -d 'File to embed'
complete -c nxsteg -n "__fish_seen_subcommand_from embed" -s o -r -F -d 'Output image'
complete -c nxsteg -n "__fish_seen_subcommand_from embed" -s p -d 'Encrypt with a password'
complete -c nxsteg -n "__fish_seen_subcommand_from embed" -l keyring -r -d 'Keyring profile'

# extract flags
complete -c nxsteg -n "__fish_seen_subcommand_from extract" -s i -r -F -d 'Stego image'
complete -c nxsteg -n "__fish_seen_subcommand_from extract" -s o -r -F -d 'Output file'
complete -c nxsteg -n "__fish_seen_subcommand_from extract" -s p -d 'Decrypt with a password'
complete -c nxsteg -n "__fish_seen_subcommand_from extract" -l keyring -r -d 'Keyring profile'
complete -c nxsteg -n "__fish_seen_subcommand_from extract" -l force -d 'Overwrite output'

# capacity and verify flags
complete -c nxsteg -n "__fish_seen_subcommand_from capacity" -s i -r -F -d 'Carrier image'
complete -c nxsteg -n "__fish_seen_subcommand_from verify" -s i -r -F -d 'Stego image'
complete -c nxsteg -n "__fish_seen_subcommand_from verify" -s f -r -F -d 'Local file'
complete -c nxsteg -n "__fish_seen_subcommand_from verify" -s p -d 'Decrypt with a password'

# history flags
complete -c nxsteg -n "__fish_seen_subcommand_from history" -l clear -d 'Remove all records'
complete -c nxsteg -n "__fish_seen_subcommand_from history" -l show -r -d 'Print one record'
complete -c nxsteg -n "__fish_seen_subcommand_from history" -l delete -r -d 'Remove one record'

# keyring subcommands
complete -c nxsteg -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c nxsteg -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c nxsteg -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`

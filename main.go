package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/nxsteg/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "embed":
		runEmbed(ctx, os.Args[2:])
	case "extract":
		runExtract(ctx, os.Args[2:])
	case "capacity":
		runCapacity(ctx, os.Args[2:])
	case "verify":
		runVerify(ctx, os.Args[2:])
	case "history":
		runHistory(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "menu":
		cmd.Menu(ctx)
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// requireFlags exits with the command help when any named value is empty
func requireFlags(command string, values map[string]string) {
	for name, value := range values {
		if value == "" {
			fmt.Fprintf(os.Stderr, "Error: missing required flag -%s\n\n", name)
			printCommandHelp(command)
			os.Exit(1)
		}
	}
}

func passwordFlags(fs *flag.FlagSet) (*bool, *string) {
	prompt := fs.Bool("p", false, "Use a password (NXSTEG_PASSWORD or prompt)")
	profile := fs.String("keyring", "", "Use the password stored in keyring profile NAME")
	return prompt, profile
}

func runEmbed(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	carrier := fs.String("i", "", "Carrier image")
	payload := fs.String("e", "", "File to embed")
	out := fs.String("o", "", "Output image (.png or .bmp)")
	prompt, profile := passwordFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	requireFlags("embed", map[string]string{"i": *carrier, "e": *payload, "o": *out})
	cmd.Embed(ctx, *carrier, *payload, *out, cmd.PasswordOptions{Prompt: *prompt, Profile: *profile})
}

func runExtract(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	stego := fs.String("i", "", "Stego image")
	out := fs.String("o", "", "Output file")
	force := fs.Bool("force", false, "Overwrite the output file without asking")
	prompt, profile := passwordFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	requireFlags("extract", map[string]string{"i": *stego, "o": *out})
	cmd.Extract(ctx, *stego, *out, cmd.PasswordOptions{Prompt: *prompt, Profile: *profile}, *force)
}

func runCapacity(_ context.Context, args []string) {
	fs := flag.NewFlagSet("capacity", flag.ExitOnError)
	carrier := fs.String("i", "", "Carrier image")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	requireFlags("capacity", map[string]string{"i": *carrier})
	cmd.Capacity(*carrier)
}

func runVerify(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	stego := fs.String("i", "", "Stego image")
	local := fs.String("f", "", "Local file to compare")
	prompt, profile := passwordFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	requireFlags("verify", map[string]string{"i": *stego, "f": *local})
	cmd.Verify(ctx, *stego, *local, cmd.PasswordOptions{Prompt: *prompt, Profile: *profile})
}

func runHistory(_ context.Context, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	clearAll := fs.Bool("clear", false, "Remove all history records")
	show := fs.Uint64("show", 0, "Print record `ID` in full")
	del := fs.Uint64("delete", 0, "Remove record `ID`")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.History(cmd.HistoryOptions{Clear: *clearAll, Show: *show, Delete: *del})
}

func runCompact(_ context.Context, args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Compact()
}

func runKeyring(_ context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: nxsteg keyring <save|delete|status> NAME")
		os.Exit(1)
	}

	switch args[0] {
	case "save":
		cmd.KeyringSave(args[1])
	case "delete":
		cmd.KeyringDelete(args[1])
	case "status":
		cmd.KeyringStatus(args[1])
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: nxsteg keyring <save|delete|status> NAME")
		os.Exit(1)
	}
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: nxsteg completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("nxsteg - Hide files inside PNG and BMP images")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  nxsteg <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  embed       Hide a file inside a carrier image")
	fmt.Println("  extract     Recover a hidden file from a stego image")
	fmt.Println("  capacity    Show how much data an image can hold")
	fmt.Println("  verify      Compare hidden data with a local file")
	fmt.Println("  history     List or clear past embed and extract runs")
	fmt.Println("  compact     Compact the history database")
	fmt.Println("  keyring     Manage password profiles in the OS keyring")
	fmt.Println("  menu        Interactive mode")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  nxsteg embed -i cat.png -e notes.txt -o out.png -p   # Hide and encrypt")
	fmt.Println("  nxsteg extract -i out.png -o notes.txt -p            # Recover")
	fmt.Println("  nxsteg capacity -i cat.png                           # Check room")
	fmt.Println()
	fmt.Println("Use 'nxsteg help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "embed":
		fmt.Println("nxsteg embed -i <carrier> -e <file> -o <output> [-p] [--keyring NAME]")
		fmt.Println()
		fmt.Println("Hides a file in the least significant bits of the carrier's RGB channels.")
		fmt.Println("The carrier may be PNG, BMP, JPEG or GIF; the output must be .png or .bmp.")
		fmt.Println("Nothing is written when the file does not fit.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -i              Carrier image")
		fmt.Println("  -e              File to embed")
		fmt.Println("  -o              Output image")
		fmt.Println("  -p              Encrypt with a password (NXSTEG_PASSWORD or prompt)")
		fmt.Println("  --keyring NAME  Encrypt with the password stored in profile NAME")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  nxsteg embed -i cat.png -e notes.txt -o out.png")
		fmt.Println("  nxsteg embed -i cat.png -e notes.txt -o out.png -p")
		fmt.Println("  NXSTEG_PASSWORD=s3cret nxsteg embed -i cat.bmp -e key.pem -o out.bmp -p")
	case "extract":
		fmt.Println("nxsteg extract -i <image> -o <output> [-p] [--keyring NAME] [--force]")
		fmt.Println()
		fmt.Println("Recovers the file hidden in a stego image.")
		fmt.Println("Use -p or --keyring when the file was embedded with a password.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -i              Stego image")
		fmt.Println("  -o              Output file")
		fmt.Println("  -p              Decrypt with a password (NXSTEG_PASSWORD or prompt)")
		fmt.Println("  --keyring NAME  Decrypt with the password stored in profile NAME")
		fmt.Println("  --force         Overwrite the output file without asking")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  nxsteg extract -i out.png -o notes.txt -p")
	case "capacity":
		fmt.Println("nxsteg capacity -i <carrier>")
		fmt.Println()
		fmt.Println("Shows how many bytes a carrier image can hide, with and without a password.")
		fmt.Println("An encrypted payload costs 32 bytes of salt and IV plus padding.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  nxsteg capacity -i cat.png")
	case "verify":
		fmt.Println("nxsteg verify -i <image> -f <file> [-p] [--keyring NAME]")
		fmt.Println()
		fmt.Println("Extracts the hidden file and compares it with a local file.")
		fmt.Println("Text files are shown as a unified diff. Exits with 1 when they differ.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  nxsteg verify -i out.png -f notes.txt -p")
	case "history":
		fmt.Println("nxsteg history [--clear | --show ID | --delete ID]")
		fmt.Println()
		fmt.Println("Lists past embed and extract runs: files, sizes and payload hashes.")
		fmt.Println("Passwords and payload contents are never recorded.")
		fmt.Println()
		fmt.Println("Environment:")
		fmt.Println("  NXSTEG_HISTORY     Database path (default: <config dir>/nxsteg/history.db)")
		fmt.Println("  NXSTEG_NO_HISTORY  Set to 1 to stop recording")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --clear      Remove all records")
		fmt.Println("  --show ID    Print one record in full, including the payload SHA-256")
		fmt.Println("  --delete ID  Remove one record")
	case "compact":
		fmt.Println("nxsteg compact")
		fmt.Println()
		fmt.Println("Compacts the history database to reclaim unused disk space.")
		fmt.Println("Useful after 'nxsteg history --clear'.")
	case "keyring":
		fmt.Println("nxsteg keyring <save|delete|status> NAME")
		fmt.Println()
		fmt.Println("Manages password profiles in the OS keyring.")
		fmt.Println("A saved profile can be used with --keyring NAME instead of -p.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  nxsteg keyring save work")
		fmt.Println("  nxsteg embed -i cat.png -e notes.txt -o out.png --keyring work")
	case "menu":
		fmt.Println("nxsteg menu")
		fmt.Println()
		fmt.Println("Interactive mode: choose embed or extract and answer the prompts.")
		fmt.Println("Leave the password blank to skip encryption.")
	case "completion":
		fmt.Println("nxsteg completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(nxsteg completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(nxsteg completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  nxsteg completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}

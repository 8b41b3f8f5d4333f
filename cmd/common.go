package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/illarion/nxsteg/internal/core"
	"github.com/illarion/nxsteg/internal/crypto"
	"github.com/illarion/nxsteg/internal/frame"
	"github.com/illarion/nxsteg/internal/imageio"
	"github.com/illarion/nxsteg/internal/keyring"
	"github.com/illarion/nxsteg/internal/lsb"
	"github.com/illarion/nxsteg/internal/pixel"
	"github.com/illarion/nxsteg/internal/storage"
)

// PayloadPerm is the mode of recovered payload files
const PayloadPerm = 0600

// Environment variables read by the CLI
const (
	HistoryEnv   = "NXSTEG_HISTORY"
	NoHistoryEnv = "NXSTEG_NO_HISTORY"
)

// Exit codes
const (
	ExitGeneric           = 1
	ExitInvalidFormat     = 2
	ExitTruncated         = 3
	ExitCapacityExceeded  = 4
	ExitMalformedInput    = 5
	ExitAuthFailed        = 6
	ExitUnsupportedFormat = 7
	ExitUnreadableImage   = 8
)

// PasswordOptions selects where a password comes from
type PasswordOptions struct {
	Prompt  bool   // -p was given
	Profile string // --keyring NAME
	Confirm bool   // ask twice when prompting
}

// Enabled reports whether the run should be encrypted at all
func (o PasswordOptions) Enabled() bool {
	return o.Prompt || o.Profile != ""
}

// GetPassword resolves the password for opts: keyring profile first, then
// NXSTEG_PASSWORD, then an interactive prompt. Without -p or --keyring the
// result is absent and the payload travels unencrypted.
// The caller is responsible for calling Clear on the returned password.
func GetPassword(opts PasswordOptions) (crypto.Password, error) {
	if !opts.Enabled() {
		return crypto.NoPassword(), nil
	}

	if opts.Profile != "" {
		password, err := keyring.GetPassword(opts.Profile)
		if err != nil {
			return crypto.NoPassword(), fmt.Errorf("failed to read keyring profile: %w", err)
		}
		return crypto.NewPassword([]byte(password)), nil
	}

	if password, ok := core.PasswordFromEnv(); ok {
		return crypto.NewPassword(password), nil
	}

	if !core.IsTerminal() {
		return crypto.NoPassword(), fmt.Errorf("no terminal to prompt for a password (set %s)", core.PasswordEnv)
	}

	var (
		password []byte
		err      error
	)
	if opts.Confirm {
		password, err = core.PromptNewPassword()
	} else {
		password, err = core.PromptPassword("Payload password: ")
	}
	if err != nil {
		return crypto.NoPassword(), err
	}
	return crypto.NewPassword(password), nil
}

// GetPasswordOrExit is like GetPassword but exits on error
func GetPasswordOrExit(opts PasswordOptions) crypto.Password {
	password, err := GetPassword(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitGeneric)
	}
	return password
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	switch {
	case errors.Is(err, frame.ErrInvalidFormat):
		return ExitInvalidFormat
	case errors.Is(err, frame.ErrTruncatedData):
		return ExitTruncated
	case errors.Is(err, lsb.ErrCapacityExceeded):
		return ExitCapacityExceeded
	case errors.Is(err, crypto.ErrMalformedInput):
		return ExitMalformedInput
	case errors.Is(err, crypto.ErrAuthFailed):
		return ExitAuthFailed
	case errors.Is(err, pixel.ErrDimensionMismatch), errors.Is(err, imageio.ErrUnsupportedFormat):
		return ExitUnsupportedFormat
	case errors.Is(err, imageio.ErrUnreadableImage):
		return ExitUnreadableImage
	default:
		return ExitGeneric
	}
}

// HandleError prints err and exits with its exit code
func HandleError(err error) {
	printError(err)
	os.Exit(ExitCode(err))
}

// printError writes err to stderr with a hint where one helps
func printError(err error) {
	switch {
	case errors.Is(err, frame.ErrInvalidFormat):
		fmt.Fprintf(os.Stderr, "Error: no hidden data found (%s)\n", err)
	case errors.Is(err, frame.ErrTruncatedData):
		fmt.Fprintf(os.Stderr, "Error: hidden data is truncated (%s)\n", err)
		fmt.Fprintf(os.Stderr, "The image may have been resized or re-encoded\n")
	case errors.Is(err, lsb.ErrCapacityExceeded):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'nxsteg capacity -i <carrier>' to see how much fits\n")
	case errors.Is(err, crypto.ErrMalformedInput):
		fmt.Fprintf(os.Stderr, "Error: hidden data is not encrypted or is corrupt (%s)\n", err)
		fmt.Fprintf(os.Stderr, "Try again without -p\n")
	case errors.Is(err, crypto.ErrAuthFailed):
		fmt.Fprintf(os.Stderr, "Error: wrong password\n")
	case errors.Is(err, imageio.ErrUnsupportedFormat):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Stego images must be saved as .png or .bmp\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// HistoryPath returns the history database location
func HistoryPath() (string, error) {
	if path := os.Getenv(HistoryEnv); path != "" {
		return path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "nxsteg", "history.db"), nil
}

// HistoryEnabled reports whether runs should be journaled
func HistoryEnabled() bool {
	return os.Getenv(NoHistoryEnv) != "1"
}

func openHistory() (*storage.Storage, error) {
	path, err := HistoryPath()
	if err != nil {
		return nil, err
	}
	return storage.Open(path)
}

// recordHistory journals rec. Failures only produce a warning: the
// embed or extract itself already succeeded.
func recordHistory(rec storage.Record) {
	if !HistoryEnabled() {
		return
	}

	db, err := openHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history not recorded: %s\n", err)
		return
	}
	defer db.Close()

	if _, err := db.Append(rec); err != nil {
		fmt.Fprintf(os.Stderr, "warning: history not recorded: %s\n", err)
	}
}

// writePayload writes a recovered payload readable by the owner only.
// An existing file is narrowed to PayloadPerm before any byte is written.
func writePayload(path string, payload []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, PayloadPerm)
	if err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	if err := f.Chmod(PayloadPerm); err != nil {
		f.Close()
		return fmt.Errorf("failed to restrict payload permissions: %w", err)
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return f.Close()
}

// confirm asks a yes/no question, defaulting to yes
func confirm(question string) bool {
	fmt.Printf("%s [Y/n]: ", question)

	var response string
	fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))

	// Default is Yes, so only cancel on explicit 'n' or 'no'
	return response != "n" && response != "no"
}

func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}

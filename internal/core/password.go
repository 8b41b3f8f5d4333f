package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/illarion/nxsteg/internal/crypto"
	"golang.org/x/term"
)

// PasswordEnv names the environment variable consulted before prompting
const PasswordEnv = "NXSTEG_PASSWORD"

var ErrPasswordMismatch = errors.New("passwords do not match")

// PasswordFromEnv returns the password set in NXSTEG_PASSWORD. A variable
// that is set but empty yields an empty, present password; ok is false only
// when the variable is unset.
func PasswordFromEnv() (password []byte, ok bool) {
	value, ok := os.LookupEnv(PasswordEnv)
	if !ok {
		return nil, false
	}
	return []byte(value), true
}

// PromptPassword asks for a payload password on stderr and reads it from
// the terminal with echo disabled
func PromptPassword(prompt string) ([]byte, error) {
	return promptSecret(os.Stderr, prompt, func() ([]byte, error) {
		return term.ReadPassword(int(syscall.Stdin))
	})
}

// PromptNewPassword asks for a password to encrypt a payload with, twice.
// The copies must match since a typo makes the payload unrecoverable.
func PromptNewPassword() ([]byte, error) {
	first, err := PromptPassword("Payload password: ")
	if err != nil {
		return nil, err
	}

	again, err := PromptPassword("Repeat payload password: ")
	if err != nil {
		crypto.ClearBytes(first)
		return nil, err
	}
	defer crypto.ClearBytes(again)

	if !crypto.ConstantTimeCompare(first, again) {
		crypto.ClearBytes(first)
		return nil, ErrPasswordMismatch
	}
	return first, nil
}

func promptSecret(w io.Writer, prompt string, read func() ([]byte, error)) ([]byte, error) {
	fmt.Fprint(w, prompt)
	secret, err := read()
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return secret, nil
}

// IsTerminal reports whether stdin is an interactive terminal
func IsTerminal() bool {
	return term.IsTerminal(int(syscall.Stdin))
}

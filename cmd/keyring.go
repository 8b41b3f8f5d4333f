package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/nxsteg/internal/core"
	"github.com/illarion/nxsteg/internal/crypto"
	"github.com/illarion/nxsteg/internal/keyring"
)

// KeyringSave prompts for a password and stores it under profile
func KeyringSave(profile string) {
	password, err := core.PromptNewPassword()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitGeneric)
	}

	err = keyring.SavePassword(profile, string(password))
	crypto.ClearBytes(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		os.Exit(ExitGeneric)
	}

	fmt.Printf("Password for profile %q saved to keyring\n", profile)
	fmt.Printf("Use --keyring %s with embed, extract or verify\n", profile)
}

// KeyringDelete removes the password stored under profile
func KeyringDelete(profile string) {
	if err := keyring.DeletePassword(profile); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Printf("No password stored for profile %q\n", profile)
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitGeneric)
	}

	fmt.Printf("Password for profile %q removed from keyring\n", profile)
}

// KeyringStatus checks if a password is stored under profile
func KeyringStatus(profile string) {
	if keyring.HasPassword(profile) {
		fmt.Printf("Profile %q: stored in keyring\n", profile)
	} else {
		fmt.Printf("Profile %q: not stored\n", profile)
	}
}

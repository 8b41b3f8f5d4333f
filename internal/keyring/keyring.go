// Package keyring keeps named password profiles in the OS keyring so
// embed and extract can run without typing the password each time.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const serviceName = "nxsteg"

var (
	ErrEmptyProfile = errors.New("profile name is empty")
	ErrNotFound     = errors.New("no password stored for profile")
)

func validate(profile string) error {
	if strings.TrimSpace(profile) == "" {
		return ErrEmptyProfile
	}
	return nil
}

// SavePassword stores a password for profile in the OS keyring
func SavePassword(profile string, password string) error {
	if err := validate(profile); err != nil {
		return err
	}
	return keyring.Set(serviceName, profile, password)
}

// GetPassword retrieves the password stored for profile
func GetPassword(profile string) (string, error) {
	if err := validate(profile); err != nil {
		return "", err
	}
	password, err := keyring.Get(serviceName, profile)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, profile)
	}
	return password, err
}

// DeletePassword removes the password stored for profile
func DeletePassword(profile string) error {
	if err := validate(profile); err != nil {
		return err
	}
	err := keyring.Delete(serviceName, profile)
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, profile)
	}
	return err
}

// HasPassword checks if a password is stored for profile
func HasPassword(profile string) bool {
	_, err := GetPassword(profile)
	return err == nil
}

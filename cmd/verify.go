package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/illarion/nxsteg/internal/core"
)

// Verify extracts the payload hidden in stegoPath and compares it with
// localPath. Exits with status 1 when they differ.
func Verify(ctx context.Context, stegoPath, localPath string, opts PasswordOptions) {
	local, err := os.ReadFile(localPath)
	if err != nil {
		HandleError(fmt.Errorf("failed to read %s: %w", localPath, err))
	}

	password := GetPasswordOrExit(opts)
	defer password.Clear()

	hidden, err := core.New().ExtractFile(ctx, stegoPath, password)
	if err != nil {
		HandleError(err)
	}

	c := core.ComparePayload(filepath.Base(localPath), hidden, local)
	fmt.Printf("image  %s  %s\n", c.HiddenHash, formatSize(int64(c.HiddenBytes)))
	fmt.Printf("file   %s  %s\n", c.LocalHash, formatSize(int64(c.LocalBytes)))

	if c.Match() {
		fmt.Printf("✓ %s matches the payload hidden in %s\n", localPath, stegoPath)
		return
	}

	fmt.Println()
	if c.Text {
		fmt.Print(c.Diff)
	} else {
		fmt.Printf("Binary payload %s differs\n", filepath.Base(localPath))
	}
	os.Exit(ExitGeneric)
}

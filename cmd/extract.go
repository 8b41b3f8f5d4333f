package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/nxsteg/internal/core"
	"github.com/illarion/nxsteg/internal/storage"
)

// Extract recovers the payload hidden in stegoPath and writes it to outPath
func Extract(ctx context.Context, stegoPath, outPath string, opts PasswordOptions, force bool) {
	if _, err := os.Stat(outPath); err == nil && !force {
		if !confirm(fmt.Sprintf("%s already exists. Overwrite?", outPath)) {
			fmt.Println("Cancelled")
			return
		}
	}

	password := GetPasswordOrExit(opts)
	defer password.Clear()

	payload, err := core.New().ExtractFile(ctx, stegoPath, password)
	if err != nil {
		HandleError(err)
	}

	if err := writePayload(outPath, payload); err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Extracted successfully → %s (%s)\n", outPath, formatSize(int64(len(payload))))

	recordHistory(storage.Record{
		Op:           storage.OpExtract,
		Input:        stegoPath,
		Output:       outPath,
		PayloadBytes: len(payload),
		PayloadHash:  core.HashPayload(payload),
		Encrypted:    password.Present(),
	})
}

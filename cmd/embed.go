package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/nxsteg/internal/core"
	"github.com/illarion/nxsteg/internal/storage"
)

// Embed hides the file at payloadPath inside carrierPath and writes the
// stego image to outPath
func Embed(ctx context.Context, carrierPath, payloadPath, outPath string, opts PasswordOptions) {
	payload, err := os.ReadFile(payloadPath)
	if err != nil {
		HandleError(fmt.Errorf("failed to read payload: %w", err))
	}

	opts.Confirm = true
	password := GetPasswordOrExit(opts)
	defer password.Clear()

	report, err := core.New().EmbedFile(ctx, carrierPath, payload, outPath, password)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Embedded successfully → %s\n", outPath)
	fmt.Printf("  %s hidden in %dx%d carrier (%.1f%% of capacity)\n",
		formatSize(int64(report.PayloadBytes)), report.Width, report.Height, report.UsedPercent())
	if !report.Encrypted {
		fmt.Fprintln(os.Stderr, "warning: payload is not encrypted, anyone can extract it")
	}

	recordHistory(storage.Record{
		Op:           storage.OpEmbed,
		Input:        carrierPath,
		Output:       outPath,
		Width:        report.Width,
		Height:       report.Height,
		CarrierBytes: report.CarrierBytes,
		FrameBytes:   report.FrameBytes,
		PayloadBytes: report.PayloadBytes,
		PayloadHash:  report.PayloadHash,
		Encrypted:    report.Encrypted,
	})
}

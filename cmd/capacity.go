package cmd

import (
	"fmt"

	"github.com/illarion/nxsteg/internal/core"
)

// Capacity prints how much data the carrier image can hold
func Capacity(carrierPath string) {
	info, err := core.New().CapacityFile(carrierPath)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Carrier: %s (%dx%d)\n", carrierPath, info.Width, info.Height)
	fmt.Printf("  Channel bytes:    %d\n", info.CarrierBytes)
	fmt.Printf("  Frame capacity:   %s\n", formatSize(int64(info.FrameBytes)))
	fmt.Printf("  Max payload:      %s\n", describeMax(info.MaxPlain))
	fmt.Printf("  Max with -p:      %s\n", describeMax(info.MaxEncrypted))
}

func describeMax(n int) string {
	if n < 0 {
		return "nothing fits"
	}
	return formatSize(int64(n))
}

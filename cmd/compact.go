package cmd

import (
	"fmt"
	"os"
)

// Compact compacts the history database to reclaim unused space
func Compact() {
	db, err := openHistory()
	if err != nil {
		HandleError(err)
	}
	defer db.Close()

	// Get file size before
	info, err := os.Stat(db.Path())
	if err != nil {
		HandleError(err)
	}
	sizeBefore := info.Size()

	if err := db.Compact(); err != nil {
		HandleError(err)
	}

	// Get file size after
	info, err = os.Stat(db.Path())
	if err != nil {
		HandleError(err)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}

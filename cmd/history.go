package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/illarion/nxsteg/internal/storage"
)

// HistoryOptions selects what the history command does. With no field set
// it lists every record.
type HistoryOptions struct {
	Clear  bool
	Show   uint64 // print one record in full
	Delete uint64 // remove one record
}

// History lists journaled embed and extract runs, shows or removes a
// single record, or clears them all
func History(opts HistoryOptions) {
	db, err := openHistory()
	if err != nil {
		HandleError(err)
	}
	defer db.Close()

	switch {
	case opts.Clear:
		removed, err := db.Clear()
		if err != nil {
			HandleError(err)
		}
		fmt.Printf("Removed %d history record(s)\n", removed)
		fmt.Println("Run 'nxsteg compact' to reclaim disk space")
	case opts.Show != 0:
		rec, err := db.Get(opts.Show)
		if err != nil {
			handleRecordError(err, opts.Show)
		}
		printRecord(rec)
	case opts.Delete != 0:
		if err := db.Delete(opts.Delete); err != nil {
			handleRecordError(err, opts.Delete)
		}
		fmt.Printf("Deleted history record %d\n", opts.Delete)
	default:
		listHistory(db)
	}
}

func handleRecordError(err error, id uint64) {
	if errors.Is(err, storage.ErrRecordNotFound) {
		HandleError(fmt.Errorf("%w: %d (see 'nxsteg history')", err, id))
	}
	HandleError(err)
}

func listHistory(db *storage.Storage) {
	records, err := db.List()
	if err != nil {
		HandleError(err)
	}

	if created, err := db.Created(); err == nil {
		fmt.Printf("History since %s (%s)\n\n", created.Format(time.RFC3339), db.Path())
	}

	if len(records) == 0 {
		fmt.Println("No history")
		if !HistoryEnabled() {
			fmt.Printf("Recording is disabled (%s=1)\n", NoHistoryEnv)
		}
		return
	}

	for _, rec := range records {
		lock := " "
		if rec.Encrypted {
			lock = "*"
		}
		fmt.Printf("%4d  %s  %-7s %s %s -> %s (%s)\n",
			rec.ID, rec.Time.Format(time.RFC3339), rec.Op, lock, rec.Input, rec.Output, formatSize(int64(rec.PayloadBytes)))
	}
	fmt.Printf("\n%d record(s), * = encrypted. Use 'nxsteg history --show ID' for details\n", len(records))
}

func printRecord(rec *storage.Record) {
	fmt.Printf("Record %d\n", rec.ID)
	fmt.Printf("  Time:       %s\n", rec.Time.Format(time.RFC3339))
	fmt.Printf("  Operation:  %s\n", rec.Op)
	fmt.Printf("  Input:      %s\n", rec.Input)
	fmt.Printf("  Output:     %s\n", rec.Output)
	if rec.Width > 0 {
		fmt.Printf("  Carrier:    %dx%d, %d channel bytes, %d frame bytes used\n",
			rec.Width, rec.Height, rec.CarrierBytes, rec.FrameBytes)
	}
	fmt.Printf("  Payload:    %s\n", formatSize(int64(rec.PayloadBytes)))
	fmt.Printf("  SHA-256:    %s\n", rec.PayloadHash)
	fmt.Printf("  Encrypted:  %v\n", rec.Encrypted)
}

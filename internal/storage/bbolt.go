package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket  = []byte("config")  // Schema version, timestamps
	HistoryBucket = []byte("history") // Embed/extract records
)

// Config keys
var (
	ConfigVersion = []byte("version")
	ConfigCreated = []byte("created")
)

const (
	SchemaVersion = "1"
	DirPerm       = 0700
	FilePerm      = 0600
	openTimeout   = 2 * time.Second
)

var ErrRecordNotFound = errors.New("history record not found")

// Operation is the kind of pipeline run a record describes
type Operation string

const (
	OpEmbed   Operation = "embed"
	OpExtract Operation = "extract"
)

// Record describes one embed or extract run
type Record struct {
	ID           uint64    `json:"id"`
	Time         time.Time `json:"time"`
	Op           Operation `json:"op"`
	Input        string    `json:"input"`
	Output       string    `json:"output"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	CarrierBytes int       `json:"carrierBytes,omitempty"`
	FrameBytes   int       `json:"frameBytes,omitempty"`
	PayloadBytes int       `json:"payloadBytes"`
	PayloadHash  string    `json:"payloadHash"`
	Encrypted    bool      `json:"encrypted"`
}

// Storage provides BBolt-based storage for the history journal
type Storage struct {
	db *bolt.DB
}

// Open opens or creates a history database, creating parent directories
// and the bucket structure as needed
func Open(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := bolt.Open(path, FilePerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

func (s *Storage) initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, HistoryBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if config.Get(ConfigVersion) != nil {
			return nil
		}
		if err := config.Put(ConfigVersion, []byte(SchemaVersion)); err != nil {
			return err
		}
		created, _ := time.Now().MarshalBinary()
		return config.Put(ConfigCreated, created)
	})
}

// Created returns when the database was first initialized
func (s *Storage) Created() (time.Time, error) {
	var created time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(ConfigBucket).Get(ConfigCreated)
		if data == nil {
			return fmt.Errorf("created time not found")
		}
		return created.UnmarshalBinary(data)
	})
	return created, err
}

// Append stores rec and returns its assigned ID. A zero rec.Time is
// replaced with the current time.
func (s *Storage) Append(rec Record) (uint64, error) {
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		history := tx.Bucket(HistoryBucket)
		id, err := history.NextSequence()
		if err != nil {
			return err
		}
		rec.ID = id

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return history.Put(itob(id), data)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to append history record: %w", err)
	}
	return rec.ID, nil
}

// Get returns the record with the given ID
func (s *Storage) Get(id uint64) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(HistoryBucket).Get(itob(id))
		if data == nil {
			return ErrRecordNotFound
		}
		rec = &Record{}
		return json.Unmarshal(data, rec)
	})
	return rec, err
}

// List returns all records, oldest first
func (s *Storage) List() ([]Record, error) {
	var records []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(HistoryBucket).ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}

// Delete removes a single record
func (s *Storage) Delete(id uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		history := tx.Bucket(HistoryBucket)
		if history.Get(itob(id)) == nil {
			return ErrRecordNotFound
		}
		return history.Delete(itob(id))
	})
}

// Clear removes every record. IDs keep increasing afterwards.
func (s *Storage) Clear() (int, error) {
	var removed int
	err := s.db.Update(func(tx *bolt.Tx) error {
		history := tx.Bucket(HistoryBucket)
		seq := history.Sequence()
		removed = history.Stats().KeyN

		if err := tx.DeleteBucket(HistoryBucket); err != nil {
			return err
		}
		fresh, err := tx.CreateBucket(HistoryBucket)
		if err != nil {
			return err
		}
		return fresh.SetSequence(seq)
	})
	return removed, err
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after clearing history to reclaim disk space.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	dst, err := bolt.Open(tmpPath, FilePerm, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				if err := dstBucket.SetSequence(srcBucket.Sequence()); err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	s.db, err = bolt.Open(srcPath, FilePerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

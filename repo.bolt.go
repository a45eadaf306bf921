package main

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

// JournalEntry is a change event persisted into the journal with its sequence.
type JournalEntry struct {
	Seq uint64 `json:"seq"`
	ChangeEvent
}

// JournalStorage defines possible operations on the change journal.
type JournalStorage interface {
	Append(ctx context.Context, event ChangeEvent) (uint64, error)
	Latest(ctx context.Context, limit int) ([]JournalEntry, error)
}

type boltJournalStorage struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *BoltDBConfig) (*bolt.DB, error) {
	db, err := bolt.Open(config.FilePath, 0o600, &bolt.Options{Timeout: config.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltJournalStorage provides an instance of bolt-based journal storage.
func NewBoltJournalStorage(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) JournalStorage {
	return &boltJournalStorage{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the bolt-based journal storage.
func (bs *boltJournalStorage) Close() error {
	return bs.client.Close()
}

// Append stores a change event under the next bucket sequence number.
func (bs *boltJournalStorage) Append(_ context.Context, event ChangeEvent) (uint64, error) {
	eventBytes, err := codec.Marshal(event)
	if err != nil {
		return 0, err
	}
	var seq uint64
	err = bs.client.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bs.config.BucketName))
		var errS error
		seq, errS = b.NextSequence()
		if errS != nil {
			return errS
		}
		return b.Put(seqKey(seq), eventBytes)
	})
	return seq, err
}

// Latest retrieves up to limit entries starting from the newest one.
func (bs *boltJournalStorage) Latest(_ context.Context, limit int) ([]JournalEntry, error) {
	tx, err := bs.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Keys are big-endian sequences so the cursor walks them in insertion order.
	c := tx.Bucket([]byte(bs.config.BucketName)).Cursor()

	entries := []JournalEntry{}
	for k, v := c.Last(); k != nil && len(entries) < limit; k, v = c.Prev() {
		var event ChangeEvent
		if err = codec.Unmarshal(v, &event); err != nil {
			return nil, err
		}
		entries = append(entries, JournalEntry{Seq: binary.BigEndian.Uint64(k), ChangeEvent: event})
	}
	return entries, nil
}

func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

// nopJournalStorage is used when the journal is disabled.
type nopJournalStorage struct{}

func (nopJournalStorage) Append(context.Context, ChangeEvent) (uint64, error) {
	return 0, nil
}

func (nopJournalStorage) Latest(context.Context, int) ([]JournalEntry, error) {
	return []JournalEntry{}, nil
}

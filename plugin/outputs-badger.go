package plugin

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	Rt "github.com/maroda/rlcscope/types"
)

const (
	keyTimeLen   = 8
	keySourceLen = 5
	keyLen       = keyTimeLen + 1 + keySourceLen
)

type BadgerOutput struct {
	MU        sync.Mutex
	DB        *badger.DB
	BatchSize int
	Buffer    []*Rt.Snapshot
}

func NewBadgerOutput(path string, batchSize int) (*BadgerOutput, error) {
	if batchSize < 1 {
		batchSize = 1
	}

	opts := badger.DefaultOptions(path).
		WithCompression(options.ZSTD).
		WithNumVersionsToKeep(1).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		slog.Error("BadgerOutput failed to open database", slog.Any("error", err))
		return nil, fmt.Errorf("database error: %w", err)
	}

	slog.Info("BadgerOutput opened",
		slog.String("path", path),
		slog.Int("batchSize", batchSize))

	return &BadgerOutput{
		DB:        db,
		BatchSize: batchSize,
		Buffer:    make([]*Rt.Snapshot, 0, batchSize),
	}, nil
}

// WriteSnapshot queues a snapshot,
// when batchsize is reached the buffer goes to WriteBatch
func (bo *BadgerOutput) WriteSnapshot(snap *Rt.Snapshot) error {
	bo.MU.Lock()
	defer bo.MU.Unlock()

	bo.Buffer = append(bo.Buffer, snap)
	if len(bo.Buffer) >= bo.BatchSize {
		return bo.flushLocked()
	}
	return nil
}

// WriteBatch builds the key/value pairs and writes them in one badger batch
func (bo *BadgerOutput) WriteBatch(snaps []*Rt.Snapshot) error {
	wb := bo.DB.NewWriteBatch()
	defer wb.Cancel()

	for _, s := range snaps {
		v, err := SnapshotEncode(s)
		if err != nil {
			return fmt.Errorf("snapshot encode error: %w", err)
		}
		if err := wb.Set(SnapshotKey(s), v); err != nil {
			slog.Error("BadgerOutput failed to set key in batch",
				slog.Any("error", err),
				slog.Time("timestamp", s.Timestamp),
				slog.String("source", s.Source))
			return fmt.Errorf("write batch error: %w", err)
		}
	}

	if err := wb.Flush(); err != nil {
		slog.Error("BadgerOutput failed to flush batch", slog.Any("error", err))
		return fmt.Errorf("batch flush error: %w", err)
	}

	return nil
}

// Flush writes out whatever is buffered
func (bo *BadgerOutput) Flush() error {
	bo.MU.Lock()
	defer bo.MU.Unlock()
	return bo.flushLocked()
}

func (bo *BadgerOutput) flushLocked() error {
	if len(bo.Buffer) == 0 {
		return nil
	}
	err := bo.WriteBatch(bo.Buffer)
	bo.Buffer = bo.Buffer[:0] // keep capacity
	return err
}

// Close returns a Flush error but still attempts to close
func (bo *BadgerOutput) Close() error {
	flushErr := bo.Flush()
	closeErr := bo.DB.Close()

	if flushErr != nil {
		slog.Error("BadgerOutput failed to flush on close", slog.Any("error", flushErr))
		return fmt.Errorf("flush failed, close may have failed: %w", flushErr)
	}

	if closeErr != nil {
		slog.Error("BadgerOutput failed to close database", slog.Any("error", closeErr))
		return fmt.Errorf("close failed: %w", closeErr)
	}

	slog.Info("BadgerOutput closed")
	return nil
}

func (bo *BadgerOutput) Type() string { return "BadgerDB" }

// SnapshotKey creates a composite key:
// timestamp + regime + first five bytes of source
func SnapshotKey(snap *Rt.Snapshot) []byte {
	key := make([]byte, keyLen)

	// BigEndian keeps keys in chronological order
	binary.BigEndian.PutUint64(key[0:keyTimeLen], uint64(snap.Timestamp.UnixNano()))
	key[keyTimeLen] = byte(snap.Regime)
	copy(key[keyTimeLen+1:], snap.Source)

	return key
}

// SnapshotEncode serializes a snapshot for storage
func SnapshotEncode(snap *Rt.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SnapshotDecode deserializes stored snapshot data
func SnapshotDecode(data []byte) (*Rt.Snapshot, error) {
	var s Rt.Snapshot
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s)
	return &s, err
}

// QueryRange seeks to start and reads until the key time passes end
func (bo *BadgerOutput) QueryRange(start, end time.Time) ([]*Rt.Snapshot, error) {
	var snaps []*Rt.Snapshot

	seek := make([]byte, keyTimeLen)
	binary.BigEndian.PutUint64(seek, uint64(start.UnixNano()))
	stop := uint64(end.UnixNano())

	err := bo.DB.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(seek); it.Valid(); it.Next() {
			item := it.Item()
			if binary.BigEndian.Uint64(item.Key()[0:keyTimeLen]) > stop {
				break
			}

			err := item.Value(func(val []byte) error {
				snap, err := SnapshotDecode(val)
				if err != nil {
					slog.Error("BadgerOutput failed to decode snapshot", slog.Any("error", err))
					return fmt.Errorf("snapshot decode error: %w", err)
				}
				snaps = append(snaps, snap)
				return nil
			})
			if err != nil {
				return fmt.Errorf("item data error: %w", err)
			}
		}
		return nil
	})

	slog.Debug("BadgerOutput QueryRange", slog.Int("count", len(snaps)))

	return snaps, err
}

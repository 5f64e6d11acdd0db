package plugin_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	Rp "github.com/maroda/rlcscope/plugin"
	Rt "github.com/maroda/rlcscope/types"
)

func TestNewBadgerOutput(t *testing.T) {
	t.Run("Creates new struct for output", func(t *testing.T) {
		got, err := Rp.NewBadgerOutput(t.TempDir(), 10)
		assertError(t, err, nil)
		defer got.Close()
		assertInt(t, got.BatchSize, 10)
		assertStringContains(t, got.Type(), "BadgerDB")
	})

	t.Run("Batch size is at least one", func(t *testing.T) {
		got, err := Rp.NewBadgerOutput(t.TempDir(), 0)
		assertError(t, err, nil)
		defer got.Close()
		assertInt(t, got.BatchSize, 1)
	})
}

func TestBadgerOutput_WriteSnapshot(t *testing.T) {
	adapter, closedb := makeTestBadgerOutput(t)
	defer closedb()

	start := time.Now()
	snaps := mkSnapshots(start, 7)

	t.Run("Buffers until the batch is full", func(t *testing.T) {
		for _, s := range snaps[:4] {
			err := adapter.WriteSnapshot(s)
			assertError(t, err, nil)
		}
		assertInt(t, len(adapter.Buffer), 4)

		err := adapter.WriteSnapshot(snaps[4])
		assertError(t, err, nil)
		assertInt(t, len(adapter.Buffer), 0)
	})

	t.Run("Flush writes the remainder", func(t *testing.T) {
		for _, s := range snaps[5:] {
			_ = adapter.WriteSnapshot(s)
		}
		err := adapter.Flush()
		assertError(t, err, nil)

		got, err := adapter.QueryRange(start, start.Add(time.Minute))
		assertError(t, err, nil)
		assertInt(t, len(got), len(snaps))
	})
}

func TestBadgerOutput_QueryRange(t *testing.T) {
	adapter, closedb := makeTestBadgerOutput(t)
	defer closedb()

	start := time.Now()
	snaps := mkSnapshots(start, 5)
	err := adapter.WriteBatch(snaps)
	assertError(t, err, nil)

	t.Run("Returns only the range asked for, oldest first", func(t *testing.T) {
		got, err := adapter.QueryRange(start.Add(1*time.Second), start.Add(3*time.Second))
		assertError(t, err, nil)
		assertInt(t, len(got), 3)
		for i, s := range got {
			want := snaps[i+1]
			if !s.Timestamp.Equal(want.Timestamp) {
				t.Errorf("snapshot %d at %v, want %v", i, s.Timestamp, want.Timestamp)
			}
			if s.Regime != want.Regime || s.Params != want.Params {
				t.Errorf("snapshot %d = %+v, want %+v", i, s, want)
			}
		}
	})

	t.Run("Empty range returns nothing", func(t *testing.T) {
		got, err := adapter.QueryRange(start.Add(time.Hour), start.Add(2*time.Hour))
		assertError(t, err, nil)
		assertInt(t, len(got), 0)
	})
}

func TestBadgerOutput_SnapshotKey(t *testing.T) {
	snap := &Rt.Snapshot{
		Timestamp: time.Now(),
		Source:    "websocket",
		Regime:    Rt.Underdamped,
	}

	t.Run("Key ends with regime and five bytes of source", func(t *testing.T) {
		got := Rp.SnapshotKey(snap)
		assertInt(t, len(got), 14)
		if got[8] != byte(Rt.Underdamped) {
			t.Errorf("regime byte = %d, want %d", got[8], Rt.Underdamped)
		}
		if !bytes.Equal(got[9:], []byte("webso")) {
			t.Errorf("source bytes = %q, want %q", got[9:], "webso")
		}
	})

	t.Run("Later snapshots sort after earlier ones", func(t *testing.T) {
		later := *snap
		later.Timestamp = snap.Timestamp.Add(time.Millisecond)
		if bytes.Compare(Rp.SnapshotKey(snap), Rp.SnapshotKey(&later)) >= 0 {
			t.Error("keys are not in chronological order")
		}
	})

	t.Run("Encoded snapshot decodes unchanged", func(t *testing.T) {
		data, err := Rp.SnapshotEncode(snap)
		assertError(t, err, nil)
		got, err := Rp.SnapshotDecode(data)
		assertError(t, err, nil)
		if got.Regime != snap.Regime || got.Source != snap.Source || !got.Timestamp.Equal(snap.Timestamp) {
			t.Errorf("decoded %+v, want %+v", got, snap)
		}
	})
}

// Helpers //

func makeTestBadgerOutput(t *testing.T) (*Rp.BadgerOutput, func()) {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	assertError(t, err, nil)

	adapter := &Rp.BadgerOutput{
		DB:        db,
		BatchSize: 5,
		Buffer:    make([]*Rt.Snapshot, 0, 5),
	}

	cleanup := func() {
		adapter.Close()
	}

	return adapter, cleanup
}

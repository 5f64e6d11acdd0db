package plugin_test

import (
	"testing"
	"time"

	Rp "github.com/maroda/rlcscope/plugin"
)

func TestMemoryOutput(t *testing.T) {
	start := time.Now()

	t.Run("Defaults capacity when not given", func(t *testing.T) {
		mo := Rp.NewMemoryOutput(0)
		assertInt(t, mo.Capacity, Rp.DefaultMemoryCapacity)
	})

	t.Run("Returns snapshots inside the range oldest first", func(t *testing.T) {
		mo := Rp.NewMemoryOutput(10)
		err := mo.WriteBatch(mkSnapshots(start, 5))
		assertError(t, err, nil)

		got, err := mo.QueryRange(start.Add(1*time.Second), start.Add(3*time.Second))
		assertError(t, err, nil)
		assertInt(t, len(got), 3)
		if len(got) == 3 && !got[0].Timestamp.Equal(start.Add(1*time.Second)) {
			t.Errorf("first snapshot at %v, want %v", got[0].Timestamp, start.Add(1*time.Second))
		}
	})

	t.Run("Drops the oldest when full", func(t *testing.T) {
		mo := Rp.NewMemoryOutput(3)
		for _, s := range mkSnapshots(start, 5) {
			err := mo.WriteSnapshot(s)
			assertError(t, err, nil)
		}
		assertInt(t, mo.Len(), 3)

		got, err := mo.QueryRange(start.Add(-time.Hour), start.Add(time.Hour))
		assertError(t, err, nil)
		assertInt(t, len(got), 3)
		if len(got) == 3 {
			if !got[0].Timestamp.Equal(start.Add(2 * time.Second)) {
				t.Errorf("oldest kept at %v, want %v", got[0].Timestamp, start.Add(2*time.Second))
			}
			if !got[2].Timestamp.Equal(start.Add(4 * time.Second)) {
				t.Errorf("newest kept at %v, want %v", got[2].Timestamp, start.Add(4*time.Second))
			}
		}
	})

	t.Run("Stored snapshots are copies", func(t *testing.T) {
		mo := Rp.NewMemoryOutput(3)
		snaps := mkSnapshots(start, 1)
		_ = mo.WriteSnapshot(snaps[0])
		snaps[0].Source = "changed"

		got, _ := mo.QueryRange(start, start)
		assertInt(t, len(got), 1)
		if len(got) == 1 && got[0].Source != "tui" {
			t.Errorf("stored snapshot was mutated, source %q", got[0].Source)
		}
	})
}

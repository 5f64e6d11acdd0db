package plugin

/*

	The Adapter sits aside /rlcscope/
	Contains the archive interface for recomputed snapshots

*/

import (
	"time"

	Rt "github.com/maroda/rlcscope/types"
)

// OutputAdapter can be used to define a place for snapshots to go,
// one at a time or in batches if supported by the output type.
type OutputAdapter interface {
	WriteSnapshot(snap *Rt.Snapshot) error                   // Write singleton snapshot
	WriteBatch(snaps []*Rt.Snapshot) error                   // Write batches of snapshots
	QueryRange(start, end time.Time) ([]*Rt.Snapshot, error) // Inclusive time range query, oldest first
	Flush() error                                            // Flush any buffered data
	Close() error                                            // Close the adapter and release resources
	Type() string                                            // ID for output
}

// OutputConfig carries what any output may need to open
type OutputConfig struct {
	Path      string // on-disk location, badger only
	BatchSize int    // buffered writes before a flush
	Capacity  int    // retained snapshots, memory only
}

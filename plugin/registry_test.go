package plugin_test

import (
	"testing"

	Rp "github.com/maroda/rlcscope/plugin"
)

func TestOutputLookup(t *testing.T) {
	t.Run("Returns memory output", func(t *testing.T) {
		got, err := Rp.OutputLookup("memory", Rp.OutputConfig{Capacity: 3})
		assertError(t, err, nil)
		assertStringContains(t, got.Type(), "Memory")
	})

	t.Run("Returns badger output", func(t *testing.T) {
		got, err := Rp.OutputLookup("badger", Rp.OutputConfig{Path: t.TempDir(), BatchSize: 2})
		assertError(t, err, nil)
		defer got.Close()
		assertStringContains(t, got.Type(), "BadgerDB")
	})

	t.Run("Returns error if output doesn't exist", func(t *testing.T) {
		_, err := Rp.OutputLookup("craquemattic", Rp.OutputConfig{})
		assertGotError(t, err)
	})
}

package plugin

import "fmt"

// Outputs is a global map of OutputAdapter factories.
var Outputs = map[string]func(cfg OutputConfig) (OutputAdapter, error){
	"badger": func(cfg OutputConfig) (OutputAdapter, error) {
		return NewBadgerOutput(cfg.Path, cfg.BatchSize)
	},
	"memory": func(cfg OutputConfig) (OutputAdapter, error) {
		return NewMemoryOutput(cfg.Capacity), nil
	},
}

func OutputLookup(name string, cfg OutputConfig) (OutputAdapter, error) {
	factory, ok := Outputs[name]
	if !ok {
		return nil, fmt.Errorf("unknown output: %s", name)
	}
	return factory(cfg)
}

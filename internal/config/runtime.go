package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Runtime is re-read every main control tick; it carries the
// operator's requested park count.
type Runtime struct {
	DeallocatedThreads uint32 `json:"deallocated_threads"`
	OperatorUpdate     int64  `json:"operator_update"`
}

// LoadRuntime reads the runtime config at path. In the main control
// loop a read failure is treated as transient: the supervisor logs it
// and keeps the current capacity (see error taxonomy, "Transient I/O").
// At startup there is no previous value to keep, so Supervisor.Startup
// returns the error.
func LoadRuntime(path string) (*Runtime, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open runtime config: %w", err)
	}
	defer f.Close()

	var r Runtime
	if err := json.NewDecoder(f).Decode(&r); err != nil {
		return nil, fmt.Errorf("config: decode runtime config: %w", err)
	}
	return &r, nil
}

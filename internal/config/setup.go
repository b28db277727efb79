// Package config loads the two on-disk configuration files the
// controller reads: the setup config (read once at startup) and the
// runtime config (re-read every control tick). Both are plain JSON,
// grounded field-for-field on cfg_handler.rs's RandomxCfg/RuntimeCfg.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ThreadModel enumerates the supported worker threading strategies.
// Only "single" is implemented; the field exists so the on-disk schema
// can grow without a breaking change.
type ThreadModel string

const ThreadModelSingle ThreadModel = "single"

// PuzzleType enumerates the supported difficulty metrics. Only
// "zeros" (leading zero bit count) is implemented.
type PuzzleType string

const PuzzleTypeZeros PuzzleType = "zeros"

// Setup is the one-time, read-once-at-startup configuration.
type Setup struct {
	NumCores         uint32      `json:"num_cores"`
	ThreadsPerCore   uint32      `json:"threads_per_core"`
	Keypair          string      `json:"keypair"`
	ThreadModel      ThreadModel `json:"thread_model"`
	Puzzle           PuzzleType  `json:"puzzle"`
	Difficulty       uint32      `json:"difficulty"`
	KeyBlockchainURI string      `json:"key_blockchain_uri"`
}

// LoadSetup reads and validates the setup config at path. Any
// validation failure is startup-fatal per the error taxonomy.
func LoadSetup(path string) (*Setup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open setup config: %w", err)
	}
	defer f.Close()

	var s Setup
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("config: decode setup config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate enforces the startup-fatal invariants from spec.md §4.5
// step 1: thread model must be single, puzzle must be leading-zeros,
// and both capacity fields must be positive.
func (s *Setup) Validate() error {
	if s.ThreadModel != ThreadModelSingle {
		return fmt.Errorf("config: unsupported thread_model %q, only %q is implemented", s.ThreadModel, ThreadModelSingle)
	}
	if s.Puzzle != PuzzleTypeZeros {
		return fmt.Errorf("config: unsupported puzzle %q, only %q is implemented", s.Puzzle, PuzzleTypeZeros)
	}
	if s.NumCores < 1 {
		return fmt.Errorf("config: num_cores must be >= 1, got %d", s.NumCores)
	}
	if s.ThreadsPerCore < 1 {
		return fmt.Errorf("config: threads_per_core must be >= 1, got %d", s.ThreadsPerCore)
	}
	return nil
}

// MaxWorkers is num_cores * threads_per_core (I1's upper bound).
func (s *Setup) MaxWorkers() uint32 {
	return s.NumCores * s.ThreadsPerCore
}

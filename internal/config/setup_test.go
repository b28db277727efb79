package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, dir, name string, v interface{}) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, json.NewEncoder(f).Encode(v))
	return path
}

func TestLoadSetupValid(t *testing.T) {
	dir := t.TempDir()
	path := writeJSON(t, dir, "randomx_cfg.json", Setup{
		NumCores:         4,
		ThreadsPerCore:   2,
		ThreadModel:      ThreadModelSingle,
		Puzzle:           PuzzleTypeZeros,
		Difficulty:       6,
		KeyBlockchainURI: "mock://keyblock",
	})

	s, err := LoadSetup(path)
	require.NoError(t, err)
	require.EqualValues(t, 8, s.MaxWorkers())
}

func TestValidateRejectsUnsupportedThreadModel(t *testing.T) {
	s := Setup{NumCores: 1, ThreadsPerCore: 1, ThreadModel: "pooled", Puzzle: PuzzleTypeZeros}
	require.Error(t, s.Validate())
}

func TestValidateRejectsUnsupportedPuzzle(t *testing.T) {
	s := Setup{NumCores: 1, ThreadsPerCore: 1, ThreadModel: ThreadModelSingle, Puzzle: "leading-ones"}
	require.Error(t, s.Validate())
}

func TestValidateRejectsZeroCapacity(t *testing.T) {
	s := Setup{NumCores: 0, ThreadsPerCore: 1, ThreadModel: ThreadModelSingle, Puzzle: PuzzleTypeZeros}
	require.Error(t, s.Validate())
}

func TestLoadRuntimeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeJSON(t, dir, "runtime_cfg.json", Runtime{DeallocatedThreads: 3, OperatorUpdate: 123})

	rt, err := LoadRuntime(path)
	require.NoError(t, err)
	require.EqualValues(t, 3, rt.DeallocatedThreads)
}

func TestLoadRuntimeMissingFileIsError(t *testing.T) {
	_, err := LoadRuntime(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

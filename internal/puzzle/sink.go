package puzzle

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/boneyard93501/randomx-controller/internal/signer"
)

// Sink writes one file per solution under a directory, filename
// hex(digest)+".json", per spec.md §4.2. A write failure is returned
// to the caller and never aborts the process; duplicate filenames
// (the same digest rediscovered) may overwrite.
type Sink struct {
	dir string
}

// NewSink returns a Sink rooted at dir.
func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

// Write serializes sol to <dir>/hex(sol.Hash).json.
func (s *Sink) Write(sol *Solution) error {
	dir := s.dir
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	path := fmt.Sprintf("%s%s.json", dir, signer.Hex(sol.Hash))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("puzzle: create solution file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(sol); err != nil {
		return fmt.Errorf("puzzle: encode solution: %w", err)
	}
	return nil
}

package health

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/spf13/afero"

	"github.com/jeanpaul/registrar/internal/storage"
)

type Status struct {
	Path     string
	Exists   bool
	Readable bool
	Size     int64
	Students int
	Teachers int
	// Warnings lists the lines a load would skip.
	Warnings []string
	// Diff is a unified diff from the file on disk to what the next save
	// would write. Empty when the file is already canonical.
	Diff    string
	Error   string
	Latency time.Duration
}

// Healthy reports whether the file loads without skipping anything.
func (s Status) Healthy() bool {
	return s.Error == "" && len(s.Warnings) == 0
}

// Check inspects the data file at path on fs.
func Check(fs afero.Fs, path string) (s Status) {
	s.Path = path
	start := time.Now()
	defer func() { s.Latency = time.Since(start) }()

	info, err := fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.Readable = true
			return s
		}
		s.Error = err.Error()
		return s
	}
	s.Exists = true
	s.Size = info.Size()
	if info.IsDir() {
		s.Error = path + " is a directory"
		return s
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		s.Error = err.Error()
		return s
	}
	s.Readable = true

	snap, err := storage.Decode(bytes.NewReader(raw))
	if err != nil {
		s.Error = err.Error()
		return s
	}
	s.Students = len(snap.Students)
	s.Teachers = len(snap.Teachers)
	for _, w := range snap.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}

	s.Diff = Diff(path, string(raw), string(storage.Encode(snap.Students, snap.Teachers)))
	return s
}

// Diff returns a unified diff between two versions of a data file.
func Diff(path, before, after string) string {
	if before == after {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(path), before, after)
	return fmt.Sprint(gotextdiff.ToUnified(path, path+" (rewritten)", before, edits))
}

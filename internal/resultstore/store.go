package resultstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/vk/runexp/internal/ctxlog"
)

// Store appends rows to a CSV file and remembers which parameter tuples it
// holds. It is safe for concurrent use, though a run funnels all appends
// through a single goroutine.
type Store struct {
	path   string
	schema Schema

	mu    sync.Mutex
	f     *os.File
	index map[string]struct{}
	rows  int
}

// Open opens or creates the file at path. A missing or empty file gets the
// schema's header. An existing file must carry exactly that header; rows with
// the wrong number of fields are ignored.
func Open(ctx context.Context, path string, schema Schema) (*Store, error) {
	logger := ctxlog.FromContext(ctx).With("path", path)
	s := &Store{path: path, schema: schema, index: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading result file: %w", err)
	}

	var keep int64
	if len(data) > 0 {
		keep, err = s.load(data)
		if err != nil {
			return nil, err
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating result directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening result file: %w", err)
	}
	s.f = f

	switch {
	case len(data) == 0 || keep == 0:
		if err := f.Truncate(0); err != nil {
			f.Close()
			return nil, fmt.Errorf("resetting result file: %w", err)
		}
		if err := s.writeRecord(schema.Header()); err != nil {
			f.Close()
			return nil, err
		}
		logger.Debug("Created result file.", "columns", len(schema.Header()))
	case keep < int64(len(data)):
		if err := f.Truncate(keep); err != nil {
			f.Close()
			return nil, fmt.Errorf("truncating damaged tail: %w", err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, fmt.Errorf("syncing result file: %w", err)
		}
		logger.Warn("Removed incomplete trailing row from result file.", "bytes", int64(len(data))-keep)
	}

	logger.Debug("Result store opened.", "rows", s.rows)
	return s, nil
}

// load validates the header and indexes existing rows. It returns how many
// bytes of data are intact; a zero length means the file holds no header.
// Rows are always written with their terminator, so a final row without one
// is a torn write and is never indexed.
func (s *Store) load(data []byte) (int64, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: reading header: %v", ErrCorrupt, err)
	}
	want := s.schema.Header()
	if !slices.Equal(header, want) {
		return 0, &SchemaError{Path: s.path, Expected: want, Found: header}
	}

	terminated := bytes.HasSuffix(data, []byte("\n"))
	size := int64(len(data))
	if !terminated && r.InputOffset() >= size {
		return 0, nil
	}
	nparams := len(s.schema.Params)
	for {
		start := r.InputOffset()
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return size, nil
		}
		if err != nil {
			if !terminated || r.InputOffset() >= size {
				return start, nil
			}
			return 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}

		if !terminated && r.InputOffset() >= size {
			return start, nil
		}
		if len(rec) != len(want) {
			continue
		}
		s.index[key(rec[:nparams])] = struct{}{}
		s.rows++
	}
}

func (s *Store) writeRecord(rec []string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(rec); err != nil {
		return fmt.Errorf("encoding row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encoding row: %w", err)
	}
	if _, err := s.f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing result file: %w", err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("syncing result file: %w", err)
	}
	return nil
}

// Append durably writes row and records its parameters in the index.
func (s *Store) Append(row Row) error {
	rec, err := s.schema.record(row)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrClosed
	}
	if err := s.writeRecord(rec); err != nil {
		return err
	}
	s.index[key(row.Params)] = struct{}{}
	s.rows++
	return nil
}

// Contains reports whether a row with these parameter values exists.
func (s *Store) Contains(params []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[key(params)]
	return ok
}

// Len returns the number of indexed rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

// Close releases the file. Later appends fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

package state

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zotcast/zotcast/internal/core/domain"
	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/logx"
)

// Required state table columns.
const (
	colCollectionID = "subcollectionID"
	colLastDate     = "lastDate"
	colChannel      = "channel"
)

// Store reads and rewrites the watermark table at a fixed path.
type Store struct {
	path string
	log  logx.Logger

	// columns is the header captured by the last Load, so Save can keep
	// the file's column order. Empty until the first successful Load.
	columns []string
}

var _ driven.StateStore = (*Store)(nil)

// NewStore creates a store for the state file at path. The file is not
// touched until Load or Save is called.
func NewStore(path string, log logx.Logger) *Store {
	return &Store{path: path, log: log}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole table. A missing file or a missing required column
// is an error: an unreadable table must stop the run, not silently behave
// like an empty one.
func (s *Store) Load(ctx context.Context) ([]domain.WatermarkRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening state file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("state file %s is empty", s.path)
		}
		return nil, fmt.Errorf("reading state header: %w", err)
	}
	// Spreadsheet exports prepend a BOM to the first header cell.
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range []string{colCollectionID, colLastDate, colChannel} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrStateColumnMissing, required)
		}
	}

	var rows []domain.WatermarkRow
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading state row: %w", err)
		}
		line++

		row := domain.WatermarkRow{
			CollectionID: rec[idx[colCollectionID]],
			LastDate:     rec[idx[colLastDate]],
			Channel:      rec[idx[colChannel]],
		}
		if strings.TrimSpace(row.CollectionID) == "" {
			s.log.Warn("skipping state row without collection ID",
				logx.String("path", s.path),
				logx.Int("line", line))
			continue
		}
		for i, name := range header {
			if name == colCollectionID || name == colLastDate || name == colChannel {
				continue
			}
			if row.Extra == nil {
				row.Extra = make(map[string]string)
			}
			row.Extra[name] = rec[i]
		}
		rows = append(rows, row)
	}

	s.columns = append([]string(nil), header...)
	return rows, nil
}

// Save atomically rewrites the table: the rows are written to a temp file
// in the same directory and renamed over the original. Column order follows
// the last loaded header; without one, the required columns come first and
// any extra columns follow in sorted order.
func (s *Store) Save(ctx context.Context, rows []domain.WatermarkRow) error {
	cols := s.columns
	if len(cols) == 0 {
		cols = defaultColumns(rows)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()
	// Removes the temp file on error paths; after a successful rename the
	// name no longer exists and this is a no-op.
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(cols); err != nil {
		tmp.Close()
		return fmt.Errorf("writing state header: %w", err)
	}
	for _, row := range rows {
		rec := make([]string, len(cols))
		for i, name := range cols {
			switch name {
			case colCollectionID:
				rec[i] = row.CollectionID
			case colLastDate:
				rec[i] = row.LastDate
			case colChannel:
				rec[i] = row.Channel
			default:
				rec[i] = row.Extra[name]
			}
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("writing state row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp state file: %w", err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("setting state file mode: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}

	s.log.Debug("state file saved",
		logx.String("path", s.path),
		logx.Int("rows", len(rows)))

	return nil
}

// defaultColumns builds a header for tables that were never loaded from
// disk: the required columns first, then any extras in sorted order.
func defaultColumns(rows []domain.WatermarkRow) []string {
	cols := []string{colCollectionID, colLastDate, colChannel}

	seen := make(map[string]bool)
	for _, row := range rows {
		for name := range row.Extra {
			seen[name] = true
		}
	}

	extras := make([]string, 0, len(seen))
	for name := range seen {
		extras = append(extras, name)
	}
	sort.Strings(extras)

	return append(cols, extras...)
}

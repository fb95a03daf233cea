package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/roadpulse/roadpulse/internal/models"
)

// CSVStore appends observation records to one delimited-text dataset per
// city: a header row followed by one row per observation, in capture order.
//
// Appends rewrite the dataset through a temp file in the same directory and
// atomically rename it over the original, so a failure mid-write can never
// truncate or duplicate prior rows. The header of an existing dataset is
// authoritative: later records are projected onto it, and absent optionals
// become empty cells rather than removed columns.
type CSVStore struct {
	dir string
	mu  sync.Mutex
}

func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

// Path returns the dataset file for a city.
func (s *CSVStore) Path(city string) string {
	return filepath.Join(s.dir, fmt.Sprintf("traffic_weather_data_%s.csv", CityKey(city)))
}

func (s *CSVStore) Append(ctx context.Context, city string, rec *models.ObservationRecord) error {
	if err := ctx.Err(); err != nil {
		return &StoreError{Kind: IOFailure, City: city, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &StoreError{Kind: IOFailure, City: city, Err: err}
	}

	path := s.Path(city)
	header := Columns()
	var existing [][]string

	rows, err := readDataset(path)
	switch {
	case os.IsNotExist(err):
		// first observation for this city, canonical header applies
	case err != nil:
		return &StoreError{Kind: IOFailure, City: city, Err: err}
	case len(rows) > 0:
		header = rows[0]
		existing = rows[1:]
		if err := checkHeader(header); err != nil {
			return &StoreError{Kind: SchemaMismatch, City: city, Err: err}
		}
	}

	if err := s.rewrite(path, header, existing, newRow(rec).cells(header)); err != nil {
		return &StoreError{Kind: IOFailure, City: city, Err: err}
	}
	return nil
}

func (s *CSVStore) rewrite(path string, header []string, existing [][]string, next []string) error {
	tmp, err := os.CreateTemp(s.dir, ".dataset-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	for _, line := range existing {
		if err := w.Write(line); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Write(next); err != nil {
		tmp.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func readDataset(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// checkHeader verifies that every column of an existing dataset is one the
// engine still produces. The engine's field set must stay a superset of the
// file's header for appends to remain schema-stable.
func checkHeader(header []string) error {
	known := make(map[string]bool, len(Columns()))
	for _, col := range Columns() {
		known[col] = true
	}
	for _, col := range header {
		if !known[col] {
			return fmt.Errorf("dataset has unknown column %q", col)
		}
	}
	return nil
}

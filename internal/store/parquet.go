package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/roadpulse/roadpulse/internal/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// ParquetStore writes one Parquet file per city. Rows are flushed in call
// order; the file is finalized on Close.
type ParquetStore struct {
	dir     string
	mu      sync.Mutex
	writers map[string]*writer.ParquetWriter
	files   map[string]source.ParquetFile
}

func NewParquetStore(dir string) *ParquetStore {
	return &ParquetStore{
		dir:     dir,
		writers: make(map[string]*writer.ParquetWriter),
		files:   make(map[string]source.ParquetFile),
	}
}

func (s *ParquetStore) Append(ctx context.Context, city string, rec *models.ObservationRecord) error {
	if err := ctx.Err(); err != nil {
		return &StoreError{Kind: IOFailure, City: city, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := CityKey(city)
	pw, ok := s.writers[key]
	if !ok {
		var err error
		pw, err = s.createWriter(key)
		if err != nil {
			return &StoreError{Kind: IOFailure, City: city, Err: err}
		}
	}

	if err := pw.Write(*newRow(rec)); err != nil {
		return &StoreError{Kind: IOFailure, City: city, Err: err}
	}
	return nil
}

func (s *ParquetStore) createWriter(key string) (*writer.ParquetWriter, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, fmt.Sprintf("traffic_weather_data_%s.parquet", key))
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create local file writer: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, new(row), 4)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	s.writers[key] = pw
	s.files[key] = fw
	return pw, nil
}

func (s *ParquetStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	for key, pw := range s.writers {
		if err := pw.WriteStop(); err != nil {
			lastErr = err
		}
		if f, ok := s.files[key]; ok {
			if err := f.Close(); err != nil {
				lastErr = err
			}
		}
	}
	return lastErr
}

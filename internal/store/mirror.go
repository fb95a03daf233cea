package store

import (
	"context"
	"os"
	"path"

	"github.com/roadpulse/roadpulse/internal/models"
	"github.com/rs/zerolog/log"
)

// Uploader pushes a dataset object to remote storage.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte) error
}

// MirroredCSVStore wraps a CSVStore and uploads the city's dataset after each
// successful append. The local dataset is the source of truth: a failed
// upload is logged and the append still succeeds.
type MirroredCSVStore struct {
	inner    *CSVStore
	uploader Uploader
	prefix   string
}

func NewMirroredCSVStore(inner *CSVStore, uploader Uploader, prefix string) *MirroredCSVStore {
	return &MirroredCSVStore{inner: inner, uploader: uploader, prefix: prefix}
}

func (s *MirroredCSVStore) Append(ctx context.Context, city string, rec *models.ObservationRecord) error {
	if err := s.inner.Append(ctx, city, rec); err != nil {
		return err
	}

	filePath := s.inner.Path(city)
	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Warn().Err(err).Str("city", city).Msg("could not read dataset for mirroring")
		return nil
	}

	key := path.Join(s.prefix, path.Base(filePath))
	if err := s.uploader.Upload(ctx, key, data); err != nil {
		log.Warn().Err(err).Str("city", city).Str("key", key).Msg("dataset mirror upload failed")
	}
	return nil
}

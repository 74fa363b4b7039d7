package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/branchmove/branch-service/internal/branch"
	"github.com/branchmove/branch-service/internal/storage"
)

// DefaultDatasetKey is the storage key of the branch document.
const DefaultDatasetKey = "branches.json"

// FileStore reads the dataset document from storage on every lookup, so
// edits to the file are visible without a restart. Concurrent loads share
// a single read.
type FileStore struct {
	storage storage.Storage
	key     string
	group   singleflight.Group
	logger  zerolog.Logger
}

// NewFileStore creates a store reading key from s.
func NewFileStore(s storage.Storage, key string, logger zerolog.Logger) *FileStore {
	if key == "" {
		key = DefaultDatasetKey
	}
	return &FileStore{
		storage: s,
		key:     key,
		logger:  logger.With().Str("component", "file_store").Str("key", key).Logger(),
	}
}

func (s *FileStore) Kind() string { return TypeFile }

// load shares one read between concurrent callers. The read runs detached
// from any single caller's cancellation; each caller still stops waiting
// when its own ctx is done.
func (s *FileStore) load(ctx context.Context) ([]branch.Location, error) {
	readCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(s.key, func() (interface{}, error) {
		start := time.Now()
		data, err := s.storage.Get(readCtx, s.key)
		if err != nil {
			return nil, fmt.Errorf("failed to read branch dataset: %w", err)
		}
		locs, err := DecodeDataset(data)
		if err != nil {
			return nil, err
		}
		s.logger.Debug().
			Int("branches", len(locs)).
			Dur("duration", time.Since(start)).
			Msg("Loaded branch dataset")
		return locs, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	locs := res.Val.([]branch.Location)
	if res.Shared {
		// Callers must never alias each other's slice.
		out := make([]branch.Location, len(locs))
		copy(out, locs)
		return out, nil
	}
	return locs, nil
}

// FindAll returns the full dataset in document order.
func (s *FileStore) FindAll(ctx context.Context) ([]branch.Location, error) {
	return s.load(ctx)
}

// FindByName returns the branch whose normalized name equals name.
func (s *FileStore) FindByName(ctx context.Context, name string) (branch.Location, error) {
	locs, err := s.load(ctx)
	if err != nil {
		return branch.Location{}, err
	}
	want := branch.NormalizeName(name)
	for _, loc := range locs {
		if loc.Name == want {
			return loc, nil
		}
	}
	return branch.Location{}, notFound(want)
}

// FindByRegion returns the branches located in region.
func (s *FileStore) FindByRegion(ctx context.Context, region string) ([]branch.Location, error) {
	locs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return branch.InRegion(locs, branch.NormalizeName(region)), nil
}

// Ping reports whether the dataset document is present.
func (s *FileStore) Ping(ctx context.Context) error {
	ok, err := s.storage.Exists(ctx, s.key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, s.key)
	}
	return nil
}

// Replace validates locs and writes them as the new dataset document.
func (s *FileStore) Replace(ctx context.Context, locs []branch.Location, source string) error {
	data, err := EncodeDataset(locs)
	if err != nil {
		return err
	}
	if _, err := DecodeDataset(data); err != nil {
		return err
	}
	meta := &storage.Metadata{
		ContentType: "application/json",
		Source:      source,
		ImportedAt:  time.Now().UTC(),
		RecordCount: len(locs),
	}
	if err := s.storage.Put(ctx, s.key, data, meta); err != nil {
		return fmt.Errorf("failed to write branch dataset: %w", err)
	}
	s.logger.Info().Int("branches", len(locs)).Str("source", source).Msg("Replaced branch dataset")
	return nil
}

// Package store provides the branch reference dataset backends used by the
// advisor: a JSON document kept in blob storage and a Postgres table.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/branchmove/branch-service/internal/branch"
)

const (
	TypeFile     = "file"
	TypePostgres = "postgres"
)

// Store is a read model of the branch dataset.
type Store interface {
	FindAll(ctx context.Context) ([]branch.Location, error)
	FindByName(ctx context.Context, name string) (branch.Location, error)
	FindByRegion(ctx context.Context, region string) ([]branch.Location, error)
	Ping(ctx context.Context) error
	Kind() string
}

// Dataset is the on-disk document layout.
type Dataset struct {
	Branches []branch.Location `json:"branches"`
}

// DecodeDataset parses and validates a dataset document. Names are
// normalized to NFC on the way in.
func DecodeDataset(data []byte) ([]branch.Location, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode branch dataset: %w", err)
	}

	seen := make(map[string]struct{}, len(ds.Branches))
	for i := range ds.Branches {
		loc := &ds.Branches[i]
		loc.Name = branch.NormalizeName(loc.Name)
		loc.Region = branch.NormalizeName(loc.Region)
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("branch %d: %w", i, err)
		}
		if _, dup := seen[loc.Name]; dup {
			return nil, fmt.Errorf("branch %d: duplicate name %q", i, loc.Name)
		}
		seen[loc.Name] = struct{}{}
	}
	return ds.Branches, nil
}

// EncodeDataset renders locations in the on-disk layout.
func EncodeDataset(locs []branch.Location) ([]byte, error) {
	if locs == nil {
		locs = []branch.Location{}
	}
	data, err := json.MarshalIndent(Dataset{Branches: locs}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode branch dataset: %w", err)
	}
	return data, nil
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", branch.ErrLocationNotFound, name)
}

package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdrop/internal/client/models"
	"github.com/dmitrijs2005/gophdrop/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophdrop/internal/common"
	"github.com/dmitrijs2005/gophdrop/internal/dbx"
	"github.com/dmitrijs2005/gophdrop/internal/logging"
)

// LocalStore keeps the files this client has uploaded, most recent first, as
// one JSON document under common.LocalRegistryKey.
//
// Reads never fail: missing or unparsable data reads as an empty list and
// the corruption is logged.
type LocalStore struct {
	db     *sql.DB
	logger logging.Logger
}

func NewLocalStore(db *sql.DB, logger logging.Logger) *LocalStore {
	return &LocalStore{db: db, logger: logger}
}

// List returns the recorded entries, most recent first, with Key derived.
func (s *LocalStore) List(ctx context.Context) []models.RegistryEntry {
	entries, err := s.load(ctx, metadata.NewSQLiteRepository(s.db))
	if err != nil {
		s.logger.Warn(ctx, "local registry unreadable, using empty list", "error", err)
		return []models.RegistryEntry{}
	}
	return entries
}

// Append records entry as the most recent one.
func (s *LocalStore) Append(ctx context.Context, entry models.RegistryEntry) error {
	_, err := update(ctx, s, func(entries []models.RegistryEntry) ([]models.RegistryEntry, struct{}, error) {
		return append([]models.RegistryEntry{entry}, entries...), struct{}{}, nil
	})
	return err
}

// RemoveAt drops the entry at index of the List order.
func (s *LocalStore) RemoveAt(ctx context.Context, index int) error {
	_, err := update(ctx, s, func(entries []models.RegistryEntry) ([]models.RegistryEntry, struct{}, error) {
		if index < 0 || index >= len(entries) {
			return nil, struct{}{}, fmt.Errorf("local entry %d: %w", index, common.ErrorNotFound)
		}
		return append(entries[:index], entries[index+1:]...), struct{}{}, nil
	})
	return err
}

// RemoveWhere drops every entry matching pred and reports how many went.
func (s *LocalStore) RemoveWhere(ctx context.Context, pred func(models.RegistryEntry) bool) (int, error) {
	return update(ctx, s, func(entries []models.RegistryEntry) ([]models.RegistryEntry, int, error) {
		kept := entries[:0]
		for _, e := range entries {
			if !pred(e) {
				kept = append(kept, e)
			}
		}
		return kept, len(entries) - len(kept), nil
	})
}

// update rewrites the stored list with fn's result in one transaction. An
// empty result drops the record.
func update[T any](ctx context.Context, s *LocalStore, fn func([]models.RegistryEntry) ([]models.RegistryEntry, T, error)) (T, error) {
	return dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (T, error) {
		var zero T
		repo := metadata.NewSQLiteRepository(tx)

		entries, err := s.load(ctx, repo)
		if errors.Is(err, common.ErrLocalStoreCorrupt) {
			s.logger.Warn(ctx, "local registry corrupt, starting over", "error", err)
			entries, err = nil, nil
		}
		if err != nil {
			return zero, err
		}

		next, res, err := fn(entries)
		if err != nil {
			return zero, err
		}

		if len(next) == 0 {
			return res, repo.Delete(ctx, common.LocalRegistryKey)
		}
		for i := range next {
			next[i].Key = ""
			next[i].Origin = models.OriginUnknown
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return zero, fmt.Errorf("encode local registry: %w", err)
		}
		if err := repo.Set(ctx, common.LocalRegistryKey, raw); err != nil {
			return zero, err
		}
		return res, nil
	})
}

// load decodes the stored list. A missing record is an empty list; a record
// that does not decode is reported as common.ErrLocalStoreCorrupt.
func (s *LocalStore) load(ctx context.Context, repo metadata.Repository) ([]models.RegistryEntry, error) {
	raw, err := repo.Get(ctx, common.LocalRegistryKey)
	if errors.Is(err, common.ErrorNotFound) {
		return []models.RegistryEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []models.RegistryEntry{}, nil
	}

	var entries []models.RegistryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrLocalStoreCorrupt, err)
	}
	if entries == nil {
		entries = []models.RegistryEntry{}
	}
	for i := range entries {
		entries[i].Key = models.LocalKey(entries[i])
	}
	return entries, nil
}

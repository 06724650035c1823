package gateway

import (
	"context"
	"log/slog"
	"swapchat/contract"
	"swapchat/domain"
	localerr "swapchat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

const profilePrefix = "profile:"

// ProfileStore keeps the minimal user directory the messaging core needs
// to resolve display names.
type ProfileStore struct {
	db  *badger.DB
	log *slog.Logger
}

var _ contract.ProfileStore = (*ProfileStore)(nil)

func NewProfileStore(db *badger.DB, log *slog.Logger) *ProfileStore {
	return &ProfileStore{db: db, log: log}
}

func (s *ProfileStore) Put(ctx context.Context, p domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := encodeProfile(p)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profilePrefix+p.ID), value)
	})
}

func (s *ProfileStore) Get(ctx context.Context, id string) (domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, err
	}
	var profile domain.Profile
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profilePrefix + id))
		if err == badger.ErrKeyNotFound {
			return localerr.ErrProfileNotFound
		}
		if err != nil {
			return err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		profile, err = decodeProfile(value)
		return err
	})
	return profile, err
}

// GetMany batch-resolves profiles. Missing ids are simply absent from the
// result map; callers degrade per entry instead of failing the batch.
func (s *ProfileStore) GetMany(ctx context.Context, ids []string) (map[string]domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	profiles := make(map[string]domain.Profile, len(ids))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range lo.Uniq(ids) {
			item, err := txn.Get([]byte(profilePrefix + id))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			profile, err := decodeProfile(value)
			if err != nil {
				return err
			}
			profiles[profile.ID] = profile
		}
		return nil
	})
	return profiles, err
}

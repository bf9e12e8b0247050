package idempotence

import (
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	invocationsBucketName = []byte("invocations")
)

type BoltDBRepository struct {
	db *bolt.DB
}

func NewBoltDB(db *bolt.DB) (*BoltDBRepository, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(invocationsBucketName)
		if err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return &BoltDBRepository{db: db}, nil
}

// MakeRecord stores id with the time it was first seen. It reports false when
// id was already recorded.
func (t *BoltDBRepository) MakeRecord(id string, at time.Time) (ok bool, err error) {
	err = t.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(invocationsBucketName)
		v := bucket.Get([]byte(id))
		if v != nil {
			ok = false
			return nil
		}

		err := bucket.Put([]byte(id), []byte(at.UTC().Format(time.RFC3339Nano)))
		if err != nil {
			return err
		}

		ok = true
		return nil
	})
	return
}

// Prune deletes records made before the given instant and returns how many
// were removed. Records with an unreadable timestamp are removed as well.
func (t *BoltDBRepository) Prune(before time.Time) (removed int, err error) {
	err = t.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(invocationsBucketName)

		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			at, err := time.Parse(time.RFC3339Nano, string(v))
			if err != nil || at.Before(before) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}

		removed = len(stale)
		return nil
	})
	return
}

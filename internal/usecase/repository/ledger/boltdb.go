// Package ledger adapts a bbolt database to the usecase.State contract.
//
// The whole world state lives in a single bucket, so keys of every kind share
// one byte-ordered keyspace and range scans follow bbolt's cursor order.
// Each Update or View call is one bbolt transaction: writes commit together
// when fn returns nil and are discarded otherwise. bbolt admits a single
// writer at a time, which serializes read-modify-write cycles on an account.
package ledger

import (
	"bytes"
	"context"

	"bankledger/internal/usecase"

	bolt "go.etcd.io/bbolt"
)

var (
	ledgerBucketName = []byte("ledger")
)

type BoltDBRepository struct {
	db *bolt.DB
}

func NewBoltDB(db *bolt.DB) (*BoltDBRepository, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(ledgerBucketName)
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

// Update runs fn in a read-write transaction.
func (r *BoltDBRepository) Update(ctx context.Context, fn func(usecase.State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		return fn(&state{bucket: tx.Bucket(ledgerBucketName)})
	})
}

// View runs fn in a read-only transaction; Put fails inside it.
func (r *BoltDBRepository) View(ctx context.Context, fn func(usecase.State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.View(func(tx *bolt.Tx) error {
		return fn(&state{bucket: tx.Bucket(ledgerBucketName)})
	})
}

// Snapshot writes a consistent copy of the database file to path.
func (r *BoltDBRepository) Snapshot(path string) error {
	return r.db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(path, 0600)
	})
}

type state struct {
	bucket *bolt.Bucket
}

func (s *state) Get(key string) ([]byte, error) {
	raw := s.bucket.Get([]byte(key))
	if raw == nil {
		return nil, nil
	}

	// bbolt memory is only valid while the transaction is open.
	return bytes.Clone(raw), nil
}

func (s *state) Put(key string, value []byte) error {
	return s.bucket.Put([]byte(key), value)
}

func (s *state) Range(start, end string) (usecase.Iterator, error) {
	return &iterator{
		cursor: s.bucket.Cursor(),
		start:  []byte(start),
		end:    []byte(end),
	}, nil
}

type iterator struct {
	cursor     *bolt.Cursor
	start, end []byte

	key, value []byte
	started    bool
	done       bool
}

func (it *iterator) Next() bool {
	if it.done {
		return false
	}

	var k, v []byte
	if !it.started {
		k, v = it.cursor.Seek(it.start)
		it.started = true
	} else {
		k, v = it.cursor.Next()
	}

	// nil values are nested buckets
	for k != nil && v == nil {
		k, v = it.cursor.Next()
	}

	if k == nil || bytes.Compare(k, it.end) >= 0 {
		it.Close()
		return false
	}

	it.key, it.value = k, v
	return true
}

func (it *iterator) Key() string {
	return string(it.key)
}

func (it *iterator) Value() []byte {
	return it.value
}

func (it *iterator) Err() error {
	return nil
}

func (it *iterator) Close() error {
	it.done = true
	it.key, it.value = nil, nil
	return nil
}

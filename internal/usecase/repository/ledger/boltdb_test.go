package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"bankledger/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func openRepository(t *testing.T) *BoltDBRepository {
	t.Helper()

	db, err := bolt.Open(filepath.Join(t.TempDir(), "ledger.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := NewBoltDB(db)
	require.NoError(t, err)
	return repo
}

func put(t *testing.T, repo *BoltDBRepository, kv ...string) {
	t.Helper()
	err := repo.Update(context.Background(), func(st usecase.State) error {
		for i := 0; i < len(kv); i += 2 {
			if err := st.Put(kv[i], []byte(kv[i+1])); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func scan(t *testing.T, repo *BoltDBRepository, start, end string) []string {
	t.Helper()
	var keys []string
	err := repo.View(context.Background(), func(st usecase.State) error {
		it, err := st.Range(start, end)
		if err != nil {
			return err
		}
		defer it.Close()
		for it.Next() {
			keys = append(keys, it.Key())
		}
		return it.Err()
	})
	require.NoError(t, err)
	return keys
}

func TestGetPut(t *testing.T) {
	repo := openRepository(t)
	put(t, repo, "a_1", "one")

	err := repo.View(context.Background(), func(st usecase.State) error {
		v, err := st.Get("a_1")
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), v)

		v, err = st.Get("a_2")
		require.NoError(t, err)
		assert.Nil(t, v)
		return nil
	})
	require.NoError(t, err)
}

func TestRangeIsHalfOpenAndOrdered(t *testing.T) {
	repo := openRepository(t)
	put(t, repo,
		"a_bb_1", "x",
		"a_aa_2", "x",
		"a_aa_1", "x",
		"a_z", "x",
		"t_aa_1_00000000000000000001", "x",
		"a_0", "x",
	)

	assert.Equal(t, []string{"a_aa_1", "a_aa_2"}, scan(t, repo, "a_aa_0", "a_aa_z"))
	assert.Equal(t, []string{"a_0", "a_aa_1", "a_aa_2", "a_bb_1"}, scan(t, repo, "a_0", "a_z"))
	assert.Empty(t, scan(t, repo, "a_z", "a_0"))
	assert.Empty(t, scan(t, repo, "c", "d"))
}

func TestIteratorStaysExhausted(t *testing.T) {
	repo := openRepository(t)
	put(t, repo, "k1", "v1")

	err := repo.View(context.Background(), func(st usecase.State) error {
		it, err := st.Range("k", "l")
		require.NoError(t, err)

		require.True(t, it.Next())
		assert.Equal(t, "k1", it.Key())
		assert.Equal(t, []byte("v1"), it.Value())
		assert.False(t, it.Next())
		assert.False(t, it.Next())

		it2, err := st.Range("k", "l")
		require.NoError(t, err)
		require.NoError(t, it2.Close())
		assert.False(t, it2.Next())
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateRollsBackOnError(t *testing.T) {
	repo := openRepository(t)
	boom := errors.New("boom")

	err := repo.Update(context.Background(), func(st usecase.State) error {
		require.NoError(t, st.Put("a_1", []byte("x")))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, scan(t, repo, "a_0", "a_z"))
}

func TestViewIsReadOnly(t *testing.T) {
	repo := openRepository(t)

	err := repo.View(context.Background(), func(st usecase.State) error {
		return st.Put("a_1", []byte("x"))
	})
	assert.ErrorIs(t, err, bolt.ErrTxNotWritable)
}

func TestCanceledContext(t *testing.T) {
	repo := openRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := repo.Update(ctx, func(usecase.State) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestSnapshot(t *testing.T) {
	repo := openRepository(t)
	put(t, repo, "a_1", "one")

	path := filepath.Join(t.TempDir(), "copy.db")
	require.NoError(t, repo.Snapshot(path))

	db, err := bolt.Open(path, 0600, nil)
	require.NoError(t, err)
	defer db.Close()

	copied, err := NewBoltDB(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"a_1"}, scan(t, copied, "a_0", "a_z"))
}

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"draft-desk/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// exerciseContract runs the same create/update/delete sequence against any medium.
func exerciseContract(t *testing.T, st *CollectionStore) {
	t.Helper()
	ctx := context.Background()

	created, err := st.Create(ctx, sampleInput())
	require.NoError(t, err)

	published := true
	updated, err := st.Update(ctx, created.ID, model.DraftPatch{Published: &published})
	require.NoError(t, err)
	assert.True(t, updated.Published)

	drafts, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.True(t, drafts[0].Published)

	require.NoError(t, st.Delete(ctx, created.ID))
	drafts, err = st.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestBadgerMedium_Contract(t *testing.T) {
	// In-memory badger, nothing touches disk
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)

	st, err := NewCollectionStore(context.Background(), NewBadgerMedium(db), zap.NewNop())
	require.NoError(t, err)
	defer st.Close()

	raw, err := st.medium.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw), "bootstrap writes an empty collection")

	exerciseContract(t, st)
}

func TestBadgerMedium_KeyRemovedWhileRunning(t *testing.T) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)

	st, err := NewCollectionStore(context.Background(), NewBadgerMedium(db), zap.NewNop())
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerCollectionKey))
	}))

	_, err = st.Create(context.Background(), sampleInput())
	require.NoError(t, err)
	drafts, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
}

func TestBadgerMedium_GarbageCollection(t *testing.T) {
	medium, err := OpenBadgerMedium(t.TempDir())
	require.NoError(t, err)
	defer medium.Close()

	ctx := context.Background()
	require.NoError(t, medium.Init(ctx, []byte("[]")))
	for i := 0; i < 10; i++ {
		require.NoError(t, medium.Save(ctx, []byte("[]")))
	}
	assert.NoError(t, medium.gcOnce(), "nothing to rewrite is not an error")

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		medium.CollectGarbage(ctx, time.Millisecond, zap.NewNop())
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	<-done
}

func TestRedisMedium_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	medium, err := NewRedisMedium(context.Background(), mr.Addr(), "drafts:test")
	require.NoError(t, err)
	st, err := NewCollectionStore(context.Background(), medium, zap.NewNop())
	require.NoError(t, err)
	defer st.Close()

	val, err := mr.Get("drafts:test")
	require.NoError(t, err)
	assert.Equal(t, "[]", val)

	exerciseContract(t, st)
}

func TestRedisMedium_KeyFlushedWhileRunning(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	medium, err := NewRedisMedium(context.Background(), mr.Addr(), "drafts:test")
	require.NoError(t, err)
	st, err := NewCollectionStore(context.Background(), medium, zap.NewNop())
	require.NoError(t, err)
	defer st.Close()

	mr.FlushAll()
	_, err = medium.Load(context.Background())
	assert.ErrorIs(t, err, ErrMissing)

	_, err = st.Create(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.True(t, mr.Exists("drafts:test"))
}

func TestRedisMedium_InitKeepsExistingCollection(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	require.NoError(t, mr.Set("drafts:test", `[{"id":"1","title":"Existing","description":"Existing description","tags":null,"images":null,"published":true}]`))

	medium, err := NewRedisMedium(context.Background(), mr.Addr(), "drafts:test")
	require.NoError(t, err)
	st, err := NewCollectionStore(context.Background(), medium, zap.NewNop())
	require.NoError(t, err)
	defer st.Close()

	d, err := st.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Existing", d.Title)
	assert.Equal(t, []string{}, d.Tags)
}

func TestRedisMedium_Unreachable(t *testing.T) {
	_, err := NewRedisMedium(context.Background(), "127.0.0.1:1", "drafts")
	assert.Error(t, err)
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	st, err := Open(ctx, Options{Backend: BackendFile, DataFile: filepath.Join(dir, "drafts.json")}, zap.NewNop())
	require.NoError(t, err)
	exerciseContract(t, st)
	require.NoError(t, st.Close())

	st, err = Open(ctx, Options{Backend: BackendBadger, BadgerPath: filepath.Join(dir, "badger")}, zap.NewNop())
	require.NoError(t, err)
	exerciseContract(t, st)
	require.NoError(t, st.Close())

	_, err = Open(ctx, Options{Backend: "postgres"}, zap.NewNop())
	assert.ErrorContains(t, err, "unknown storage backend")
}

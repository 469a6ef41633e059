package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/traitenum/traitenum/internal/model"
)

var (
	parentID = model.NewIdentifier([]string{"family"}, "ParentTrait")
	childID  = model.NewIdentifier([]string{"family"}, "ChildTrait")
)

func setupTestRedis(t *testing.T) *RedisStore {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStoreWithClient(client, DefaultRedisConfig().Prefix)
}

func backends(t *testing.T) map[string]Store {
	file, err := NewFileStore(filepath.Join(t.TempDir(), "models"))
	require.NoError(t, err)

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "models.db"))
	require.NoError(t, err)

	return map[string]Store{
		"file":   file,
		"sqlite": sqlite,
		"redis":  setupTestRedis(t),
		"memory": NewMemoryStore(),
	}
}

func TestStore_PutGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()
			ctx := context.Background()

			require.NoError(t, s.Put(ctx, parentID, []byte("v1")))
			data, err := s.Get(ctx, parentID)
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), data)

			require.NoError(t, s.Put(ctx, parentID, []byte("v2")))
			data, err = s.Get(ctx, parentID)
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), data, "put replaces")
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			_, err := s.Get(context.Background(), childID)
			require.Error(t, err)
			assert.True(t, IsNotFound(err))
			assert.Equal(t, "model not found: family::ChildTrait", err.Error())
		})
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()
			ctx := context.Background()

			ids, err := s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, ids)

			require.NoError(t, s.Put(ctx, parentID, []byte("p")))
			require.NoError(t, s.Put(ctx, childID, []byte("c")))

			ids, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []model.Identifier{childID, parentID}, ids)

			require.NoError(t, s.Delete(ctx, childID))
			require.NoError(t, s.Delete(ctx, childID), "deleting twice is fine")

			ids, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []model.Identifier{parentID}, ids)
		})
	}
}

func TestStore_ConcurrentPuts(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					id := model.NewIdentifier([]string{"family"}, fmt.Sprintf("Trait%d", i))
					assert.NoError(t, s.Put(ctx, id, []byte{byte(i)}))
				}(i)
			}
			wg.Wait()

			ids, err := s.List(ctx)
			require.NoError(t, err)
			assert.Len(t, ids, 8)
		})
	}
}

func TestFileStore_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, parentID, []byte("p")))
	require.NoError(t, writeFile(filepath.Join(dir, "notes.txt")))
	require.NoError(t, writeFile(filepath.Join(dir, "bad name.tem")))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Identifier{parentID}, ids)
	assert.FileExists(t, filepath.Join(dir, "family.ParentTrait.tem"))
}

func TestFileStore_CanceledContext(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Put(ctx, parentID, nil), context.Canceled)
}

func TestSQLStore_Statements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewSQLStore(db)
	ctx := context.Background()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS traitenum_models`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.Initialize(ctx))

	mock.ExpectExec(`INSERT INTO traitenum_models`).
		WithArgs("family::ParentTrait", []byte("p"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, s.Put(ctx, parentID, []byte("p")))

	mock.ExpectQuery(`SELECT data FROM traitenum_models WHERE identifier`).
		WithArgs("family::ParentTrait").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte("p")))
	data, err := s.Get(ctx, parentID)
	require.NoError(t, err)
	assert.Equal(t, []byte("p"), data)

	mock.ExpectQuery(`SELECT identifier FROM traitenum_models`).
		WillReturnRows(sqlmock.NewRows([]string{"identifier"}).
			AddRow("family::ParentTrait").
			AddRow("family::ChildTrait"))
	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Identifier{childID, parentID}, ids)

	mock.ExpectExec(`DELETE FROM traitenum_models WHERE identifier`).
		WithArgs("family::ChildTrait").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.Delete(ctx, childID))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Errors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewSQLStore(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO traitenum_models`).WillReturnError(fmt.Errorf("disk full"))
	err = s.Put(ctx, parentID, []byte("p"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	mock.ExpectQuery(`SELECT data FROM traitenum_models`).
		WillReturnRows(sqlmock.NewRows([]string{"data"}))
	_, err = s.Get(ctx, parentID)
	assert.True(t, IsNotFound(err))

	mock.ExpectQuery(`SELECT identifier FROM traitenum_models`).
		WillReturnRows(sqlmock.NewRows([]string{"identifier"}).AddRow("not an identifier"))
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, model.ErrInvalidIdentifier)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, err := NewRedisStoreWithConfig(RedisConfig{Addr: mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(context.Background(), parentID, []byte("p")))
	assert.True(t, mr.Exists("test:family.ParentTrait"))

	mr.Set("other:family.ChildTrait", "x")
	ids, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Identifier{parentID}, ids)
}

func TestRedisStore_ConnectionError(t *testing.T) {
	_, err := NewRedisStoreWithConfig(RedisConfig{Addr: "localhost:99999"})
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Config{Kind: KindFile, Path: filepath.Join(dir, "models")}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(Config{Kind: KindSQLite, Path: filepath.Join(dir, "models.db")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(Config{Kind: "etcd"}, nil)
	assert.ErrorContains(t, err, "unknown model store")
}

func TestKey(t *testing.T) {
	assert.Equal(t, "family.ParentTrait", Key(parentID))

	id, err := ParseKey("family.ParentTrait")
	require.NoError(t, err)
	assert.True(t, id.Equal(parentID))

	_, err = ParseKey("bad name")
	assert.Error(t, err)
}

func writeFile(path string) error {
	return os.WriteFile(path, []byte("x"), 0o644)
}

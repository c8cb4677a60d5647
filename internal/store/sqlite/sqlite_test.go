package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/alphabot-ai/quill/internal/model"
	"github.com/alphabot-ai/quill/internal/store"
	"github.com/alphabot-ai/quill/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	st, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return newTestStore(t)
	})
}

func TestMigrationsAreIdempotent(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, applySchema(st.db))

	var version int
	require.NoError(t, st.db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version))
	assert.Equal(t, len(migrations), version)
}

func TestOptionalNamesRoundTripAsEmpty(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, err := st.CreateUser(ctx, &model.User{Username: "bob", Email: "b@x.com", Password: "h"})
	require.NoError(t, err)

	got, err := st.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.FirstName)
	assert.Empty(t, got.LastName)
}

func TestMapUniqueErr(t *testing.T) {
	assert.Nil(t, mapUniqueErr(nil))
	assert.Equal(t, store.ErrDuplicateUsername, mapUniqueErr(fmt.Errorf("UNIQUE constraint failed: users.username")))
	assert.Equal(t, store.ErrDuplicateEmail, mapUniqueErr(fmt.Errorf("UNIQUE constraint failed: users.email")))

	other := fmt.Errorf("disk I/O error")
	assert.Equal(t, other, mapUniqueErr(other))
}

func TestConcurrentWritesOnFile(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "quill.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	ctx := context.Background()

	const writers = 40
	errs := make(chan error, writers*6)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("user%d", i)
			if _, err := st.GetUserByUsername(ctx, name); !errors.Is(err, store.ErrNotFound) {
				errs <- fmt.Errorf("lookup %s: %v", name, err)
				return
			}
			id, err := st.CreateUser(ctx, &model.User{Username: name, Email: name + "@x.com", Password: "h"})
			if err != nil {
				errs <- err
				return
			}
			for j := 0; j < 5; j++ {
				if _, err := st.CreatePost(ctx, &model.Post{Title: "T", Description: "D", Content: "C", Author: id}); err != nil {
					errs <- err
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	var posts int
	require.NoError(t, st.db.QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&posts))
	assert.Equal(t, writers*5, posts)
}

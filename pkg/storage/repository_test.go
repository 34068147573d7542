package storage

import (
	"context"
	"os"
	"testing"

	"github.com/acadportal/eventportal/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	code := m.Run()
	test_utils.TerminateDB()
	os.Exit(code)
}

func setupRepositoryTest(t *testing.T) (context.Context, Repository) {
	return context.Background(), NewRepository(test_utils.TestWithDB(t))
}

func TestRepository(t *testing.T) {
	t.Run("should store and load a JSON value", func(t *testing.T) {
		// given
		ctx, repo := setupRepositoryTest(t)

		// when
		err := repo.Put(ctx, "draft.1", sample{Name: "Workshop", Count: 3})

		// then
		require.NoError(t, err)
		var got sample
		require.NoError(t, repo.Get(ctx, "draft.1", &got))
		assert.Equal(t, sample{Name: "Workshop", Count: 3}, got)
	})

	t.Run("should overwrite an existing key", func(t *testing.T) {
		ctx, repo := setupRepositoryTest(t)
		require.NoError(t, repo.Put(ctx, "auth.token", "first"))

		require.NoError(t, repo.Put(ctx, "auth.token", "second"))

		var token string
		require.NoError(t, repo.Get(ctx, "auth.token", &token))
		assert.Equal(t, "second", token)
	})

	t.Run("should report a missing key", func(t *testing.T) {
		ctx, repo := setupRepositoryTest(t)

		var got sample
		err := repo.Get(ctx, "nope", &got)

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should delete a key", func(t *testing.T) {
		ctx, repo := setupRepositoryTest(t)
		require.NoError(t, repo.Put(ctx, "draft.2", sample{Name: "x"}))

		require.NoError(t, repo.Delete(ctx, "draft.2"))

		var got sample
		assert.ErrorIs(t, repo.Get(ctx, "draft.2", &got), ErrNotFound)
	})
}

package gallery

import (
	"context"
	"testing"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func setupTestRepo(t *testing.T) Repository {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(connectCtx, nil))

	return NewMongoRepository(client.Database("testdb"))
}

func TestCreate_AppendsToEndOfStrip(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	first := &domain.GalleryImage{URL: "https://cdn.example.com/a.jpg", Alt: "a"}
	second := &domain.GalleryImage{URL: "https://cdn.example.com/b.jpg", Alt: "b"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	images, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "a", images[0].Alt)
	assert.Equal(t, 0, images[0].Order)
	assert.Equal(t, "b", images[1].Alt)
	assert.Equal(t, 1, images[1].Order)
}

func TestReorder(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	a := &domain.GalleryImage{URL: "a.jpg", Alt: "a"}
	b := &domain.GalleryImage{URL: "b.jpg", Alt: "b"}
	c := &domain.GalleryImage{URL: "c.jpg", Alt: "c"}
	for _, img := range []*domain.GalleryImage{a, b, c} {
		require.NoError(t, repo.Create(ctx, img))
	}

	require.NoError(t, repo.Reorder(ctx, []string{c.ID, a.ID, b.ID}))

	images, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, "c", images[0].Alt)
	assert.Equal(t, "a", images[1].Alt)
	assert.Equal(t, "b", images[2].Alt)
}

func TestReorder_UnknownID(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	a := &domain.GalleryImage{URL: "a.jpg", Alt: "a"}
	require.NoError(t, repo.Create(ctx, a))

	err := repo.Reorder(ctx, []string{a.ID, "no-such-id"})
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestDelete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	a := &domain.GalleryImage{URL: "a.jpg"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Delete(ctx, a.ID))

	images, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, images)

	assert.ErrorIs(t, repo.Delete(ctx, a.ID), ErrImageNotFound)
}

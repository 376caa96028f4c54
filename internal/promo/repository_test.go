package promo

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

	repo := NewMongoRepository(client.Database("testdb"))
	require.NoError(t, repo.(*mongoRepository).CreateIndexes(ctx))
	return repo
}

func TestMongoRepository_CreateAndGetUppercasesCode(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	err := repo.Create(ctx, &domain.PromoCode{
		Code:          "save10",
		DiscountType:  domain.DiscountFixed,
		DiscountValue: 10,
		IsActive:      true,
	})
	require.NoError(t, err)

	got, err := repo.GetByCode(ctx, "sAvE10")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", got.Code)
	assert.NotEmpty(t, got.ID)
}

func TestMongoRepository_DuplicateCodeRejected(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	promo := &domain.PromoCode{Code: "SAVE10", DiscountType: domain.DiscountFixed, DiscountValue: 10, IsActive: true}
	require.NoError(t, repo.Create(ctx, promo))

	err := repo.Create(ctx, &domain.PromoCode{Code: "save10", DiscountType: domain.DiscountFixed, DiscountValue: 5, IsActive: true})
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestMongoRepository_IncrementUsage(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.PromoCode{
		Code:          "SAVE10",
		DiscountType:  domain.DiscountFixed,
		DiscountValue: 10,
		IsActive:      true,
	}))

	require.NoError(t, repo.IncrementUsage(ctx, "SAVE10"))
	require.NoError(t, repo.IncrementUsage(ctx, "SAVE10"))

	got, err := repo.GetByCode(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 2, got.UsedCount)

	assert.ErrorIs(t, repo.IncrementUsage(ctx, "NOSUCH"), ErrPromoNotFound)
}

func TestMongoRepository_UpdateAndDelete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	promo := &domain.PromoCode{Code: "SAVE10", DiscountType: domain.DiscountFixed, DiscountValue: 10, IsActive: true}
	require.NoError(t, repo.Create(ctx, promo))

	promo.DiscountValue = 12
	promo.IsActive = false
	require.NoError(t, repo.Update(ctx, promo.ID, promo))

	got, err := repo.GetByCode(ctx, "SAVE10")
	require.NoError(t, err)
	assert.InDelta(t, 12.0, got.DiscountValue, 1e-9)
	assert.False(t, got.IsActive)

	require.NoError(t, repo.Delete(ctx, promo.ID))
	_, err = repo.GetByCode(ctx, "SAVE10")
	assert.ErrorIs(t, err, ErrPromoNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "no-such-id"), ErrPromoNotFound)
}

package catalog

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	getCalls int
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[string]*domain.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepo) List(_ context.Context, _ string) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	p, ok := f.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProductRepo) Create(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[p.ID]; !ok {
		return ErrProductNotFound
	}
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}

func setupCachedRepo(t *testing.T, products ...*domain.Product) (ProductRepository, *fakeProductRepo, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	next := newFakeProductRepo(products...)
	return NewCachedRepository(next, client, log), next, mr
}

func TestCachedRepository_HitSkipsRepository(t *testing.T) {
	cached, next, mr := setupCachedRepo(t)

	want := &domain.Product{ID: "p1", Name: "Blast Tee", Price: 20}
	data, err := json.Marshal(want)
	require.NoError(t, err)
	require.NoError(t, mr.Set("product:p1", string(data)))

	got, err := cached.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Zero(t, next.calls())
}

func TestCachedRepository_MissFallsThroughAndFills(t *testing.T) {
	want := &domain.Product{ID: "p1", Name: "Blast Tee", Price: 20}
	cached, next, mr := setupCachedRepo(t, want)

	got, err := cached.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, 1, next.calls())

	// The fill happens off the request path.
	assert.Eventually(t, func() bool {
		return mr.Exists("product:p1")
	}, time.Second, 10*time.Millisecond)
}

func TestCachedRepository_CorruptEntryFallsThrough(t *testing.T) {
	want := &domain.Product{ID: "p1", Name: "Blast Tee", Price: 20}
	cached, next, mr := setupCachedRepo(t, want)

	require.NoError(t, mr.Set("product:p1", "not json"))

	got, err := cached.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, 1, next.calls())
}

func TestCachedRepository_WriteInvalidates(t *testing.T) {
	want := &domain.Product{ID: "p1", Name: "Blast Tee", Price: 20}
	cached, _, mr := setupCachedRepo(t, want)

	data, err := json.Marshal(want)
	require.NoError(t, err)
	require.NoError(t, mr.Set("product:p1", string(data)))

	updated := *want
	updated.Price = 25
	require.NoError(t, cached.Update(context.Background(), &updated))
	assert.False(t, mr.Exists("product:p1"))

	require.NoError(t, mr.Set("product:p1", string(data)))
	require.NoError(t, cached.Delete(context.Background(), "p1"))
	assert.False(t, mr.Exists("product:p1"))
}

func TestCachedRepository_NotFoundPassesThrough(t *testing.T) {
	cached, _, _ := setupCachedRepo(t)

	_, err := cached.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

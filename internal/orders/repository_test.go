package orders

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *Repository {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "../../migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.RunMigrations(creds))
	return repo
}

func testOrder(orderID string) *domain.Order {
	return &domain.Order{
		OrderID: orderID,
		Customer: domain.CustomerInfo{
			FirstName: "Aki",
			LastName:  "Tanaka",
			Email:     "aki@example.com",
			Address:   "1 Main St",
			City:      "Springfield",
			Country:   "USA",
		},
		Items: []domain.OrderItem{
			{ProductID: "p1", Name: "Blast Tee", UnitPrice: 20, Size: "M", Quantity: 2, Image: "tee.jpg"},
		},
		Subtotal:  40,
		Shipping:  8.99,
		Tax:       3.20,
		Discount:  10,
		PromoCode: "SAVE10",
		Total:     42.19,
		Status:    domain.OrderStatusProcessing,
	}
}

func TestCreateWithEvent_RoundTrip(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	order := testOrder("ORD-1001")
	payload, err := json.Marshal(map[string]any{"order_id": order.OrderID})
	require.NoError(t, err)

	require.NoError(t, repo.CreateWithEvent(ctx, order, "order.placed", payload))

	got, err := repo.GetByOrderID(ctx, "ORD-1001")
	require.NoError(t, err)
	assert.Equal(t, order.Customer, got.Customer)
	assert.Equal(t, order.Items, got.Items)
	assert.InDelta(t, 42.19, got.Total, 1e-9)
	assert.Equal(t, "SAVE10", got.PromoCode)
	assert.Equal(t, domain.OrderStatusProcessing, got.Status)

	events, err := repo.GetUnpublishedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ORD-1001", events[0].OrderID)
	assert.Equal(t, "order.placed", events[0].EventType)
	assert.JSONEq(t, string(payload), string(events[0].Payload))
}

func TestCreateWithEvent_DuplicateOrderID(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithEvent(ctx, testOrder("ORD-1001"), "order.placed", []byte(`{}`)))

	err := repo.CreateWithEvent(ctx, testOrder("ORD-1001"), "order.placed", []byte(`{}`))
	assert.ErrorIs(t, err, ErrDuplicateOrder)
}

func TestGetByOrderID_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetByOrderID(context.Background(), "ORD-9999")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithEvent(ctx, testOrder("ORD-1001"), "order.placed", []byte(`{}`)))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.CreateWithEvent(ctx, testOrder("ORD-1002"), "order.placed", []byte(`{}`)))

	orders, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-1002", orders[0].OrderID)
	assert.Equal(t, "ORD-1001", orders[1].OrderID)
}

func TestUpdateStatus(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithEvent(ctx, testOrder("ORD-1001"), "order.placed", []byte(`{}`)))
	require.NoError(t, repo.UpdateStatus(ctx, "ORD-1001", domain.OrderStatusShipped))

	got, err := repo.GetByOrderID(ctx, "ORD-1001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, got.Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "ORD-9999", domain.OrderStatusShipped), ErrOrderNotFound)
}

func TestDelete_CascadesOutbox(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithEvent(ctx, testOrder("ORD-1001"), "order.placed", []byte(`{}`)))
	require.NoError(t, repo.Delete(ctx, "ORD-1001"))

	_, err := repo.GetByOrderID(ctx, "ORD-1001")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	events, err := repo.GetUnpublishedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.ErrorIs(t, repo.Delete(ctx, "ORD-1001"), ErrOrderNotFound)
}

func TestMarkEventPublished(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithEvent(ctx, testOrder("ORD-1001"), "order.placed", []byte(`{}`)))

	events, err := repo.GetUnpublishedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.NoError(t, repo.MarkEventPublished(ctx, events[0].ID))

	events, err = repo.GetUnpublishedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

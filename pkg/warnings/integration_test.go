//go:build integration

package warnings

import (
	"context"
	"testing"

	"github.com/PancyStudios/CapsFridayBot/pkg/database"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongodb "github.com/testcontainers/testcontainers-go/modules/mongodb"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.mongodb.org/mongo-driver/bson"
)

func TestRedisStoreContract(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := NewRedisStore(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	runStoreContract(t, store)
	require.NoError(t, store.Health(ctx))
}

func TestRedisStoreKeyLayout(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStoreFromClient(client)
	require.NoError(t, store.Upsert(ctx, "Dave", timeAt(1700000000123)))

	raw, err := client.Get(ctx, "capsfriday:warnings:dave").Result()
	require.NoError(t, err)
	require.Equal(t, "1700000000123", raw)
}

func TestPostgresStoreContract(t *testing.T) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("capsfriday"),
		tcpostgres.WithUsername("capsfriday"),
		tcpostgres.WithPassword("capsfriday"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.EnsureSchema(ctx))
	// Running it twice must be harmless
	require.NoError(t, store.EnsureSchema(ctx))

	runStoreContract(t, store)
}

func TestMongoStoreContract(t *testing.T) {
	ctx := context.Background()

	container, err := tcmongodb.Run(ctx, "mongo:7")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	db := database.NewDatabase(uri, "capsfriday_test")
	require.NoError(t, db.Connect())
	t.Cleanup(func() { _ = db.Disconnect() })

	store := NewMongoStore(db)
	require.NoError(t, store.EnsureSchema(ctx))
	// Creating the same index again is accepted by the server
	require.NoError(t, store.EnsureSchema(ctx))

	runStoreContract(t, store)
	require.NoError(t, store.Health(ctx))

	count, err := db.GetCollection(CollectionName).CountDocuments(ctx, bson.M{"identity": "alice"})
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestMongoStoreSingleDocumentPerIdentity(t *testing.T) {
	ctx := context.Background()

	container, err := tcmongodb.Run(ctx, "mongo:7")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	db := database.NewDatabase(uri, "capsfriday_test")
	require.NoError(t, db.Connect())
	t.Cleanup(func() { _ = db.Disconnect() })

	store := NewMongoStore(db)
	require.NoError(t, store.EnsureSchema(ctx))

	require.NoError(t, store.Upsert(ctx, "Carol", timeAt(1700000000000)))
	require.NoError(t, store.Upsert(ctx, " CAROL ", timeAt(1700000060000)))

	count, err := db.GetCollection(CollectionName).CountDocuments(ctx, bson.M{"identity": "carol"})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	at, ok, err := store.Get(ctx, "carol")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1700000060000), at.UnixMilli())
}

package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/tours-api/internal/domain"
	"github.com/jhoicas/tours-api/internal/domain/entity"
	"github.com/jhoicas/tours-api/internal/domain/query"
	"github.com/jhoicas/tours-api/internal/domain/schema"
	"github.com/jhoicas/tours-api/pkg/config"
)

// testDB conecta a MONGO_TEST_URI y usa una base de datos desechable.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI no definido; se omiten pruebas de integración")
	}
	ctx := context.Background()
	client, err := NewClient(ctx, config.MongoConfig{URI: uri, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)

	db := client.Database("tours_api_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func integrationSchemas(t *testing.T) (tours, guides, reviews *schema.Schema) {
	t.Helper()
	guides = schema.Must(&schema.Schema{
		Name:       "User",
		Collection: "users",
		Fields: []schema.Field{
			{Name: "name", Kind: schema.String},
			{Name: "passwordChangedAt", Kind: schema.Date},
		},
	})
	reviews = schema.Must(&schema.Schema{
		Name:       "Review",
		Collection: "reviews",
		Fields: []schema.Field{
			{Name: "rating", Kind: schema.Number},
			{Name: "tour", Kind: schema.ObjectID, Ref: "tours"},
		},
	})
	tours = schema.Must(&schema.Schema{
		Name:       "Tour",
		Collection: "tours",
		Scope:      map[string]any{"secretTour": map[string]any{"$ne": true}},
		Fields: []schema.Field{
			{Name: "name", Kind: schema.String, Unique: true},
			{Name: "price", Kind: schema.Number},
			{Name: "secretTour", Kind: schema.Bool},
			{Name: "startLocation", Kind: schema.Point},
			{Name: "guides", Kind: schema.ObjectIDList, Ref: "users"},
		},
		AutoPopulate: []schema.Populate{{Path: "guides", Target: guides, Select: []string{"-passwordChangedAt"}}},
		Indexes:      []schema.Index{{Keys: []schema.IndexKey{{Field: "startLocation", Value: "2dsphere"}}}},
	})
	return tours, guides, reviews
}

func TestStore_CicloCRUD(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	tours, guides, reviews := integrationSchemas(t)
	require.NoError(t, EnsureIndexes(ctx, db, tours, guides, reviews))

	users := NewStore(db, guides)
	guide, err := users.Insert(ctx, map[string]any{"name": "Lourdes", "passwordChangedAt": time.Now()})
	require.NoError(t, err)

	store := NewStore(db, tours)
	created, err := store.Insert(ctx, map[string]any{
		"name":   "The Forest Hiker",
		"price":  397.0,
		"guides": []primitive.ObjectID{guide["_id"].(primitive.ObjectID)},
	})
	require.NoError(t, err)
	id := created["_id"].(primitive.ObjectID)

	got, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	assert.NotContains(t, got, "__v")
	populated := got["guides"].([]map[string]any)
	require.Len(t, populated, 1)
	assert.Equal(t, "Lourdes", populated[0]["name"])
	assert.NotContains(t, populated[0], "passwordChangedAt")

	_, err = store.Insert(ctx, map[string]any{"name": "The Forest Hiker"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	updated, err := store.UpdateByID(ctx, id, map[string]any{"price": 497.0})
	require.NoError(t, err)
	assert.Equal(t, 497.0, updated["price"])

	deleted, err := store.DeleteByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, deleted)

	missing, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_FindAplicaScopeYPaginacion(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	tours, _, _ := integrationSchemas(t)
	store := NewStore(db, tours)

	n, err := store.InsertMany(ctx, []map[string]any{
		{"name": "A", "price": 100.0},
		{"name": "B", "price": 200.0},
		{"name": "C", "price": 300.0},
		{"name": "Secret", "price": 50.0, "secretTour": true},
	})
	require.NoError(t, err)
	require.Equal(t, 4, n)

	docs, err := store.Find(&query.Descriptor{
		Filter: []query.Condition{{Field: "price", Op: query.OpGte, Value: 0.0}},
		Sort:   []query.SortField{{Field: "price"}},
		Page:   2,
		Limit:  2,
	}).All(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "C", docs[0]["name"])

	empty, err := store.Find(&query.Descriptor{Page: 10, Limit: 2}).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReviewRepository_RatingStats(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_, _, reviews := integrationSchemas(t)
	tourID := primitive.NewObjectID()

	_, err := NewStore(db, reviews).InsertMany(ctx, []map[string]any{
		{"rating": 4.0, "tour": tourID},
		{"rating": 5.0, "tour": tourID},
	})
	require.NoError(t, err)

	repo := NewReviewRepository(db, reviews)
	stats, ok, err := repo.RatingStats(ctx, tourID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entity.RatingStats{Quantity: 2, Average: 4.5}, stats)

	_, ok, err = repo.RatingStats(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.False(t, ok)
}

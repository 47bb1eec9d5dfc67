package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/tours-api/internal/domain"
	"github.com/jhoicas/tours-api/internal/domain/query"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

func widgets(t *testing.T) *DocumentStore {
	t.Helper()
	s := schema.Must(&schema.Schema{
		Name:       "Widget",
		Collection: "widgets",
		Scope:      map[string]any{"secret": map[string]any{"$ne": true}},
		Fields: []schema.Field{
			{Name: "name", Kind: schema.String, Unique: true},
			{Name: "price", Kind: schema.Number},
			{Name: "secret", Kind: schema.Bool},
			{Name: "token", Kind: schema.String, Hidden: true},
		},
	})
	return NewDocumentStore(s)
}

func TestDocumentStore_FiltroOrdenYPaginacion(t *testing.T) {
	ctx := context.Background()
	st := widgets(t)
	_, err := st.InsertMany(ctx, []map[string]any{
		{"name": "a", "price": 30.0, "token": "x"},
		{"name": "b", "price": 10.0},
		{"name": "c", "price": 20.0},
		{"name": "d", "price": 5.0, "secret": true},
	})
	require.NoError(t, err)

	docs, err := st.Find(&query.Descriptor{
		Filter: []query.Condition{{Field: "price", Op: query.OpGte, Value: 10.0}},
		Sort:   []query.SortField{{Field: "price", Desc: true}},
		Page:   1,
		Limit:  2,
	}).All(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0]["name"])
	assert.Equal(t, "c", docs[1]["name"])
	assert.NotContains(t, docs[0], "token")
	assert.NotContains(t, docs[0], "__v")

	docs, err = st.Find(&query.Descriptor{Page: 5, Limit: 2}).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = st.Find(&query.Descriptor{Page: 92233720368547760, Limit: 100}).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentStore_ScopeOcultaDocumentos(t *testing.T) {
	ctx := context.Background()
	st := widgets(t)
	secret, err := st.Insert(ctx, map[string]any{"name": "s", "secret": true})
	require.NoError(t, err)

	got, err := st.FindByID(ctx, secret["_id"].(primitive.ObjectID))
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Len(t, st.Raw(), 1)
}

func TestDocumentStore_Unicidad(t *testing.T) {
	ctx := context.Background()
	st := widgets(t)
	_, err := st.Insert(ctx, map[string]any{"name": "a"})
	require.NoError(t, err)

	_, err = st.Insert(ctx, map[string]any{"name": "a"})
	var dup *domain.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, `"a"`, dup.Value)
}

func TestDocumentStore_UpdateYDelete(t *testing.T) {
	ctx := context.Background()
	st := widgets(t)
	doc, err := st.Insert(ctx, map[string]any{"name": "a", "price": 1.0})
	require.NoError(t, err)
	id := doc["_id"].(primitive.ObjectID)

	updated, err := st.UpdateByID(ctx, id, map[string]any{"price": 2.0})
	require.NoError(t, err)
	assert.Equal(t, 2.0, updated["price"])

	deleted, err := st.DeleteByID(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, deleted)

	missing, err := st.DeleteByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReviewRepository_RatingStats(t *testing.T) {
	ctx := context.Background()
	reviews := NewDocumentStore(schema.Must(&schema.Schema{
		Name:       "Review",
		Collection: "reviews",
		Fields: []schema.Field{
			{Name: "rating", Kind: schema.Number},
			{Name: "tour", Kind: schema.ObjectID},
		},
	}))
	tour := primitive.NewObjectID()
	_, err := reviews.InsertMany(ctx, []map[string]any{
		{"rating": 4.0, "tour": tour},
		{"rating": 5.0, "tour": tour},
		{"rating": 1.0, "tour": primitive.NewObjectID()},
	})
	require.NoError(t, err)

	stats, ok, err := NewReviewRepository(reviews).RatingStats(ctx, tour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, stats.Quantity)
	assert.Equal(t, 4.5, stats.Average)
}

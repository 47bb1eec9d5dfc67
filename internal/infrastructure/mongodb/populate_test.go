package mongodb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/tours-api/internal/domain/repository"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

// stubFinder devuelve docs fijos y guarda el último filtro y proyección recibidos.
type stubFinder struct {
	docs   []repository.Document
	err    error
	filter bson.M
	proj   bson.M
	calls  int
}

func (f *stubFinder) find(_ context.Context, filter, proj bson.M) ([]repository.Document, error) {
	f.calls++
	f.filter, f.proj = filter, proj
	return f.docs, f.err
}

func TestPopulateRefs_ReemplazaPorDocumentos(t *testing.T) {
	lead, guide, gone := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	f := &stubFinder{docs: []repository.Document{
		{schema.IDField: lead, "name": "Steven Miller"},
		{schema.IDField: guide, "name": "Jennifer Hardy"},
	}}
	docs := []repository.Document{
		{"name": "The Forest Hiker", "guides": primitive.A{lead, gone, guide}},
		{"name": "The Sea Explorer", "guides": []primitive.ObjectID{guide}},
		{"name": "The Snow Adventurer", "guide": gone},
	}

	err := populateRefs(context.Background(), f.find, docs, schema.Populate{Path: "guides"}, bson.M{})
	require.NoError(t, err)
	require.NoError(t, populateRefs(context.Background(), f.find, docs[2:], schema.Populate{Path: "guide"}, bson.M{}))

	assert.Equal(t, bson.M{schema.IDField: bson.M{"$in": []primitive.ObjectID{gone}}}, f.filter)
	assert.Equal(t, []repository.Document{
		{schema.IDField: lead, "name": "Steven Miller"},
		{schema.IDField: guide, "name": "Jennifer Hardy"},
	}, docs[0]["guides"], "el id sin documento se descarta")
	assert.Equal(t, []repository.Document{{schema.IDField: guide, "name": "Jennifer Hardy"}}, docs[1]["guides"])
	assert.Nil(t, docs[2]["guide"], "referencia simple sin documento queda en nil")
}

func TestPopulateRefs_SinReferenciasNoConsulta(t *testing.T) {
	f := &stubFinder{}
	docs := []repository.Document{{"name": "The Park Camper"}}

	require.NoError(t, populateRefs(context.Background(), f.find, docs, schema.Populate{Path: "guides"}, bson.M{}))

	assert.Zero(t, f.calls)
	assert.NotContains(t, docs[0], "guides")
}

func TestPopulateVirtual_AgrupaPorClaveForanea(t *testing.T) {
	hiker, explorer := primitive.NewObjectID(), primitive.NewObjectID()
	f := &stubFinder{docs: []repository.Document{
		{"review": "Amazing", "tour": hiker},
		{"review": "Loved it", "tour": primitive.M{schema.IDField: hiker, "name": "The Forest Hiker"}},
		{"review": "Great", "tour": repository.Document{schema.IDField: hiker}},
	}}
	docs := []repository.Document{
		{schema.IDField: hiker, "name": "The Forest Hiker"},
		{schema.IDField: explorer, "name": "The Sea Explorer"},
	}
	proj := bson.M{"review": 1}

	err := populateVirtual(context.Background(), f.find, docs, schema.Populate{Path: "reviews", ForeignField: "tour"}, proj)
	require.NoError(t, err)

	assert.Equal(t, bson.M{"tour": bson.M{"$in": []primitive.ObjectID{hiker, explorer}}}, f.filter)
	assert.Equal(t, 1, f.proj["tour"], "la clave foránea se incluye en una proyección de inclusión")
	assert.Len(t, docs[0]["reviews"], 3)
	assert.Equal(t, []repository.Document{}, docs[1]["reviews"], "sin reseñas es lista vacía")
}

func TestPopulateVirtual_PropagaError(t *testing.T) {
	boom := errors.New("connection reset")
	f := &stubFinder{err: boom}
	docs := []repository.Document{{schema.IDField: primitive.NewObjectID()}}

	err := populateVirtual(context.Background(), f.find, docs, schema.Populate{Path: "reviews", ForeignField: "tour"}, bson.M{})

	assert.ErrorIs(t, err, boom)
}

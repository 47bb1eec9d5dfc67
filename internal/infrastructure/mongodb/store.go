package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/tours-api/internal/domain/query"
	"github.com/jhoicas/tours-api/internal/domain/repository"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

var _ repository.DocumentRepository = (*Store)(nil)

// Store implementación genérica del puerto DocumentRepository sobre una colección de MongoDB.
type Store struct {
	db     *mongo.Database
	coll   *mongo.Collection
	schema *schema.Schema
}

// NewStore construye el adaptador para la colección del esquema.
func NewStore(db *mongo.Database, s *schema.Schema) *Store {
	return &Store{db: db, coll: db.Collection(s.Collection), schema: s}
}

// Schema esquema de la colección.
func (s *Store) Schema() *schema.Schema { return s.schema }

// findQuery consulta diferida: se ejecuta en All.
type findQuery struct {
	store *Store
	desc  *query.Descriptor
}

// Find construye la consulta sin ejecutarla.
func (s *Store) Find(d *query.Descriptor) repository.Query {
	return &findQuery{store: s, desc: d}
}

// All ejecuta la consulta y carga las relaciones del esquema.
func (q *findQuery) All(ctx context.Context) ([]repository.Document, error) {
	s := q.store
	cur, err := s.coll.Find(ctx, scoped(s.schema, compileFilter(q.desc.Filter)), findOptions(s.schema, q.desc))
	if err != nil {
		return nil, translate(err, "find "+s.schema.Collection)
	}
	docs, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, errors.Wrap(err, "decode "+s.schema.Collection)
	}
	if err := s.populate(ctx, docs, s.schema.AutoPopulate); err != nil {
		return nil, err
	}
	return docs, nil
}

// FindByID busca por _id aplicando el Scope del esquema. Devuelve (nil, nil) si no existe.
func (s *Store) FindByID(ctx context.Context, id primitive.ObjectID, populate ...schema.Populate) (repository.Document, error) {
	var doc repository.Document
	err := s.coll.FindOne(ctx, scoped(s.schema, bson.M{schema.IDField: id}),
		options.FindOne().SetProjection(projection(s.schema, nil)),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, translate(err, "find one "+s.schema.Collection)
	}
	specs := append(append([]schema.Populate{}, s.schema.AutoPopulate...), populate...)
	if err := s.populate(ctx, []repository.Document{doc}, specs); err != nil {
		return nil, err
	}
	return doc, nil
}

// Insert persiste un documento nuevo asignando _id y versión.
func (s *Store) Insert(ctx context.Context, doc repository.Document) (repository.Document, error) {
	stamp(doc)
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, translate(err, "insert "+s.schema.Collection)
	}
	return doc, nil
}

// InsertMany inserción masiva ordenada (carga de datos).
func (s *Store) InsertMany(ctx context.Context, docs []repository.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	batch := make([]any, 0, len(docs))
	for _, d := range docs {
		stamp(d)
		batch = append(batch, d)
	}
	res, err := s.coll.InsertMany(ctx, batch)
	if err != nil {
		return 0, translate(err, "insert many "+s.schema.Collection)
	}
	return len(res.InsertedIDs), nil
}

// UpdateByID aplica $set y devuelve el documento resultante. Devuelve (nil, nil) si no existe.
func (s *Store) UpdateByID(ctx context.Context, id primitive.ObjectID, set repository.Document) (repository.Document, error) {
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}
	var doc repository.Document
	err := s.coll.FindOneAndUpdate(ctx,
		scoped(s.schema, bson.M{schema.IDField: id}),
		bson.M{"$set": set},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(projection(s.schema, nil)),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, translate(err, "update "+s.schema.Collection)
	}
	if err := s.populate(ctx, []repository.Document{doc}, s.schema.AutoPopulate); err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteByID elimina y devuelve el documento eliminado. Devuelve (nil, nil) si no existe.
func (s *Store) DeleteByID(ctx context.Context, id primitive.ObjectID) (repository.Document, error) {
	var doc repository.Document
	err := s.coll.FindOneAndDelete(ctx,
		scoped(s.schema, bson.M{schema.IDField: id}),
		options.FindOneAndDelete().SetProjection(projection(s.schema, nil)),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, translate(err, "delete "+s.schema.Collection)
	}
	return doc, nil
}

// DeleteAll vacía la colección (sin Scope).
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, translate(err, "delete many "+s.schema.Collection)
	}
	return res.DeletedCount, nil
}

// findRaw lectura interna con filtro y proyección explícitos (populate, geo).
func (s *Store) findRaw(ctx context.Context, filter bson.M, proj bson.M) ([]repository.Document, error) {
	cur, err := s.coll.Find(ctx, scoped(s.schema, filter), options.Find().SetProjection(proj))
	if err != nil {
		return nil, translate(err, "find "+s.schema.Collection)
	}
	docs, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, errors.Wrap(err, "decode "+s.schema.Collection)
	}
	if err := s.populate(ctx, docs, s.schema.AutoPopulate); err != nil {
		return nil, err
	}
	return docs, nil
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]repository.Document, error) {
	defer cur.Close(ctx)
	docs := make([]repository.Document, 0)
	for cur.Next(ctx) {
		var d repository.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, cur.Err()
}

func stamp(doc repository.Document) {
	if _, ok := doc[schema.IDField]; !ok {
		doc[schema.IDField] = primitive.NewObjectID()
	}
	doc[schema.VersionField] = 0
}

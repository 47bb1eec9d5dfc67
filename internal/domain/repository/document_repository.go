package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/tours-api/internal/domain/query"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

// Document documento genérico tal como lo devuelve la base de datos.
type Document = map[string]any

// Query consulta construida pero no ejecutada. All la ejecuta y devuelve los documentos en orden.
type Query interface {
	All(ctx context.Context) ([]Document, error)
}

// DocumentRepository puerto de persistencia genérico para una colección descrita por un esquema.
// Las lecturas aplican el Scope, la proyección por defecto y el AutoPopulate del esquema.
type DocumentRepository interface {
	Schema() *schema.Schema
	Find(q *query.Descriptor) Query
	// FindByID devuelve (nil, nil) si no existe.
	FindByID(ctx context.Context, id primitive.ObjectID, populate ...schema.Populate) (Document, error)
	Insert(ctx context.Context, doc Document) (Document, error)
	InsertMany(ctx context.Context, docs []Document) (int, error)
	// UpdateByID devuelve el documento actualizado, o (nil, nil) si no existe.
	UpdateByID(ctx context.Context, id primitive.ObjectID, set Document) (Document, error)
	// DeleteByID devuelve el documento eliminado, o (nil, nil) si no existe.
	DeleteByID(ctx context.Context, id primitive.ObjectID) (Document, error)
	DeleteAll(ctx context.Context) (int64, error)
}

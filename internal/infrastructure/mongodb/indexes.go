package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/tours-api/internal/domain/schema"
)

// EnsureIndexes crea los índices declarados por cada esquema. Es idempotente.
func EnsureIndexes(ctx context.Context, db *mongo.Database, schemas ...*schema.Schema) error {
	for _, s := range schemas {
		models := indexModels(s)
		if len(models) == 0 {
			continue
		}
		if _, err := db.Collection(s.Collection).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "create indexes %s", s.Collection)
		}
	}
	return nil
}

func indexModels(s *schema.Schema) []mongo.IndexModel {
	models := make([]mongo.IndexModel, 0, len(s.Indexes))
	for _, idx := range s.Indexes {
		keys := make(bson.D, 0, len(idx.Keys))
		for _, k := range idx.Keys {
			keys = append(keys, bson.E{Key: k.Field, Value: k.Value})
		}
		m := mongo.IndexModel{Keys: keys}
		if idx.Unique {
			m.Options = options.Index().SetUnique(true)
		}
		models = append(models, m)
	}
	return models
}

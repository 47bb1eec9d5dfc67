package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/tours-api/internal/domain/entity"
	"github.com/jhoicas/tours-api/internal/domain/repository"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

var _ repository.ReviewRepository = (*ReviewRepository)(nil)

// ReviewRepository agregados de reseñas.
type ReviewRepository struct {
	coll *mongo.Collection
}

// NewReviewRepository crea el repositorio sobre la colección del esquema de reseñas.
func NewReviewRepository(db *mongo.Database, reviews *schema.Schema) *ReviewRepository {
	return &ReviewRepository{coll: db.Collection(reviews.Collection)}
}

// RatingStats cantidad y promedio de calificaciones de un tour.
func (r *ReviewRepository) RatingStats(ctx context.Context, tourID primitive.ObjectID) (entity.RatingStats, bool, error) {
	cur, err := r.coll.Aggregate(ctx, ratingStatsPipeline(tourID))
	if err != nil {
		return entity.RatingStats{}, false, translate(err, "aggregate reviews")
	}
	defer cur.Close(ctx)

	var rows []entity.RatingStats
	if err := cur.All(ctx, &rows); err != nil {
		return entity.RatingStats{}, false, errors.Wrap(err, "decode rating stats")
	}
	if len(rows) == 0 {
		return entity.RatingStats{}, false, nil
	}
	return rows[0], true, nil
}

func ratingStatsPipeline(tourID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": tourID}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tour"},
			{Key: "nRating", Value: bson.M{"$sum": 1}},
			{Key: "avgRating", Value: bson.M{"$avg": "$rating"}},
		}}},
	}
}

package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/tours-api/internal/domain/entity"
	"github.com/jhoicas/tours-api/internal/domain/repository"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

var _ repository.TourRepository = (*TourRepository)(nil)

// TourRepository agregaciones de tours sobre el Store genérico.
type TourRepository struct {
	store *Store
}

// NewTourRepository crea el repositorio de agregaciones para el esquema de tours.
func NewTourRepository(db *mongo.Database, tours *schema.Schema) *TourRepository {
	return &TourRepository{store: NewStore(db, tours)}
}

// Stats resumen por dificultad de los tours con ratingsAverage >= minRating.
func (r *TourRepository) Stats(ctx context.Context, minRating float64) ([]entity.TourStats, error) {
	out := make([]entity.TourStats, 0)
	if err := r.aggregate(ctx, statsPipeline(r.store.schema, minRating), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MonthlyPlan salidas de tours por mes en el año dado.
func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]entity.MonthlyPlan, error) {
	out := make([]entity.MonthlyPlan, 0)
	if err := r.aggregate(ctx, monthlyPlanPipeline(r.store.schema, year), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Within tours cuyo startLocation está dentro del radio (en radianes).
func (r *TourRepository) Within(ctx context.Context, center entity.Point, radians float64) ([]repository.Document, error) {
	return r.store.findRaw(ctx, withinFilter(center, radians), projection(r.store.schema, nil))
}

// Distances distancia de cada tour al punto dado, multiplicada a la unidad pedida.
func (r *TourRepository) Distances(ctx context.Context, center entity.Point, multiplier float64) ([]entity.TourDistance, error) {
	out := make([]entity.TourDistance, 0)
	if err := r.aggregate(ctx, distancesPipeline(r.store.schema, center, multiplier), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TourRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cur, err := r.store.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return translate(err, "aggregate "+r.store.schema.Collection)
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, out); err != nil {
		return errors.Wrap(err, "decode aggregate "+r.store.schema.Collection)
	}
	return nil
}

// scopeStage $match con el filtro base del esquema; nil si no tiene.
func scopeStage(s *schema.Schema) bson.D {
	if len(s.Scope) == 0 {
		return nil
	}
	return bson.D{{Key: "$match", Value: bson.M(s.Scope)}}
}

func withScope(s *schema.Schema, stages ...bson.D) mongo.Pipeline {
	p := mongo.Pipeline{}
	if st := scopeStage(s); st != nil {
		p = append(p, st)
	}
	return append(p, stages...)
}

func statsPipeline(s *schema.Schema, minRating float64) mongo.Pipeline {
	return withScope(s,
		bson.D{{Key: "$match", Value: bson.M{"ratingsAverage": bson.M{"$gte": minRating}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.M{"$toUpper": "$difficulty"}},
			{Key: "numTours", Value: bson.M{"$sum": 1}},
			{Key: "numRatings", Value: bson.M{"$sum": "$ratingsQuantity"}},
			{Key: "avgRating", Value: bson.M{"$avg": "$ratingsAverage"}},
			{Key: "avgPrice", Value: bson.M{"$avg": "$price"}},
			{Key: "minPrice", Value: bson.M{"$min": "$price"}},
			{Key: "maxPrice", Value: bson.M{"$max": "$price"}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "avgPrice", Value: 1}}}},
	)
}

func monthlyPlanPipeline(s *schema.Schema, year int) mongo.Pipeline {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	return withScope(s,
		bson.D{{Key: "$unwind", Value: "$startDates"}},
		bson.D{{Key: "$match", Value: bson.M{"startDates": bson.M{"$gte": from, "$lt": to}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.M{"$month": "$startDates"}},
			{Key: "numTourStarts", Value: bson.M{"$sum": 1}},
			{Key: "tours", Value: bson.M{"$push": "$name"}},
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{"month": "$_id"}}},
		bson.D{{Key: "$project", Value: bson.M{"_id": 0}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "numTourStarts", Value: -1}, {Key: "month", Value: 1}}}},
		bson.D{{Key: "$limit", Value: 12}},
	)
}

func withinFilter(center entity.Point, radians float64) bson.M {
	return bson.M{"startLocation": bson.M{
		"$geoWithin": bson.M{"$centerSphere": bson.A{center.Coordinates(), radians}},
	}}
}

// distancesPipeline $geoNear debe ser la primera etapa, así que el Scope va en su query.
func distancesPipeline(s *schema.Schema, center entity.Point, multiplier float64) mongo.Pipeline {
	geoNear := bson.D{
		{Key: "near", Value: bson.M{"type": "Point", "coordinates": center.Coordinates()}},
		{Key: "distanceField", Value: "distance"},
		{Key: "distanceMultiplier", Value: multiplier},
		{Key: "spherical", Value: true},
	}
	if len(s.Scope) > 0 {
		geoNear = append(geoNear, bson.E{Key: "query", Value: bson.M(s.Scope)})
	}
	return mongo.Pipeline{
		{{Key: "$geoNear", Value: geoNear}},
		{{Key: "$project", Value: bson.M{"distance": 1, "name": 1}}},
	}
}

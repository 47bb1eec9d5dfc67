package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/tours-api/internal/domain/entity"
)

// TourRepository consultas de agregación de solo lectura sobre la colección de tours.
type TourRepository interface {
	Stats(ctx context.Context, minRating float64) ([]entity.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]entity.MonthlyPlan, error)
	// Within devuelve los tours cuyo startLocation cae en el casquete esférico de radio radians.
	Within(ctx context.Context, center entity.Point, radians float64) ([]Document, error)
	Distances(ctx context.Context, center entity.Point, multiplier float64) ([]entity.TourDistance, error)
}

// ReviewRepository agregados sobre reseñas.
type ReviewRepository interface {
	// RatingStats devuelve ok=false si el tour no tiene reseñas.
	RatingStats(ctx context.Context, tourID primitive.ObjectID) (stats entity.RatingStats, ok bool, err error)
}

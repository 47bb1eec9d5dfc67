package memory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/tours-api/internal/domain/entity"
	"github.com/jhoicas/tours-api/internal/domain/repository"
)

// ReviewRepository agregados de reseñas calculados sobre un DocumentStore.
type ReviewRepository struct {
	reviews *DocumentStore
}

// NewReviewRepository reviews es la colección en memoria de reseñas.
func NewReviewRepository(reviews *DocumentStore) *ReviewRepository {
	return &ReviewRepository{reviews: reviews}
}

// RatingStats equivalente al $group por tour del adaptador de MongoDB.
func (r *ReviewRepository) RatingStats(ctx context.Context, tourID primitive.ObjectID) (entity.RatingStats, bool, error) {
	var n, rated int
	var sum float64
	for _, d := range r.reviews.Raw() {
		if d["tour"] != tourID {
			continue
		}
		n++
		if v, ok := d["rating"].(float64); ok {
			sum += v
			rated++
		}
	}
	if n == 0 {
		return entity.RatingStats{}, false, nil
	}
	stats := entity.RatingStats{Quantity: n}
	if rated > 0 {
		stats.Average = sum / float64(rated)
	}
	return stats, true, nil
}

var _ repository.ReviewRepository = (*ReviewRepository)(nil)

package usecase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/tours-api/internal/application/resources"
	"github.com/jhoicas/tours-api/internal/domain/repository"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

// RatingsCalculator recalcula ratingsQuantity y ratingsAverage de un tour a partir de sus reseñas.
type RatingsCalculator struct {
	reviews repository.ReviewRepository
	tours   repository.DocumentRepository
}

// NewRatingsCalculator tours es el repositorio genérico de la colección de tours.
func NewRatingsCalculator(reviews repository.ReviewRepository, tours repository.DocumentRepository) *RatingsCalculator {
	return &RatingsCalculator{reviews: reviews, tours: tours}
}

// Hooks hooks de ResourceUseCase para la colección de reseñas.
func (c *RatingsCalculator) Hooks() ResourceHooks {
	return ResourceHooks{AfterSave: c.fromReview, AfterDelete: c.fromReview}
}

func (c *RatingsCalculator) fromReview(ctx context.Context, review repository.Document) error {
	tourID, ok := reviewTour(review)
	if !ok {
		return nil
	}
	return c.Recalculate(ctx, tourID)
}

// Recalculate sin reseñas vuelve a los valores por defecto (0 / 4.5).
// La actualización pasa por el esquema de tours para aplicar el redondeo de ratingsAverage.
func (c *RatingsCalculator) Recalculate(ctx context.Context, tourID primitive.ObjectID) error {
	stats, ok, err := c.reviews.RatingStats(ctx, tourID)
	if err != nil {
		return err
	}
	body := map[string]any{
		"ratingsQuantity": resources.DefaultRatingsQuantity,
		"ratingsAverage":  resources.DefaultRatingsAverage,
	}
	if ok {
		body["ratingsQuantity"] = float64(stats.Quantity)
		// reseñas sin rating: $avg devuelve null
		if stats.Average > 0 {
			body["ratingsAverage"] = stats.Average
		}
	}
	set, err := c.tours.Schema().Prepare(body, schema.Update)
	if err != nil {
		return err
	}
	// el tour puede no existir (reseña huérfana); no es un error
	_, err = c.tours.UpdateByID(ctx, tourID, set)
	return err
}

func reviewTour(review repository.Document) (primitive.ObjectID, bool) {
	switch t := review["tour"].(type) {
	case primitive.ObjectID:
		return t, true
	case repository.Document:
		id, ok := t[schema.IDField].(primitive.ObjectID)
		return id, ok
	}
	return primitive.NilObjectID, false
}

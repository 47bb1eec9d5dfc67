package entity

import "go.mongodb.org/mongo-driver/bson/primitive"

// TourStats fila del resumen de tours por dificultad.
type TourStats struct {
	Difficulty string  `bson:"_id" json:"_id"`
	NumTours   int     `bson:"numTours" json:"numTours"`
	NumRatings int     `bson:"numRatings" json:"numRatings"`
	AvgRating  float64 `bson:"avgRating" json:"avgRating"`
	AvgPrice   float64 `bson:"avgPrice" json:"avgPrice"`
	MinPrice   float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice   float64 `bson:"maxPrice" json:"maxPrice"`
}

// MonthlyPlan salidas de tours agrupadas por mes de un año.
type MonthlyPlan struct {
	Month         int      `bson:"month" json:"month"`
	NumTourStarts int      `bson:"numTourStarts" json:"numTourStarts"`
	Tours         []string `bson:"tours" json:"tours"`
}

// TourDistance distancia de un tour a un punto dado, en la unidad pedida.
type TourDistance struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Distance float64            `bson:"distance" json:"distance"`
}

// RatingStats agregado de reseñas de un tour.
type RatingStats struct {
	Quantity int     `bson:"nRating"`
	Average  float64 `bson:"avgRating"`
}

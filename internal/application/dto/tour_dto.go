package dto

import "github.com/jhoicas/tours-api/internal/domain/entity"

// StatsData data de GET /tours/tour-stats.
type StatsData struct {
	Stats []entity.TourStats `json:"stats"`
}

// PlanData data de GET /tours/monthly-plan/:year.
type PlanData struct {
	Plan []entity.MonthlyPlan `json:"plan"`
}

// DistancesData data de GET /tours/distances/:latlng/unit/:unit.
type DistancesData struct {
	Data []entity.TourDistance `json:"data"`
}

// HealthResponse respuesta de /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

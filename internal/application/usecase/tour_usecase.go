package usecase

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/jhoicas/tours-api/internal/domain"
	"github.com/jhoicas/tours-api/internal/domain/entity"
	"github.com/jhoicas/tours-api/internal/domain/repository"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

// Radio de la Tierra y factores de conversión desde metros.
const (
	earthRadiusMi = 3963.2
	earthRadiusKm = 6378.1

	metersToMiles = 0.000621371
	metersToKm    = 0.001

	// StatsMinRating umbral de ratingsAverage para el resumen por dificultad.
	StatsMinRating = 4.5
)

// MsgLatLng error de formato del centro en las rutas geoespaciales.
const MsgLatLng = "Please provide latitude and longitude in the format lat,lng."

// TourUseCase agregaciones y consultas geoespaciales de tours.
type TourUseCase struct {
	repo   repository.TourRepository
	schema *schema.Schema
}

// NewTourUseCase construye el caso de uso. s se usa para dar forma a los documentos de Within.
func NewTourUseCase(repo repository.TourRepository, s *schema.Schema) *TourUseCase {
	return &TourUseCase{repo: repo, schema: s}
}

// Stats resumen por dificultad de los tours con calificación >= 4.5.
func (uc *TourUseCase) Stats(ctx context.Context) ([]entity.TourStats, error) {
	return uc.repo.Stats(ctx, StatsMinRating)
}

// MonthlyPlan salidas por mes del año indicado en la ruta.
func (uc *TourUseCase) MonthlyPlan(ctx context.Context, year string) ([]entity.MonthlyPlan, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 1 || y > 9999 {
		return nil, &domain.CastError{Path: "year", Value: year, Kind: schema.Number.String()}
	}
	return uc.repo.MonthlyPlan(ctx, y)
}

// Within tours cuyo punto de inicio está a menos de distance (en unit) de latlng.
func (uc *TourUseCase) Within(ctx context.Context, distance, latlng, unit string) ([]repository.Document, error) {
	center, err := ParseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(distance), 64)
	if err != nil || !finite(d) || d < 0 {
		return nil, &domain.CastError{Path: "distance", Value: distance, Kind: schema.Number.String()}
	}
	radius := d / earthRadiusKm
	if unit == entity.UnitMiles {
		radius = d / earthRadiusMi
	}
	docs, err := uc.repo.Within(ctx, center, radius)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		shapeWith(uc.schema, doc, nil)
	}
	return docs, nil
}

// Distances distancia de cada tour a latlng en mi o km.
func (uc *TourUseCase) Distances(ctx context.Context, latlng, unit string) ([]entity.TourDistance, error) {
	center, err := ParseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	multiplier := metersToKm
	if unit == entity.UnitMiles {
		multiplier = metersToMiles
	}
	return uc.repo.Distances(ctx, center, multiplier)
}

// ParseLatLng interpreta "lat,lng". Cualquier parte ausente o no numérica es un 400.
func ParseLatLng(s string) (entity.Point, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return entity.Point{}, domain.BadRequest(MsgLatLng)
	}
	la, err1 := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	ln, err2 := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err1 != nil || err2 != nil || !finite(la) || !finite(ln) || la < -90 || la > 90 || ln < -180 || ln > 180 {
		return entity.Point{}, domain.BadRequest(MsgLatLng)
	}
	return entity.Point{Lat: la, Lng: ln}, nil
}

// finite descarta NaN e infinitos, que ParseFloat acepta y ningún rango compara.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

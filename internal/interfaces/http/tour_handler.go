package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tours-api/internal/application/dto"
	"github.com/jhoicas/tours-api/internal/application/usecase"
)

// TourHandler rutas de agregación y geoespaciales de tours.
type TourHandler struct {
	uc *usecase.TourUseCase
}

// NewTourHandler construye el handler.
func NewTourHandler(uc *usecase.TourUseCase) *TourHandler {
	return &TourHandler{uc: uc}
}

// Stats godoc
// @Summary      Estadísticas por dificultad
// @Description  Tours con ratingsAverage >= 4.5 agrupados por dificultad, ordenados por precio promedio.
// @Tags         tours
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=dto.StatsData}
// @Router       /api/v1/tours/tour-stats [get]
func (h *TourHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.Success(dto.StatsData{Stats: stats}))
}

// MonthlyPlan godoc
// @Summary      Plan mensual de salidas
// @Tags         tours
// @Produce      json
// @Param        year  path  int  true  "Año"
// @Success      200   {object}  dto.Envelope{data=dto.PlanData}
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/tours/monthly-plan/{year} [get]
func (h *TourHandler) MonthlyPlan(c *fiber.Ctx) error {
	plan, err := h.uc.MonthlyPlan(c.UserContext(), c.Params("year"))
	if err != nil {
		return err
	}
	return c.JSON(dto.Success(dto.PlanData{Plan: plan}))
}

// Within godoc
// @Summary      Tours dentro de un radio
// @Tags         tours
// @Produce      json
// @Param        distance  path  number  true  "Radio"
// @Param        latlng    path  string  true  "lat,lng"
// @Param        unit      path  string  true  "mi o km"
// @Success      200       {object}  dto.Envelope
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/v1/tours/tours-within/{distance}/center/{latlng}/unit/{unit} [get]
func (h *TourHandler) Within(c *fiber.Ctx) error {
	docs, err := h.uc.Within(c.UserContext(), c.Params("distance"), c.Params("latlng"), c.Params("unit"))
	if err != nil {
		return err
	}
	return c.JSON(dto.List(docs))
}

// Distances godoc
// @Summary      Distancia de cada tour a un punto
// @Tags         tours
// @Produce      json
// @Param        latlng  path  string  true  "lat,lng"
// @Param        unit    path  string  true  "mi o km"
// @Success      200     {object}  dto.Envelope{data=dto.DistancesData}
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/v1/tours/distances/{latlng}/unit/{unit} [get]
func (h *TourHandler) Distances(c *fiber.Ctx) error {
	distances, err := h.uc.Distances(c.UserContext(), c.Params("latlng"), c.Params("unit"))
	if err != nil {
		return err
	}
	return c.JSON(dto.Success(dto.DistancesData{Data: distances}))
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tours-api/internal/application/usecase"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Tours       *usecase.ResourceUseCase
	Users       *usecase.ResourceUseCase
	Reviews     *usecase.ResourceUseCase
	TourOps     *usecase.TourUseCase
	TourReviews schema.Populate // reseñas pobladas en GET /tours/:id
}

// Router registra las rutas de la API bajo /api/v1.
func Router(app fiber.Router, deps RouterDeps) {
	v1 := app.Group("/api/v1")

	// Tours. Las rutas fijas van antes de /:id.
	tours := v1.Group("/tours")
	tourHandler := NewResourceHandler(deps.Tours, ResourceOptions{Populate: []schema.Populate{deps.TourReviews}})
	tourOps := NewTourHandler(deps.TourOps)
	tours.Get("/top-5-cheap", AliasTopTours, tourHandler.GetAll)
	tours.Get("/tour-stats", tourOps.Stats)
	tours.Get("/monthly-plan/:year", tourOps.MonthlyPlan)
	tours.Get("/tours-within/:distance/center/:latlng/unit/:unit", tourOps.Within)
	tours.Get("/distances/:latlng/unit/:unit", tourOps.Distances)
	tours.Get("/", tourHandler.GetAll)
	tours.Post("/", tourHandler.CreateOne)
	tours.Get("/:id", tourHandler.GetOne)
	tours.Patch("/:id", tourHandler.UpdateOne)
	tours.Delete("/:id", tourHandler.DeleteOne)

	// Reseñas de un tour
	nested := NewResourceHandler(deps.Reviews, ResourceOptions{ParentParam: "tourId", ParentField: "tour"})
	resourceRoutes(tours.Group("/:tourId/reviews"), nested)

	// Users (la creación va por el registro)
	users := v1.Group("/users")
	userHandler := NewResourceHandler(deps.Users, ResourceOptions{})
	users.Get("/", userHandler.GetAll)
	users.Post("/", CreateUser)
	users.Get("/:id", userHandler.GetOne)
	users.Patch("/:id", userHandler.UpdateOne)
	users.Delete("/:id", userHandler.DeleteOne)

	// Reviews
	resourceRoutes(v1.Group("/reviews"), NewResourceHandler(deps.Reviews, ResourceOptions{}))
}

// resourceRoutes registra el CRUD completo de un recurso.
func resourceRoutes(r fiber.Router, h *ResourceHandler) {
	r.Get("/", h.GetAll)
	r.Post("/", h.CreateOne)
	r.Get("/:id", h.GetOne)
	r.Patch("/:id", h.UpdateOne)
	r.Delete("/:id", h.DeleteOne)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tours-api/internal/application/dto"
	"github.com/jhoicas/tours-api/internal/application/usecase"
	"github.com/jhoicas/tours-api/internal/domain"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

// ResourceOptions configura un ResourceHandler.
type ResourceOptions struct {
	// ParentParam parámetro de ruta del recurso padre en rutas anidadas (ej. "tourId").
	ParentParam string
	// ParentField campo del documento que referencia al padre (ej. "tour").
	ParentField string
	// Populate relaciones adicionales de GetOne.
	Populate []schema.Populate
}

// ResourceHandler handlers CRUD genéricos sobre un ResourceUseCase.
type ResourceHandler struct {
	uc   *usecase.ResourceUseCase
	opts ResourceOptions
}

// NewResourceHandler construye el handler.
func NewResourceHandler(uc *usecase.ResourceUseCase, opts ResourceOptions) *ResourceHandler {
	return &ResourceHandler{uc: uc, opts: opts}
}

// GetAll lista con filtro, orden, proyección y paginación desde la query string.
func (h *ResourceHandler) GetAll(c *fiber.Ctx) error {
	docs, err := h.uc.List(c.UserContext(), queryValues(c), h.parent(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.List(docs))
}

// GetOne devuelve un documento por id.
func (h *ResourceHandler) GetOne(c *fiber.Ctx) error {
	doc, err := h.uc.Get(c.UserContext(), c.Params("id"), h.opts.Populate...)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success(dto.Data{Data: doc}))
}

// CreateOne valida e inserta el cuerpo. En rutas anidadas el padre sale de la URL si el cuerpo no lo trae.
func (h *ResourceHandler) CreateOne(c *fiber.Ctx) error {
	body, err := parseBody(c)
	if err != nil {
		return err
	}
	if p := h.parent(c); p != nil && p.ID != "" {
		if _, ok := body[p.Field]; !ok {
			body[p.Field] = p.ID
		}
	}
	doc, err := h.uc.Create(c.UserContext(), body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Success(dto.Data{Data: doc}))
}

// UpdateOne actualización parcial por id.
func (h *ResourceHandler) UpdateOne(c *fiber.Ctx) error {
	body, err := parseBody(c)
	if err != nil {
		return err
	}
	doc, err := h.uc.Update(c.UserContext(), c.Params("id"), body)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success(dto.Data{Data: doc}))
}

// DeleteOne elimina por id y responde 204 sin cuerpo.
func (h *ResourceHandler) DeleteOne(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ResourceHandler) parent(c *fiber.Ctx) *usecase.Parent {
	if h.opts.ParentParam == "" {
		return nil
	}
	return &usecase.Parent{Field: h.opts.ParentField, ID: c.Params(h.opts.ParentParam)}
}

// queryValues copia la query string conservando los valores repetidos.
func queryValues(c *fiber.Ctx) map[string][]string {
	values := map[string][]string{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		values[key] = append(values[key], string(v))
	})
	return values
}

// parseBody decodifica un objeto JSON. Un cuerpo vacío es un objeto vacío; uno que no se declara
// JSON es un 415.
func parseBody(c *fiber.Ctx) (map[string]any, error) {
	body := map[string]any{}
	raw := c.Body()
	if len(raw) == 0 {
		return body, nil
	}
	if err := requireJSON(c); err != nil {
		return nil, err
	}
	if err := c.App().Config().JSONDecoder(raw, &body); err != nil {
		return nil, domain.WrapAppError(err, MsgInvalidJSON, fiber.StatusBadRequest)
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

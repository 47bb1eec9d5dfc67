package usecase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/tours-api/internal/domain"
	"github.com/jhoicas/tours-api/internal/domain/query"
	"github.com/jhoicas/tours-api/internal/domain/repository"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

// MsgNotFound mensaje de las rutas por id cuando el documento no existe.
const MsgNotFound = "No document found with that ID"

// ResourceHooks se ejecutan después de persistir. Un error aquí se reporta al cliente,
// aunque la escritura ya se haya hecho.
type ResourceHooks struct {
	AfterSave   func(ctx context.Context, doc repository.Document) error
	AfterDelete func(ctx context.Context, doc repository.Document) error
}

// Parent restringe un listado al recurso padre de una ruta anidada (ej. tour de una reseña).
type Parent struct {
	Field string
	ID    string
}

// ResourceUseCase CRUD genérico: valida y convierte contra el esquema, persiste y da forma a la salida.
type ResourceUseCase struct {
	schema *schema.Schema
	repo   repository.DocumentRepository
	hooks  ResourceHooks
}

// NewResourceUseCase construye el caso de uso sobre el repositorio de la colección.
func NewResourceUseCase(repo repository.DocumentRepository, hooks ResourceHooks) *ResourceUseCase {
	return &ResourceUseCase{schema: repo.Schema(), repo: repo, hooks: hooks}
}

// Schema esquema del recurso.
func (uc *ResourceUseCase) Schema() *schema.Schema { return uc.schema }

// List traduce la query string y devuelve la página pedida. Una página fuera de rango es una lista vacía.
func (uc *ResourceUseCase) List(ctx context.Context, values map[string][]string, parent *Parent) ([]repository.Document, error) {
	desc, err := query.Parse(values, query.Options{Caster: uc.schema})
	if err != nil {
		return nil, err
	}
	if parent != nil && parent.ID != "" {
		id, err := ParseID(parent.Field, parent.ID)
		if err != nil {
			return nil, err
		}
		desc.Where(parent.Field, id)
	}
	docs, err := uc.repo.Find(desc).All(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		uc.shape(d)
	}
	return docs, nil
}

// Get devuelve el documento o un 404 operacional.
func (uc *ResourceUseCase) Get(ctx context.Context, id string, populate ...schema.Populate) (repository.Document, error) {
	oid, err := ParseID(schema.IDField, id)
	if err != nil {
		return nil, err
	}
	doc, err := uc.repo.FindByID(ctx, oid, populate...)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.NotFound(MsgNotFound)
	}
	shapeWith(uc.schema, doc, populate)
	return doc, nil
}

// Create valida el cuerpo completo y lo inserta.
func (uc *ResourceUseCase) Create(ctx context.Context, body map[string]any) (repository.Document, error) {
	doc, err := uc.prepareInsert(body, schema.Create)
	if err != nil {
		return nil, err
	}
	created, err := uc.repo.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	if uc.hooks.AfterSave != nil {
		if err := uc.hooks.AfterSave(ctx, created); err != nil {
			return nil, err
		}
	}
	uc.shape(created)
	return created, nil
}

// Update aplica una actualización parcial validando solo los campos presentes.
func (uc *ResourceUseCase) Update(ctx context.Context, id string, body map[string]any) (repository.Document, error) {
	oid, err := ParseID(schema.IDField, id)
	if err != nil {
		return nil, err
	}
	set, err := uc.schema.Prepare(body, schema.Update)
	if err != nil {
		return nil, err
	}
	if h := uc.schema.Hooks.BeforeUpdate; h != nil && len(set) > 0 {
		if err := h(set); err != nil {
			return nil, err
		}
	}
	doc, err := uc.repo.UpdateByID(ctx, oid, set)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.NotFound(MsgNotFound)
	}
	if uc.hooks.AfterSave != nil {
		if err := uc.hooks.AfterSave(ctx, doc); err != nil {
			return nil, err
		}
	}
	uc.shape(doc)
	return doc, nil
}

// Delete elimina por id.
func (uc *ResourceUseCase) Delete(ctx context.Context, id string) error {
	oid, err := ParseID(schema.IDField, id)
	if err != nil {
		return err
	}
	doc, err := uc.repo.DeleteByID(ctx, oid)
	if err != nil {
		return err
	}
	if doc == nil {
		return domain.NotFound(MsgNotFound)
	}
	if uc.hooks.AfterDelete != nil {
		return uc.hooks.AfterDelete(ctx, doc)
	}
	return nil
}

// Import carga documentos sin validación (solo conversiones, defaults y hooks de inserción).
// Los hooks posteriores no se ejecutan.
func (uc *ResourceUseCase) Import(ctx context.Context, bodies []map[string]any) (int, error) {
	docs := make([]repository.Document, 0, len(bodies))
	for _, b := range bodies {
		doc, err := uc.prepareInsert(b, schema.Import)
		if err != nil {
			return 0, err
		}
		if id, ok := b[schema.IDField].(string); ok {
			oid, err := ParseID(schema.IDField, id)
			if err != nil {
				return 0, err
			}
			doc[schema.IDField] = oid
		}
		docs = append(docs, doc)
	}
	return uc.repo.InsertMany(ctx, docs)
}

// DeleteAll vacía la colección.
func (uc *ResourceUseCase) DeleteAll(ctx context.Context) (int64, error) {
	return uc.repo.DeleteAll(ctx)
}

func (uc *ResourceUseCase) prepareInsert(body map[string]any, mode schema.Mode) (repository.Document, error) {
	doc, err := uc.schema.Prepare(body, mode)
	if err != nil {
		return nil, err
	}
	if h := uc.schema.Hooks.BeforeInsert; h != nil {
		if err := h(doc); err != nil {
			return nil, err
		}
	}
	uc.schema.StripTransient(doc)
	return doc, nil
}

func (uc *ResourceUseCase) shape(doc repository.Document) {
	shapeWith(uc.schema, doc, nil)
}

// shapeWith quita campos ocultos y la versión, y agrega virtuales, también en los documentos poblados.
func shapeWith(s *schema.Schema, doc repository.Document, extra []schema.Populate) {
	delete(doc, schema.VersionField)
	for _, h := range s.HiddenFields() {
		delete(doc, h)
	}
	if s.Hooks.Virtuals != nil {
		s.Hooks.Virtuals(doc)
	}
	for _, p := range append(append([]schema.Populate{}, s.AutoPopulate...), extra...) {
		switch v := doc[p.Path].(type) {
		case repository.Document:
			shapeWith(p.Target, v, nil)
		case []repository.Document:
			for _, d := range v {
				shapeWith(p.Target, d, nil)
			}
		}
	}
}

// ParseID convierte un id hexadecimal; un id inválido es un error de conversión (400).
func ParseID(path, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &domain.CastError{Path: path, Value: id, Kind: schema.ObjectID.String()}
	}
	return oid, nil
}

package schema

import (
	"strings"

	"github.com/jhoicas/tours-api/internal/domain"
)

// CastQueryValue convierte un valor de query string al tipo del campo indicado por path.
// Rutas anidadas o desconocidas conservan el valor textual.
func (s *Schema) CastQueryValue(path, raw string) (any, error) {
	if path == IDField {
		v, err := toObjectID(raw)
		if err != nil {
			return nil, &domain.CastError{Path: path, Value: raw, Kind: ObjectID.String()}
		}
		return v, nil
	}
	if strings.Contains(path, ".") {
		return raw, nil
	}
	f, ok := s.Field(path)
	if !ok {
		return raw, nil
	}
	v, err := f.castScalar(raw)
	if err != nil {
		return nil, &domain.CastError{Path: path, Value: raw, Kind: f.Kind.String()}
	}
	return v, nil
}

// IsHidden indica si el campo nunca debe proyectarse.
func (s *Schema) IsHidden(name string) bool {
	f, ok := s.Field(name)
	return ok && (f.Hidden || f.Transient)
}

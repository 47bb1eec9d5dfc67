package schema

import (
	"strings"

	"github.com/jhoicas/tours-api/internal/domain"
)

// Mode indica cómo se prepara un documento.
type Mode int

const (
	// Create documento completo: aplica defaults y exige campos requeridos.
	Create Mode = iota
	// Update actualización parcial: solo valida los campos presentes y descarta los protegidos.
	Update
	// Import carga masiva: aplica defaults y conversiones pero omite la validación.
	Import
)

// FieldError error de validación de un campo.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError agrupa todos los errores de validación de un documento.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return e.Schema + " validation failed: " + strings.Join(parts, ", ")
}

// Unwrap permite errors.Is(err, domain.ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

// Messages mensajes de cada campo en el orden del esquema.
func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		out = append(out, fe.Message)
	}
	return out
}

// Prepare convierte y valida un cuerpo de petición contra el esquema.
// Los campos desconocidos se descartan. Si algún campo falla, no se devuelve documento parcial.
// Los campos Transient se validan pero no forman parte del resultado.
func (s *Schema) Prepare(body map[string]any, mode Mode) (map[string]any, error) {
	out := make(map[string]any, len(s.Fields))
	var errs []FieldError

	for i := range s.Fields {
		f := &s.Fields[i]
		if mode == Update && f.Protected {
			continue
		}
		raw, present := body[f.Name]
		if !present || raw == nil {
			switch {
			case mode != Update && f.Default != nil:
				out[f.Name] = f.Default()
			case mode == Create && f.Required:
				errs = append(errs, FieldError{Field: f.Name, Message: f.requiredMessage()})
			case mode == Update && present && f.Required:
				errs = append(errs, FieldError{Field: f.Name, Message: f.requiredMessage()})
			}
			continue
		}
		v, err := f.cast(raw)
		if err != nil {
			errs = append(errs, FieldError{Field: f.Name, Message: f.castMessage(raw)})
			continue
		}
		out[f.Name] = v
	}

	if mode != Import {
		for i := range s.Fields {
			f := &s.Fields[i]
			v, ok := out[f.Name]
			if !ok {
				continue
			}
			if f.Required && isEmpty(v) {
				errs = append(errs, FieldError{Field: f.Name, Message: f.requiredMessage()})
				continue
			}
			for _, r := range f.rules {
				if msg := r(v, out); msg != "" {
					errs = append(errs, FieldError{Field: f.Name, Message: msg})
					break
				}
			}
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Schema: s.Name, Errors: errs}
	}

	for _, f := range s.Fields {
		if f.Transient && mode != Create {
			delete(out, f.Name)
		}
	}
	return out, nil
}

// StripTransient elimina de doc los campos que nunca se persisten. Se llama después de los hooks
// de inserción (que pueden necesitar, por ejemplo, la confirmación de contraseña).
func (s *Schema) StripTransient(doc map[string]any) {
	for _, f := range s.Fields {
		if f.Transient {
			delete(doc, f.Name)
		}
	}
}

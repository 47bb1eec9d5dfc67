package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
)

// CastError indica que un valor recibido no se puede convertir al tipo del campo (ej. un _id mal formado).
type CastError struct {
	Path  string
	Value string
	Kind  string
}

func (e *CastError) Error() string {
	return "Invalid " + e.Path + ": " + e.Value + "."
}

func (e *CastError) Unwrap() error { return ErrInvalidInput }

// DuplicateKeyError lo produce el adaptador de persistencia cuando se viola un índice único.
type DuplicateKeyError struct {
	Field string
	Value string
	Cause error
}

func (e *DuplicateKeyError) Error() string {
	return "duplicate key " + e.Field + ": " + e.Value
}

// Is permite errors.Is(err, ErrDuplicate).
func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicate }

func (e *DuplicateKeyError) Unwrap() error { return e.Cause }

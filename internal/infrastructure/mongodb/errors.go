package mongodb

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/tours-api/internal/domain"
)

// Ejemplo: E11000 duplicate key error collection: natours.tours index: name_1 dup key: { name: "The Forest Hiker" }
var dupKeyPattern = regexp.MustCompile(`dup key: \{ ?([^:{}]+): (.+?) ?\}`)

// translate convierte errores del driver en errores de dominio; el resto se envuelve con stack.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		field, value := parseDuplicateKey(err.Error())
		return &domain.DuplicateKeyError{Field: field, Value: value, Cause: errors.WithStack(err)}
	}
	return errors.Wrap(err, op)
}

func parseDuplicateKey(msg string) (field, value string) {
	m := dupKeyPattern.FindStringSubmatch(msg)
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

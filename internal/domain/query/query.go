// Package query traduce los parámetros de query string de una petición a un descriptor tipado de
// filtro, orden, proyección y paginación. El descriptor no depende del motor de base de datos.
package query

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jhoicas/tours-api/internal/domain"
)

// Operator operador de comparación de una condición.
type Operator string

const (
	OpEq  Operator = "eq"
	OpGte Operator = "gte"
	OpGt  Operator = "gt"
	OpLte Operator = "lte"
	OpLt  Operator = "lt"
	OpIn  Operator = "in"
)

// Claves reservadas que no forman parte del filtro.
const (
	KeyPage   = "page"
	KeySort   = "sort"
	KeyLimit  = "limit"
	KeyFields = "fields"
)

// Valores por defecto.
const (
	DefaultPage  = 1
	DefaultLimit = 100
	DefaultSort  = "-createdAt"
)

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z0-9_]+)*$`)

// ParseOperator reconoce los operadores admitidos entre corchetes: gte, gt, lte, lt.
func ParseOperator(s string) (Operator, bool) {
	switch Operator(s) {
	case OpGte, OpGt, OpLte, OpLt:
		return Operator(s), true
	}
	return "", false
}

// Condition una condición del filtro. Para OpIn, Value es []any.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// SortField un criterio de orden.
type SortField struct {
	Field string
	Desc  bool
}

// Descriptor resultado de traducir una query string.
type Descriptor struct {
	Filter []Condition
	Sort   []SortField
	Fields []string
	Page   int
	Limit  int
}

// Skip cantidad de documentos a saltar (paginación 1-indexada). Si el producto desborda se
// satura en math.MaxInt: una página fuera de rango siempre es una página vacía.
func (d *Descriptor) Skip() int {
	if d.Page < 1 || d.Limit < 1 {
		return 0
	}
	if d.Page-1 > math.MaxInt/d.Limit {
		return math.MaxInt
	}
	return (d.Page - 1) * d.Limit
}

// Where agrega una condición de igualdad (ej. restricción al recurso padre en rutas anidadas).
func (d *Descriptor) Where(field string, value any) *Descriptor {
	d.Filter = append(d.Filter, Condition{Field: field, Op: OpEq, Value: value})
	return d
}

// Caster convierte valores textuales al tipo del campo. Lo implementa *schema.Schema.
type Caster interface {
	CastQueryValue(path, raw string) (any, error)
}

// Options parámetros de traducción.
type Options struct {
	Caster       Caster
	DefaultSort  string
	DefaultLimit int
}

// Parse construye el descriptor a partir de los valores de la query string.
//
// Cada clave no reservada es `campo` (igualdad) o `campo[op]` con op en gte|gt|lte|lt.
// Varios valores para una misma clave de igualdad se traducen a OpIn.
func Parse(values map[string][]string, opts Options) (*Descriptor, error) {
	if opts.DefaultSort == "" {
		opts.DefaultSort = DefaultSort
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	d := &Descriptor{
		Page:  positiveInt(last(values[KeyPage]), DefaultPage),
		Limit: positiveInt(last(values[KeyLimit]), opts.DefaultLimit),
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if isReserved(k) || len(values[k]) == 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field, op, err := ParseKey(key)
		if err != nil {
			return nil, err
		}
		raws := values[key]
		if op == OpEq && len(raws) > 1 {
			in := make([]any, 0, len(raws))
			for _, raw := range raws {
				v, err := cast(opts.Caster, field, raw)
				if err != nil {
					return nil, err
				}
				in = append(in, v)
			}
			d.Filter = append(d.Filter, Condition{Field: field, Op: OpIn, Value: in})
			continue
		}
		v, err := cast(opts.Caster, field, last(raws))
		if err != nil {
			return nil, err
		}
		d.Filter = append(d.Filter, Condition{Field: field, Op: op, Value: v})
	}

	sortSpec := last(values[KeySort])
	if sortSpec == "" {
		sortSpec = opts.DefaultSort
	}
	var err error
	if d.Sort, err = parseSort(sortSpec); err != nil {
		return nil, err
	}
	if d.Fields, err = parseFields(last(values[KeyFields])); err != nil {
		return nil, err
	}
	return d, nil
}

// ParseKey separa `campo[op]` en campo y operador. Solo se reconoce un par de corchetes al final.
func ParseKey(key string) (string, Operator, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		if !fieldName.MatchString(key) {
			return "", "", domain.BadRequest("Invalid query field: " + key)
		}
		return key, OpEq, nil
	}
	if !strings.HasSuffix(key, "]") || strings.Count(key, "[") != 1 || strings.Count(key, "]") != 1 {
		return "", "", domain.BadRequest("Invalid query parameter: " + key)
	}
	field := key[:open]
	if !fieldName.MatchString(field) {
		return "", "", domain.BadRequest("Invalid query field: " + field)
	}
	op, ok := ParseOperator(key[open+1 : len(key)-1])
	if !ok {
		return "", "", domain.BadRequest("Invalid query operator: " + key[open+1:len(key)-1])
	}
	return field, op, nil
}

func parseSort(spec string) ([]SortField, error) {
	var out []SortField
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sf := SortField{Field: part}
		if strings.HasPrefix(part, "-") {
			sf = SortField{Field: part[1:], Desc: true}
		} else if strings.HasPrefix(part, "+") {
			sf.Field = part[1:]
		}
		if !fieldName.MatchString(sf.Field) {
			return nil, domain.BadRequest("Invalid sort field: " + part)
		}
		out = append(out, sf)
	}
	return out, nil
}

func parseFields(spec string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !fieldName.MatchString(part) {
			return nil, domain.BadRequest("Invalid projection field: " + part)
		}
		out = append(out, part)
	}
	return out, nil
}

func cast(c Caster, field, raw string) (any, error) {
	if c == nil {
		return raw, nil
	}
	return c.CastQueryValue(field, raw)
}

func isReserved(k string) bool {
	switch k {
	case KeyPage, KeySort, KeyLimit, KeyFields:
		return true
	}
	return false
}

func last(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[len(vs)-1]
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Package schema define los descriptores de recurso: lista de campos tipados con sus reglas de
// validación y relaciones. Los descriptores se compilan al arrancar y son inmutables después.
package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// VersionField es el campo interno de versión que se escribe en cada inserción.
const VersionField = "__v"

// IDField es la clave primaria de los documentos.
const IDField = "_id"

// Kind tipo de dato de un campo.
type Kind int

const (
	String Kind = iota
	Number
	Bool
	Date
	ObjectID
	StringList
	DateList
	ObjectIDList
	Point     // punto GeoJSON embebido {type, coordinates, address, description, day}
	PointList // lista de puntos GeoJSON
)

func (k Kind) String() string {
	switch k {
	case String, StringList:
		return "string"
	case Number:
		return "Number"
	case Bool:
		return "Boolean"
	case Date, DateList:
		return "Date"
	case ObjectID, ObjectIDList:
		return "ObjectId"
	case Point, PointList:
		return "Embedded"
	default:
		return "Mixed"
	}
}

// Check validador personalizado. Message admite el marcador {VALUE}.
// doc contiene los demás campos ya convertidos del mismo documento (o de la actualización parcial).
type Check struct {
	Fn      func(value any, doc map[string]any) bool
	Message string
}

// Field descriptor de un campo.
type Field struct {
	Name string
	Kind Kind

	Required        bool
	RequiredMessage string
	Unique          bool

	Trim      bool
	Lowercase bool

	Min, Max               *float64
	MinMessage, MaxMessage string

	MinLength, MaxLength               int
	MinLengthMessage, MaxLengthMessage string

	Enum        []string
	EnumMessage string

	Pattern        *regexp.Regexp
	PatternMessage string

	Checks []Check

	Default func() any
	Set     func(any) any

	Hidden    bool   // nunca se proyecta en las lecturas
	Protected bool   // no se puede modificar por la ruta de actualización genérica
	Transient bool   // se valida pero nunca se persiste
	Ref       string // colección referenciada (ObjectID / ObjectIDList)

	rules []rule
}

// Bound helper para Min/Max.
func Bound(v float64) *float64 { return &v }

// Populate describe cómo cargar documentos relacionados.
// Con ForeignField vacío, Path contiene ids locales que se reemplazan por los documentos de Target.
// Con ForeignField definido es un populate virtual: se buscan en Target los documentos cuyo
// ForeignField es el _id local y se colocan en Path.
type Populate struct {
	Path         string
	Target       *Schema
	Select       []string
	ForeignField string
}

// IndexKey un componente de índice. Value es 1, -1 o un tipo especial como "2dsphere".
type IndexKey struct {
	Field string
	Value any
}

// Index índice requerido por la semántica del esquema.
type Index struct {
	Keys   []IndexKey
	Unique bool
}

// Hooks funciones de ciclo de vida del documento.
type Hooks struct {
	BeforeInsert func(doc map[string]any) error
	BeforeUpdate func(set map[string]any) error
	Virtuals     func(doc map[string]any)
}

// Schema descriptor de un tipo de recurso.
type Schema struct {
	Name       string
	Collection string
	Fields     []Field

	// Scope filtro base que se aplica a toda lectura (find y agregaciones).
	Scope        map[string]any
	AutoPopulate []Populate
	Indexes      []Index
	Hooks        Hooks

	byName   map[string]int
	compiled bool
}

// Compile valida el descriptor y compila las reglas de cada campo.
func (s *Schema) Compile() error {
	if s.compiled {
		return nil
	}
	if s.Name == "" || s.Collection == "" {
		return fmt.Errorf("schema: nombre y colección son requeridos")
	}
	s.byName = make(map[string]int, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("schema %s: campo %d sin nombre", s.Name, i)
		}
		if f.Name == IDField || f.Name == VersionField || strings.ContainsAny(f.Name, ".$") {
			return fmt.Errorf("schema %s: nombre de campo reservado o inválido %q", s.Name, f.Name)
		}
		if _, dup := s.byName[f.Name]; dup {
			return fmt.Errorf("schema %s: campo duplicado %q", s.Name, f.Name)
		}
		if len(f.Enum) > 0 && f.Kind != String {
			return fmt.Errorf("schema %s: enum solo aplica a campos string (%s)", s.Name, f.Name)
		}
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			return fmt.Errorf("schema %s: min > max en %s", s.Name, f.Name)
		}
		if f.Ref != "" && f.Kind != ObjectID && f.Kind != ObjectIDList {
			return fmt.Errorf("schema %s: ref solo aplica a ObjectId (%s)", s.Name, f.Name)
		}
		f.rules = compileRules(f)
		s.byName[f.Name] = i
		if f.Unique {
			s.Indexes = append(s.Indexes, Index{Keys: []IndexKey{{Field: f.Name, Value: 1}}, Unique: true})
		}
	}
	for _, p := range s.AutoPopulate {
		if p.Target == nil || p.Path == "" {
			return fmt.Errorf("schema %s: populate incompleto", s.Name)
		}
	}
	s.compiled = true
	return nil
}

// Must compila el esquema y hace panic si es inválido (uso en arranque).
func Must(s *Schema) *Schema {
	if err := s.Compile(); err != nil {
		panic(err)
	}
	return s
}

// Field busca un campo por nombre.
func (s *Schema) Field(name string) (*Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return &s.Fields[i], true
}

// HiddenFields campos que nunca salen en las lecturas.
func (s *Schema) HiddenFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Hidden || f.Transient {
			out = append(out, f.Name)
		}
	}
	return out
}

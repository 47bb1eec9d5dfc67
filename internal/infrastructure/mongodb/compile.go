package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/tours-api/internal/domain/query"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

// compileFilter agrupa las condiciones por campo. Un campo con solo igualdad se compila como valor
// directo; con operadores se compila como documento {$gte: .., $lt: ..}.
func compileFilter(conds []query.Condition) bson.M {
	filter := bson.M{}
	ops := map[string]bson.M{}
	var order []string
	for _, c := range conds {
		m, ok := ops[c.Field]
		if !ok {
			m = bson.M{}
			ops[c.Field] = m
			order = append(order, c.Field)
		}
		m["$"+string(c.Op)] = c.Value
	}
	for _, field := range order {
		m := ops[field]
		if v, ok := m["$eq"]; ok && len(m) == 1 {
			filter[field] = v
			continue
		}
		filter[field] = m
	}
	return filter
}

// scoped combina el filtro base del esquema con el filtro de la petición.
func scoped(s *schema.Schema, filter bson.M) bson.M {
	if len(s.Scope) == 0 {
		return filter
	}
	scope := bson.M(s.Scope)
	if len(filter) == 0 {
		return scope
	}
	return bson.M{"$and": bson.A{scope, filter}}
}

// projection lista de inclusión si se pidieron campos; si no, excluye __v y los campos ocultos.
func projection(s *schema.Schema, fields []string) bson.M {
	if len(fields) > 0 {
		p := bson.M{}
		for _, f := range fields {
			if f == schema.VersionField || s.IsHidden(f) {
				continue
			}
			p[f] = 1
		}
		if len(p) > 0 {
			return p
		}
	}
	p := bson.M{schema.VersionField: 0}
	for _, h := range s.HiddenFields() {
		p[h] = 0
	}
	return p
}

// selectProjection traduce una selección estilo "name", "-__v" a proyección.
func selectProjection(s *schema.Schema, sel []string) bson.M {
	var include []string
	p := projection(s, nil)
	for _, f := range sel {
		if len(f) > 1 && f[0] == '-' {
			p[f[1:]] = 0
			continue
		}
		include = append(include, f)
	}
	if len(include) > 0 {
		return projection(s, include)
	}
	return p
}

func sortDoc(sf []query.SortField) bson.D {
	d := make(bson.D, 0, len(sf))
	for _, f := range sf {
		dir := 1
		if f.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: f.Field, Value: dir})
	}
	return d
}

func findOptions(s *schema.Schema, d *query.Descriptor) *options.FindOptions {
	opts := options.Find().SetProjection(projection(s, d.Fields))
	if len(d.Sort) > 0 {
		opts.SetSort(sortDoc(d.Sort))
	}
	if skip := d.Skip(); skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if d.Limit > 0 {
		opts.SetLimit(int64(d.Limit))
	}
	return opts
}

package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/tours-api/internal/domain/repository"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

// finder consulta documentos crudos de la colección relacionada.
type finder func(ctx context.Context, filter, proj bson.M) ([]repository.Document, error)

// populate reemplaza referencias por documentos relacionados con una consulta por relación,
// no por documento. Los documentos relacionados aplican a su vez el AutoPopulate de su esquema.
func (s *Store) populate(ctx context.Context, docs []repository.Document, specs []schema.Populate) error {
	if len(docs) == 0 {
		return nil
	}
	for _, p := range specs {
		target := NewStore(s.db, p.Target)
		proj := selectProjection(p.Target, p.Select)
		if p.ForeignField != "" {
			if err := populateVirtual(ctx, target.findRaw, docs, p, proj); err != nil {
				return err
			}
			continue
		}
		if err := populateRefs(ctx, target.findRaw, docs, p, proj); err != nil {
			return err
		}
	}
	return nil
}

func populateRefs(ctx context.Context, find finder, docs []repository.Document, p schema.Populate, proj bson.M) error {
	var ids []primitive.ObjectID
	for _, d := range docs {
		ids = append(ids, refIDs(d[p.Path])...)
	}
	if len(ids) == 0 {
		return nil
	}
	related, err := find(ctx, bson.M{schema.IDField: bson.M{"$in": ids}}, proj)
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]repository.Document, len(related))
	for _, r := range related {
		if id, ok := r[schema.IDField].(primitive.ObjectID); ok {
			byID[id] = r
		}
	}
	for _, d := range docs {
		switch v := d[p.Path].(type) {
		case primitive.ObjectID:
			if r, ok := byID[v]; ok {
				d[p.Path] = r
			} else {
				d[p.Path] = nil
			}
		case primitive.A, []primitive.ObjectID:
			list := make([]repository.Document, 0)
			for _, id := range refIDs(v) {
				if r, ok := byID[id]; ok {
					list = append(list, r)
				}
			}
			d[p.Path] = list
		}
	}
	return nil
}

func populateVirtual(ctx context.Context, find finder, docs []repository.Document, p schema.Populate, proj bson.M) error {
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		if id, ok := d[schema.IDField].(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	if _, included := proj[p.ForeignField]; !included && isInclusion(proj) {
		proj[p.ForeignField] = 1
	}
	related, err := find(ctx, bson.M{p.ForeignField: bson.M{"$in": ids}}, proj)
	if err != nil {
		return err
	}
	grouped := make(map[primitive.ObjectID][]repository.Document)
	for _, r := range related {
		// la clave foránea puede venir ya poblada por el AutoPopulate del destino
		switch fk := r[p.ForeignField].(type) {
		case primitive.ObjectID:
			grouped[fk] = append(grouped[fk], r)
		case primitive.M:
			if id, ok := fk[schema.IDField].(primitive.ObjectID); ok {
				grouped[id] = append(grouped[id], r)
			}
		case repository.Document:
			if id, ok := fk[schema.IDField].(primitive.ObjectID); ok {
				grouped[id] = append(grouped[id], r)
			}
		}
	}
	for _, d := range docs {
		id, _ := d[schema.IDField].(primitive.ObjectID)
		list := grouped[id]
		if list == nil {
			list = []repository.Document{}
		}
		d[p.Path] = list
	}
	return nil
}

func refIDs(v any) []primitive.ObjectID {
	switch t := v.(type) {
	case primitive.ObjectID:
		return []primitive.ObjectID{t}
	case []primitive.ObjectID:
		return t
	case primitive.A:
		out := make([]primitive.ObjectID, 0, len(t))
		for _, e := range t {
			if id, ok := e.(primitive.ObjectID); ok {
				out = append(out, id)
			}
		}
		return out
	}
	return nil
}

func isInclusion(proj bson.M) bool {
	for _, v := range proj {
		if v == 1 {
			return true
		}
	}
	return false
}

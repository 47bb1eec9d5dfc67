package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/tours-api/internal/domain"
	"github.com/jhoicas/tours-api/internal/domain/query"
	"github.com/jhoicas/tours-api/internal/domain/repository"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

// DocumentStore implementación en memoria de repository.DocumentRepository para los tests de use
// cases y de la capa HTTP; cmd/api siempre persiste en MongoDB. Soporta el Scope del esquema con
// igualdad y $ne, los operadores del filtro, orden, paginación, proyección y unicidad de los campos
// Unique. No resuelve populate.
type DocumentStore struct {
	mu     sync.RWMutex
	schema *schema.Schema
	docs   []repository.Document
}

// NewDocumentStore crea una colección vacía para el esquema.
func NewDocumentStore(s *schema.Schema) *DocumentStore {
	return &DocumentStore{schema: s}
}

func (s *DocumentStore) Schema() *schema.Schema { return s.schema }

type memQuery struct {
	store *DocumentStore
	desc  *query.Descriptor
}

func (s *DocumentStore) Find(d *query.Descriptor) repository.Query {
	return &memQuery{store: s, desc: d}
}

func (q *memQuery) All(ctx context.Context) ([]repository.Document, error) {
	s := q.store
	s.mu.RLock()
	var out []repository.Document
	for _, d := range s.docs {
		if s.inScope(d) && matches(d, q.desc.Filter) {
			out = append(out, d)
		}
	}
	s.mu.RUnlock()

	if len(q.desc.Sort) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, sf := range q.desc.Sort {
				c := compare(out[i][sf.Field], out[j][sf.Field])
				if c == 0 {
					continue
				}
				if sf.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	skip := q.desc.Skip()
	if skip >= len(out) {
		return []repository.Document{}, nil
	}
	out = out[skip:]
	if q.desc.Limit > 0 && len(out) > q.desc.Limit {
		out = out[:q.desc.Limit]
	}
	res := make([]repository.Document, 0, len(out))
	for _, d := range out {
		res = append(res, s.project(d, q.desc.Fields))
	}
	return res, nil
}

func (s *DocumentStore) FindByID(ctx context.Context, id primitive.ObjectID, _ ...schema.Populate) (repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 || !s.inScope(s.docs[i]) {
		return nil, nil
	}
	return s.project(s.docs[i], nil), nil
}

func (s *DocumentStore) Insert(ctx context.Context, doc repository.Document) (repository.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := doc[schema.IDField]; !ok {
		doc[schema.IDField] = primitive.NewObjectID()
	}
	doc[schema.VersionField] = 0
	if err := s.checkUnique(doc, -1); err != nil {
		return nil, err
	}
	s.docs = append(s.docs, clone(doc))
	return doc, nil
}

func (s *DocumentStore) InsertMany(ctx context.Context, docs []repository.Document) (int, error) {
	for i, d := range docs {
		if _, err := s.Insert(ctx, d); err != nil {
			return i, err
		}
	}
	return len(docs), nil
}

func (s *DocumentStore) UpdateByID(ctx context.Context, id primitive.ObjectID, set repository.Document) (repository.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 || !s.inScope(s.docs[i]) {
		return nil, nil
	}
	next := clone(s.docs[i])
	for k, v := range set {
		next[k] = v
	}
	if err := s.checkUnique(next, i); err != nil {
		return nil, err
	}
	s.docs[i] = next
	return s.project(next, nil), nil
}

func (s *DocumentStore) DeleteByID(ctx context.Context, id primitive.ObjectID) (repository.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 || !s.inScope(s.docs[i]) {
		return nil, nil
	}
	doc := s.docs[i]
	s.docs = append(s.docs[:i], s.docs[i+1:]...)
	return s.project(doc, nil), nil
}

func (s *DocumentStore) DeleteAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.docs))
	s.docs = nil
	return n, nil
}

// Raw devuelve los documentos almacenados, sin Scope ni proyección.
func (s *DocumentStore) Raw() []repository.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]repository.Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, clone(d))
	}
	return out
}

func (s *DocumentStore) indexOf(id primitive.ObjectID) int {
	for i, d := range s.docs {
		if d[schema.IDField] == id {
			return i
		}
	}
	return -1
}

func (s *DocumentStore) checkUnique(doc repository.Document, self int) error {
	for _, f := range s.schema.Fields {
		if !f.Unique {
			continue
		}
		v, ok := doc[f.Name]
		if !ok || v == nil {
			continue
		}
		for i, other := range s.docs {
			if i != self && compare(other[f.Name], v) == 0 && other[schema.IDField] != doc[schema.IDField] {
				return &domain.DuplicateKeyError{Field: f.Name, Value: quote(v)}
			}
		}
	}
	return nil
}

func (s *DocumentStore) inScope(d repository.Document) bool {
	for field, cond := range s.schema.Scope {
		if m, ok := cond.(map[string]any); ok {
			if ne, ok := m["$ne"]; ok && d[field] == ne {
				return false
			}
			continue
		}
		if d[field] != cond {
			return false
		}
	}
	return true
}

func (s *DocumentStore) project(d repository.Document, fields []string) repository.Document {
	out := repository.Document{}
	if len(fields) > 0 {
		out[schema.IDField] = d[schema.IDField]
		for _, f := range fields {
			if v, ok := d[f]; ok && !s.schema.IsHidden(f) && f != schema.VersionField {
				out[f] = v
			}
		}
		return out
	}
	for k, v := range d {
		if k == schema.VersionField || s.schema.IsHidden(k) {
			continue
		}
		out[k] = v
	}
	return out
}

func matches(d repository.Document, conds []query.Condition) bool {
	for _, c := range conds {
		v := lookup(d, c.Field)
		switch c.Op {
		case query.OpEq:
			if compare(v, c.Value) != 0 {
				return false
			}
		case query.OpIn:
			found := false
			for _, in := range c.Value.([]any) {
				if compare(v, in) == 0 {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			if v == nil {
				return false
			}
			r := compare(v, c.Value)
			ok := (c.Op == query.OpGt && r > 0) || (c.Op == query.OpGte && r >= 0) ||
				(c.Op == query.OpLt && r < 0) || (c.Op == query.OpLte && r <= 0)
			if !ok {
				return false
			}
		}
	}
	return true
}

func lookup(d repository.Document, path string) any {
	var cur any = d
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// compare orden total simple entre valores del mismo tipo; tipos distintos se consideran distintos.
func compare(a, b any) int {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return cmp(x < y, x > y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			return cmp(!x && y, x && !y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return cmp(x.Before(y), x.After(y))
		}
	case primitive.ObjectID:
		if y, ok := b.(primitive.ObjectID); ok {
			return strings.Compare(x.Hex(), y.Hex())
		}
	case nil:
		if b == nil {
			return 0
		}
		return -1
	}
	return 1
}

func cmp(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func quote(v any) string {
	if s, ok := v.(string); ok {
		return `"` + s + `"`
	}
	return fmt.Sprint(v)
}

func clone(d repository.Document) repository.Document {
	out := make(repository.Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

var _ repository.DocumentRepository = (*DocumentStore)(nil)

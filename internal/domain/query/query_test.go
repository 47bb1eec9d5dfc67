package query_test

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tours-api/internal/domain"
	"github.com/jhoicas/tours-api/internal/domain/query"
)

// numberCaster convierte a número los campos indicados; el resto queda como string.
type numberCaster map[string]bool

func (c numberCaster) CastQueryValue(path, raw string) (any, error) {
	if !c[path] {
		return raw, nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &domain.CastError{Path: path, Value: raw, Kind: "Number"}
	}
	return n, nil
}

func parse(t *testing.T, rawQuery string, opts query.Options) *query.Descriptor {
	t.Helper()
	values, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)
	d, err := query.Parse(values, opts)
	require.NoError(t, err)
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Filtro
// ──────────────────────────────────────────────────────────────────────────────

func TestParse_OperadorGteSobreCampo(t *testing.T) {
	d := parse(t, "age[gte]=30", query.Options{Caster: numberCaster{"age": true}})

	require.Len(t, d.Filter, 1)
	assert.Equal(t, query.Condition{Field: "age", Op: query.OpGte, Value: 30.0}, d.Filter[0],
		"age[gte] debe traducirse a una comparación, no a un campo literal")
}

func TestParse_TodosLosOperadoresSeTraducen(t *testing.T) {
	d := parse(t, "price[gte]=100&price[lt]=500&duration[gt]=3&duration[lte]=10",
		query.Options{Caster: numberCaster{"price": true, "duration": true}})

	assert.ElementsMatch(t, []query.Condition{
		{Field: "duration", Op: query.OpGt, Value: 3.0},
		{Field: "duration", Op: query.OpLte, Value: 10.0},
		{Field: "price", Op: query.OpGte, Value: 100.0},
		{Field: "price", Op: query.OpLt, Value: 500.0},
	}, d.Filter)
}

func TestParse_NombreDeCampoConOperadorNoSeReescribe(t *testing.T) {
	d := parse(t, "gteScore=5&ltName=x", query.Options{})

	assert.ElementsMatch(t, []query.Condition{
		{Field: "gteScore", Op: query.OpEq, Value: "5"},
		{Field: "ltName", Op: query.OpEq, Value: "x"},
	}, d.Filter)
}

func TestParse_ClavesReservadasNoFiltran(t *testing.T) {
	d := parse(t, "page=2&sort=price&limit=10&fields=name&difficulty=easy", query.Options{})

	assert.Equal(t, []query.Condition{{Field: "difficulty", Op: query.OpEq, Value: "easy"}}, d.Filter)
}

func TestParse_ValoresRepetidosSonIn(t *testing.T) {
	d := parse(t, "duration=5&duration=9", query.Options{Caster: numberCaster{"duration": true}})

	require.Len(t, d.Filter, 1)
	assert.Equal(t, query.OpIn, d.Filter[0].Op)
	assert.Equal(t, []any{5.0, 9.0}, d.Filter[0].Value)
}

func TestParse_OperadorDesconocidoEs400(t *testing.T) {
	values, _ := url.ParseQuery("price[ne]=5")
	_, err := query.Parse(values, query.Options{})

	ae := domain.AsAppError(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusBadRequest, ae.StatusCode)
}

func TestParse_CampoConDolarEsRechazado(t *testing.T) {
	values := map[string][]string{"$where": {"1"}}
	_, err := query.Parse(values, query.Options{})
	assert.Error(t, err)
}

func TestParse_ErrorDeConversionSePropaga(t *testing.T) {
	values, _ := url.ParseQuery("price[gte]=barato")
	_, err := query.Parse(values, query.Options{Caster: numberCaster{"price": true}})

	var ce *domain.CastError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Invalid price: barato.", ce.Error())
}

// ──────────────────────────────────────────────────────────────────────────────
// Orden, proyección y paginación
// ──────────────────────────────────────────────────────────────────────────────

func TestParse_OrdenMultiple(t *testing.T) {
	d := parse(t, "sort=-ratingsAverage,price", query.Options{})

	assert.Equal(t, []query.SortField{
		{Field: "ratingsAverage", Desc: true},
		{Field: "price"},
	}, d.Sort)
}

func TestParse_OrdenPorDefectoEsCreatedAtDescendente(t *testing.T) {
	d := parse(t, "", query.Options{})

	assert.Equal(t, []query.SortField{{Field: "createdAt", Desc: true}}, d.Sort)
}

func TestParse_Proyeccion(t *testing.T) {
	d := parse(t, "fields=name,duration,price", query.Options{})
	assert.Equal(t, []string{"name", "duration", "price"}, d.Fields)

	d = parse(t, "", query.Options{})
	assert.Empty(t, d.Fields, "sin fields no hay lista de inclusión")
}

func TestParse_PaginacionPorDefecto(t *testing.T) {
	d := parse(t, "", query.Options{})

	assert.Equal(t, 1, d.Page)
	assert.Equal(t, 100, d.Limit)
	assert.Equal(t, 0, d.Skip())
}

func TestParse_PaginaTresLimiteDos(t *testing.T) {
	d := parse(t, "page=3&limit=2", query.Options{})

	assert.Equal(t, 4, d.Skip())
	assert.Equal(t, 2, d.Limit)
}

func TestSkip_PaginaEnormeNoDesborda(t *testing.T) {
	d := parse(t, "page=92233720368547760&limit=100", query.Options{})

	assert.Equal(t, math.MaxInt, d.Skip())
}

func TestParse_PaginacionInvalidaUsaDefaults(t *testing.T) {
	d := parse(t, "page=-1&limit=abc", query.Options{})

	assert.Equal(t, 1, d.Page)
	assert.Equal(t, 100, d.Limit)
}

func TestWhere_AgregaIgualdad(t *testing.T) {
	d := parse(t, "rating[gte]=4", query.Options{})
	d.Where("tour", "abc")

	assert.Contains(t, d.Filter, query.Condition{Field: "tour", Op: query.OpEq, Value: "abc"})
}

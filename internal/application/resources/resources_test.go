package resources_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/tours-api/internal/application/resources"
	"github.com/jhoicas/tours-api/internal/domain/schema"
)

func registry(t *testing.T) *resources.Registry {
	t.Helper()
	reg, err := resources.New()
	require.NoError(t, err)
	return reg
}

func TestNew_IndicesYRelaciones(t *testing.T) {
	reg := registry(t)

	assert.Len(t, reg.Tours.Indexes, 4, "price+ratingsAverage, 2dsphere, name y slug únicos")
	assert.Len(t, reg.Users.Indexes, 1)
	require.Len(t, reg.Reviews.Indexes, 1)
	assert.True(t, reg.Reviews.Indexes[0].Unique)

	assert.Equal(t, reg.Users, reg.Tours.AutoPopulate[0].Target)
	assert.Equal(t, reg.Reviews, reg.TourReviews.Target)
	assert.Equal(t, "tour", reg.TourReviews.ForeignField)
	assert.Equal(t, []*schema.Schema{reg.Users, reg.Tours, reg.Reviews}, reg.All())
}

func TestTour_PriceDiscountSinPrecioEnLaActualizacion(t *testing.T) {
	reg := registry(t)

	set, err := reg.Tours.Prepare(map[string]any{"priceDiscount": 50.0}, schema.Update)
	require.NoError(t, err)
	assert.Equal(t, 50.0, set["priceDiscount"])

	_, err = reg.Tours.Prepare(map[string]any{"priceDiscount": 50.0, "price": 40.0}, schema.Update)
	assert.Error(t, err)
}

func TestTour_RatingsAverageRedondeaUnDecimal(t *testing.T) {
	reg := registry(t)

	for in, want := range map[float64]float64{4.666: 4.7, 4.44: 4.4, 3.05: 3.1, 5: 5} {
		set, err := reg.Tours.Prepare(map[string]any{"ratingsAverage": in}, schema.Update)
		require.NoError(t, err)
		assert.Equal(t, want, set["ratingsAverage"], in)
	}
}

func TestTour_Virtuales(t *testing.T) {
	reg := registry(t)
	doc := map[string]any{"duration": 14.0}

	reg.Tours.Hooks.Virtuals(doc)

	assert.Equal(t, 2.0, doc["durationWeeks"])
	assert.NotContains(t, doc, "id", "sin _id no hay id")
}

func TestUser_HashDePasswordEnInsercion(t *testing.T) {
	reg := registry(t)
	doc, err := reg.Users.Prepare(map[string]any{
		"name": "Leo", "email": "leo@example.com", "password": "pass1234", "passwordConfirm": "pass1234",
	}, schema.Create)
	require.NoError(t, err)

	require.NoError(t, reg.Users.Hooks.BeforeInsert(doc))

	hash := doc["password"].(string)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, resources.PasswordCost, cost)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pass1234")))

	require.NoError(t, reg.Users.Hooks.BeforeInsert(doc))
	assert.Equal(t, hash, doc["password"], "un hash existente no se vuelve a hashear")
}

func TestUser_CamposRequeridosYRol(t *testing.T) {
	reg := registry(t)

	_, err := reg.Users.Prepare(map[string]any{"role": "root"}, schema.Create)

	var ve *schema.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{
		"Please tell us your name!",
		"Please provide your email",
		"Please provide a password",
		"Please confirm your password",
		"`root` is not a valid enum value for path `role`.",
	}, ve.Messages())
}

func TestReview_Requeridos(t *testing.T) {
	reg := registry(t)

	_, err := reg.Reviews.Prepare(map[string]any{"rating": 6.0}, schema.Create)

	var ve *schema.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{
		"Review can not be empty!",
		"Review must belong to a tour.",
		"Review must belong to a user",
		"Path `rating` (6) is more than maximum allowed value (5).",
	}, ve.Messages())
}

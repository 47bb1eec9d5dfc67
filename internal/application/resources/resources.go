// Package resources declara los descriptores de tours, usuarios y reseñas.
package resources

import (
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/tours-api/internal/domain/schema"
	"github.com/jhoicas/tours-api/pkg/slug"
)

// PasswordCost costo bcrypt de las contraseñas de usuario.
const PasswordCost = 12

// Valores por defecto de las calificaciones de un tour sin reseñas.
const (
	DefaultRatingsAverage  = 4.5
	DefaultRatingsQuantity = 0.0
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Registry esquemas compilados de la API.
type Registry struct {
	Tours   *schema.Schema
	Users   *schema.Schema
	Reviews *schema.Schema

	// TourReviews populate virtual de las reseñas de un tour (solo en get-one).
	TourReviews schema.Populate
}

// New construye y compila los esquemas. Usuarios y reseñas primero: tours los referencia.
func New() (*Registry, error) {
	users := userSchema()
	if err := users.Compile(); err != nil {
		return nil, err
	}
	reviews := reviewSchema(users)
	if err := reviews.Compile(); err != nil {
		return nil, err
	}
	tours := tourSchema(users)
	if err := tours.Compile(); err != nil {
		return nil, err
	}
	return &Registry{
		Tours:       tours,
		Users:       users,
		Reviews:     reviews,
		TourReviews: schema.Populate{Path: "reviews", Target: reviews, ForeignField: "tour"},
	}, nil
}

// All esquemas en orden de carga de datos.
func (r *Registry) All() []*schema.Schema {
	return []*schema.Schema{r.Users, r.Tours, r.Reviews}
}

func tourSchema(users *schema.Schema) *schema.Schema {
	return &schema.Schema{
		Name:       "Tour",
		Collection: "tours",
		Scope:      map[string]any{"secretTour": map[string]any{"$ne": true}},
		Fields: []schema.Field{
			{
				Name: "name", Kind: schema.String, Required: true, RequiredMessage: "A tour must have a name",
				Unique: true, Trim: true,
				MaxLength: 40, MaxLengthMessage: "A tour name must have less or equal then 40 characters",
				MinLength: 10, MinLengthMessage: "A tour name must have more or equal then 10 characters",
			},
			{Name: "slug", Kind: schema.String, Unique: true},
			{Name: "duration", Kind: schema.Number, Required: true, RequiredMessage: "A tour must have a duration"},
			{Name: "maxGroupSize", Kind: schema.Number, Required: true, RequiredMessage: "A tour must have a group size"},
			{
				Name: "difficulty", Kind: schema.String, Required: true, RequiredMessage: "A tour must have a difficulty",
				Enum: []string{"easy", "medium", "difficult"}, EnumMessage: "Difficulty is either: easy, medium, difficult",
			},
			{
				Name: "ratingsAverage", Kind: schema.Number, Default: func() any { return DefaultRatingsAverage },
				Min: schema.Bound(1), MinMessage: "Rating must be above 1.0",
				Max: schema.Bound(5), MaxMessage: "Rating must be below 5.0",
				Set: roundRating,
			},
			{Name: "ratingsQuantity", Kind: schema.Number, Default: func() any { return DefaultRatingsQuantity }},
			{Name: "price", Kind: schema.Number, Required: true, RequiredMessage: "A tour must have a price"},
			{
				Name: "priceDiscount", Kind: schema.Number,
				Checks: []schema.Check{{Fn: belowPrice, Message: "Discount price ({VALUE}) should be below regular price"}},
			},
			{Name: "summary", Kind: schema.String, Trim: true, Required: true, RequiredMessage: "A tour must have a description"},
			{Name: "description", Kind: schema.String, Trim: true},
			{Name: "imageCover", Kind: schema.String, Required: true, RequiredMessage: "A tour must have a cover image"},
			{Name: "images", Kind: schema.StringList},
			{Name: "createdAt", Kind: schema.Date, Default: now, Hidden: true},
			{Name: "startDates", Kind: schema.DateList},
			{Name: "secretTour", Kind: schema.Bool, Default: func() any { return false }},
			{Name: "startLocation", Kind: schema.Point},
			{Name: "locations", Kind: schema.PointList},
			{Name: "guides", Kind: schema.ObjectIDList, Ref: users.Collection},
		},
		AutoPopulate: []schema.Populate{
			{Path: "guides", Target: users, Select: []string{"-" + schema.VersionField, "-passwordChangedAt"}},
		},
		Indexes: []schema.Index{
			{Keys: []schema.IndexKey{{Field: "price", Value: 1}, {Field: "ratingsAverage", Value: -1}}},
			{Keys: []schema.IndexKey{{Field: "startLocation", Value: "2dsphere"}}},
		},
		Hooks: schema.Hooks{
			BeforeInsert: func(doc map[string]any) error {
				if name, ok := doc["name"].(string); ok {
					doc["slug"] = slug.Make(name)
				}
				return nil
			},
			BeforeUpdate: func(set map[string]any) error {
				if name, ok := set["name"].(string); ok {
					set["slug"] = slug.Make(name)
				}
				return nil
			},
			Virtuals: func(doc map[string]any) {
				idVirtual(doc)
				if d, ok := doc["duration"].(float64); ok {
					doc["durationWeeks"] = d / 7
				}
			},
		},
	}
}

func userSchema() *schema.Schema {
	return &schema.Schema{
		Name:       "User",
		Collection: "users",
		Scope:      map[string]any{"active": map[string]any{"$ne": false}},
		Fields: []schema.Field{
			{Name: "name", Kind: schema.String, Trim: true, Required: true, RequiredMessage: "Please tell us your name!"},
			{
				Name: "email", Kind: schema.String, Required: true, RequiredMessage: "Please provide your email",
				Unique: true, Trim: true, Lowercase: true,
				Pattern: emailPattern, PatternMessage: "Please provide a valid email",
			},
			{Name: "photo", Kind: schema.String, Default: func() any { return "default.jpg" }},
			{
				Name: "role", Kind: schema.String, Default: func() any { return "user" },
				Enum: []string{"user", "guide", "lead-guide", "admin"},
			},
			{
				Name: "password", Kind: schema.String, Required: true, RequiredMessage: "Please provide a password",
				MinLength: 8, Hidden: true, Protected: true,
			},
			{
				Name: "passwordConfirm", Kind: schema.String, Required: true, RequiredMessage: "Please confirm your password",
				Transient: true, Protected: true,
				Checks: []schema.Check{{Fn: matchesPassword, Message: "Passwords are not the same!"}},
			},
			{Name: "passwordChangedAt", Kind: schema.Date, Protected: true},
			{Name: "active", Kind: schema.Bool, Default: func() any { return true }, Hidden: true, Protected: true},
		},
		Hooks: schema.Hooks{
			BeforeInsert: hashPassword,
			Virtuals:     idVirtual,
		},
	}
}

func reviewSchema(users *schema.Schema) *schema.Schema {
	return &schema.Schema{
		Name:       "Review",
		Collection: "reviews",
		Fields: []schema.Field{
			{Name: "review", Kind: schema.String, Required: true, RequiredMessage: "Review can not be empty!"},
			{Name: "rating", Kind: schema.Number, Min: schema.Bound(1), Max: schema.Bound(5)},
			{Name: "createdAt", Kind: schema.Date, Default: now},
			{Name: "tour", Kind: schema.ObjectID, Ref: "tours", Required: true, RequiredMessage: "Review must belong to a tour."},
			{Name: "user", Kind: schema.ObjectID, Ref: users.Collection, Required: true, RequiredMessage: "Review must belong to a user"},
		},
		AutoPopulate: []schema.Populate{
			{Path: "user", Target: users, Select: []string{"name", "photo"}},
		},
		Indexes: []schema.Index{
			{Keys: []schema.IndexKey{{Field: "tour", Value: 1}, {Field: "user", Value: 1}}, Unique: true},
		},
		Hooks: schema.Hooks{Virtuals: idVirtual},
	}
}

func now() any { return time.Now().UTC() }

// roundRating 4.666 -> 4.7
func roundRating(v any) any {
	n, ok := v.(float64)
	if !ok {
		return v
	}
	return decimal.NewFromFloat(n).Round(1).InexactFloat64()
}

// belowPrice solo se puede comparar si el precio viene en el mismo documento.
func belowPrice(v any, doc map[string]any) bool {
	discount, ok := v.(float64)
	if !ok {
		return true
	}
	price, ok := doc["price"].(float64)
	return !ok || discount < price
}

func matchesPassword(v any, doc map[string]any) bool {
	pw, _ := doc["password"].(string)
	return v == pw
}

// hashPassword reemplaza el password plano por su hash. Un valor que ya es un hash bcrypt
// (datos de carga inicial) se conserva.
func hashPassword(doc map[string]any) error {
	pw, ok := doc["password"].(string)
	if !ok || pw == "" {
		return nil
	}
	if _, err := bcrypt.Cost([]byte(pw)); err == nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	doc["password"] = string(hash)
	return nil
}

func idVirtual(doc map[string]any) {
	if id, ok := doc[schema.IDField].(primitive.ObjectID); ok {
		doc["id"] = id.Hex()
	}
}

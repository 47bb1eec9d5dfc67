package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/tours-api/pkg/slug"
)

func TestMake(t *testing.T) {
	cases := []struct{ in, want string }{
		{"The Forest Hiker", "the-forest-hiker"},
		{"  The   Sea Explorer  ", "the-sea-explorer"},
		{"Café Crème à Paris", "cafe-creme-a-paris"},
		{"Tour #1: Snow-Adventurer", "tour-1-snow-adventurer"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, slug.Make(c.in), c.in)
	}
}

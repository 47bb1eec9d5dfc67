package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/microcosm-cc/bluemonday"

	"github.com/jhoicas/tours-api/internal/domain"
)

// Mensajes del pipeline de seguridad.
const (
	MsgTooManyRequests = "Too many requests from this IP, please try again in an hour!"
	MsgInvalidJSON     = "Invalid JSON body"
	MsgUnsupportedBody = "Request body must be sent as application/json"
)

// HPPWhitelist claves de query que admiten varios valores (se traducen a $in).
var HPPWhitelist = []string{"duration", "ratingsQuantity", "ratingsAverage", "maxGroupSize", "difficulty", "price"}

// RateLimit limitador por IP con ventana deslizante. storage guarda los contadores
// (compartido por todo el proceso).
func RateLimit(max int, window time.Duration, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return domain.NewAppError(MsgTooManyRequests, fiber.StatusTooManyRequests)
		},
		Storage:           storage,
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

// Sanitize elimina de la query las claves con `$` y del cuerpo JSON las claves que empiezan con `$`
// o contienen `.`; los textos con marcado HTML se limpian con bluemonday. Un cuerpo que no se
// declara JSON se rechaza con 415: ningún handler decodifica lo que no pasó por aquí.
func Sanitize() fiber.Handler {
	policy := bluemonday.StrictPolicy()
	return func(c *fiber.Ctx) error {
		sanitizeQuery(c, policy)

		body := c.Body()
		if len(body) == 0 {
			return c.Next()
		}
		if err := requireJSON(c); err != nil {
			return err
		}
		var v any
		if err := c.App().Config().JSONDecoder(body, &v); err != nil {
			return domain.WrapAppError(err, MsgInvalidJSON, fiber.StatusBadRequest)
		}
		out, err := c.App().Config().JSONEncoder(sanitizeValue(policy, v))
		if err != nil {
			return err
		}
		c.Request().SetBody(out)
		return c.Next()
	}
}

// requireJSON falla si hay cuerpo y su Content-Type no es JSON.
func requireJSON(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return nil
	}
	ct := strings.ToLower(string(c.Request().Header.ContentType()))
	if !strings.Contains(ct, "json") {
		return domain.NewAppError(MsgUnsupportedBody, fiber.StatusUnsupportedMediaType)
	}
	return nil
}

func sanitizeQuery(c *fiber.Ctx, policy *bluemonday.Policy) {
	type pair struct{ key, value string }
	args := c.Context().QueryArgs()
	var (
		pairs   []pair
		changed bool
	)
	args.VisitAll(func(k, v []byte) {
		key, val := string(k), string(v)
		if strings.Contains(key, "$") {
			changed = true
			return
		}
		clean := sanitizeString(policy, val)
		changed = changed || clean != val
		pairs = append(pairs, pair{key, clean})
	})
	if !changed {
		return
	}
	args.Reset()
	for _, p := range pairs {
		args.Add(p.key, p.value)
	}
}

func sanitizeValue(policy *bluemonday.Policy, v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
				continue
			}
			out[k] = sanitizeValue(policy, val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = sanitizeValue(policy, val)
		}
		return out
	case string:
		return sanitizeString(policy, t)
	}
	return v
}

// sanitizeString solo toca textos con '<' para no escapar entidades en texto plano.
func sanitizeString(policy *bluemonday.Policy, s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	return policy.Sanitize(s)
}

// HPP protección contra contaminación de parámetros: una clave repetida que no está en la lista
// blanca conserva solo su último valor.
func HPP(whitelist ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(whitelist))
	for _, k := range whitelist {
		allowed[k] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		args := c.Context().QueryArgs()
		counts := map[string]int{}
		args.VisitAll(func(k, _ []byte) {
			counts[string(k)]++
		})
		for key, n := range counts {
			if n < 2 {
				continue
			}
			field, _, _ := strings.Cut(key, "[")
			if _, ok := allowed[field]; ok {
				continue
			}
			values := args.PeekMulti(key)
			last := string(values[len(values)-1])
			args.Del(key)
			args.Add(key, last)
		}
		return c.Next()
	}
}

// AliasTopTours preconfigura la query de los cinco tours mejor calificados y más baratos.
func AliasTopTours(c *fiber.Ctx) error {
	args := c.Context().QueryArgs()
	args.Set("limit", "5")
	args.Set("sort", "-ratingsAverage,price")
	args.Set("fields", "name,price,ratingsAverage,summary,difficulty")
	return c.Next()
}

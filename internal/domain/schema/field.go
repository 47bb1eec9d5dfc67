package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// rule devuelve un mensaje de error si el valor no cumple, o "" si cumple.
type rule func(v any, doc map[string]any) string

// Formatos de fecha aceptados en cuerpos y query strings.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
}

func compileRules(f *Field) []rule {
	var rules []rule
	if f.Min != nil {
		min, msg := *f.Min, f.MinMessage
		if msg == "" {
			msg = fmt.Sprintf("Path `%s` ({VALUE}) is less than minimum allowed value (%s).", f.Name, formatNumber(min))
		}
		rules = append(rules, func(v any, _ map[string]any) string {
			if n, ok := v.(float64); ok && n < min {
				return withValue(msg, v)
			}
			return ""
		})
	}
	if f.Max != nil {
		max, msg := *f.Max, f.MaxMessage
		if msg == "" {
			msg = fmt.Sprintf("Path `%s` ({VALUE}) is more than maximum allowed value (%s).", f.Name, formatNumber(max))
		}
		rules = append(rules, func(v any, _ map[string]any) string {
			if n, ok := v.(float64); ok && n > max {
				return withValue(msg, v)
			}
			return ""
		})
	}
	if f.MinLength > 0 {
		n, msg := f.MinLength, f.MinLengthMessage
		if msg == "" {
			msg = fmt.Sprintf("Path `%s` (`{VALUE}`) is shorter than the minimum allowed length (%d).", f.Name, n)
		}
		rules = append(rules, func(v any, _ map[string]any) string {
			if s, ok := v.(string); ok && len([]rune(s)) < n {
				return withValue(msg, v)
			}
			return ""
		})
	}
	if f.MaxLength > 0 {
		n, msg := f.MaxLength, f.MaxLengthMessage
		if msg == "" {
			msg = fmt.Sprintf("Path `%s` (`{VALUE}`) is longer than the maximum allowed length (%d).", f.Name, n)
		}
		rules = append(rules, func(v any, _ map[string]any) string {
			if s, ok := v.(string); ok && len([]rune(s)) > n {
				return withValue(msg, v)
			}
			return ""
		})
	}
	if len(f.Enum) > 0 {
		allowed := make(map[string]struct{}, len(f.Enum))
		for _, e := range f.Enum {
			allowed[e] = struct{}{}
		}
		msg := f.EnumMessage
		if msg == "" {
			msg = "`{VALUE}` is not a valid enum value for path `" + f.Name + "`."
		}
		rules = append(rules, func(v any, _ map[string]any) string {
			if s, ok := v.(string); ok {
				if _, ok := allowed[s]; !ok {
					return withValue(msg, v)
				}
			}
			return ""
		})
	}
	if f.Pattern != nil {
		re, msg := f.Pattern, f.PatternMessage
		if msg == "" {
			msg = "Validator failed for path `" + f.Name + "` with value `{VALUE}`"
		}
		rules = append(rules, func(v any, _ map[string]any) string {
			if s, ok := v.(string); ok && !re.MatchString(s) {
				return withValue(msg, v)
			}
			return ""
		})
	}
	for _, c := range f.Checks {
		c := c
		msg := c.Message
		if msg == "" {
			msg = "Validator failed for path `" + f.Name + "` with value `{VALUE}`"
		}
		rules = append(rules, func(v any, doc map[string]any) string {
			if !c.Fn(v, doc) {
				return withValue(msg, v)
			}
			return ""
		})
	}
	return rules
}

func (f *Field) requiredMessage() string {
	if f.RequiredMessage != "" {
		return f.RequiredMessage
	}
	return "Path `" + f.Name + "` is required."
}

func (f *Field) castMessage(raw any) string {
	return fmt.Sprintf("Cast to %s failed for value \"%v\" at path \"%s\"", f.Kind, raw, f.Name)
}

// cast convierte un valor decodificado de JSON al tipo almacenado del campo y aplica setters.
func (f *Field) cast(raw any) (any, error) {
	var (
		v   any
		err error
	)
	switch f.Kind {
	case String:
		var s string
		s, err = toString(raw)
		if f.Trim {
			s = strings.TrimSpace(s)
		}
		if f.Lowercase {
			s = strings.ToLower(s)
		}
		v = s
	case Number:
		v, err = toNumber(raw)
	case Bool:
		v, err = toBool(raw)
	case Date:
		v, err = toDate(raw)
	case ObjectID:
		v, err = toObjectID(raw)
	case StringList:
		v, err = castList(raw, toString)
	case DateList:
		v, err = castList(raw, toDate)
	case ObjectIDList:
		v, err = castList(raw, toObjectID)
	case Point:
		v, err = toPoint(raw)
	case PointList:
		v, err = castList(raw, toPoint)
	default:
		v = raw
	}
	if err != nil {
		return nil, err
	}
	if f.Set != nil {
		v = f.Set(v)
	}
	return v, nil
}

// castScalar convierte un valor textual de query string al tipo del campo (o de sus elementos).
func (f *Field) castScalar(raw string) (any, error) {
	switch f.Kind {
	case Number:
		return toNumber(raw)
	case Bool:
		return toBool(raw)
	case Date, DateList:
		return toDate(raw)
	case ObjectID, ObjectIDList:
		return toObjectID(raw)
	case String:
		if f.Lowercase {
			return strings.ToLower(raw), nil
		}
		return raw, nil
	default:
		return raw, nil
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

func toString(raw any) (string, error) {
	switch t := raw.(type) {
	case string:
		return t, nil
	case float64:
		return formatNumber(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	}
	return "", fmt.Errorf("no es un string: %T", raw)
}

func toNumber(raw any) (float64, error) {
	switch t := raw.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("no es un número: %q", t)
		}
		return n, nil
	}
	return 0, fmt.Errorf("no es un número: %T", raw)
}

func toBool(raw any) (bool, error) {
	switch t := raw.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(t)
	case float64:
		if t == 0 || t == 1 {
			return t == 1, nil
		}
	}
	return false, fmt.Errorf("no es un booleano: %v", raw)
}

func toDate(raw any) (time.Time, error) {
	switch t := raw.(type) {
	case time.Time:
		return t.UTC(), nil
	case primitive.DateTime:
		return t.Time().UTC(), nil
	case float64:
		return time.UnixMilli(int64(t)).UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("fecha inválida: %q", t)
	}
	return time.Time{}, fmt.Errorf("no es una fecha: %T", raw)
}

func toObjectID(raw any) (primitive.ObjectID, error) {
	switch t := raw.(type) {
	case primitive.ObjectID:
		return t, nil
	case string:
		return primitive.ObjectIDFromHex(t)
	}
	return primitive.NilObjectID, fmt.Errorf("no es un ObjectId: %T", raw)
}

func toPoint(raw any) (map[string]any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("punto GeoJSON inválido: %T", raw)
	}
	out := map[string]any{"type": "Point"}
	if t, ok := m["type"]; ok && t != "Point" {
		return nil, fmt.Errorf("tipo GeoJSON no soportado: %v", t)
	}
	coords, ok := m["coordinates"].([]any)
	if !ok || len(coords) != 2 {
		return nil, fmt.Errorf("coordinates debe ser [lng, lat]")
	}
	pair := make([]float64, 2)
	for i, c := range coords {
		n, err := toNumber(c)
		if err != nil {
			return nil, err
		}
		pair[i] = n
	}
	out["coordinates"] = pair
	for _, k := range []string{"address", "description"} {
		if v, ok := m[k]; ok {
			s, err := toString(v)
			if err != nil {
				return nil, err
			}
			out[k] = s
		}
	}
	if v, ok := m["day"]; ok {
		n, err := toNumber(v)
		if err != nil {
			return nil, err
		}
		out["day"] = n
	}
	return out, nil
}

// castList convierte cada elemento de una lista JSON; un escalar se trata como lista de un elemento.
func castList[T any](raw any, conv func(any) (T, error)) (any, error) {
	items, ok := raw.([]any)
	if !ok {
		items = []any{raw}
	}
	out := make([]T, 0, len(items))
	for _, e := range items {
		v, err := conv(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func withValue(msg string, v any) string {
	return strings.ReplaceAll(msg, "{VALUE}", formatValue(v))
}

func formatValue(v any) string {
	switch t := v.(type) {
	case float64:
		return formatNumber(t)
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	}
	return fmt.Sprintf("%v", v)
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

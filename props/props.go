// Package props reads and writes halo properties as text, for scripting
// surfaces that exchange either JSON objects or "key=value;key=value"
// strings.
package props

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/gogpu/halo"
	"github.com/gogpu/halo/svg"
	"github.com/gogpu/halo/token"
)

// JSON is the delimiter that selects structured output.
const JSON = "json"

// DefaultDelimiter separates entries of property strings.
const DefaultDelimiter = ";"

const assetScheme = "asset://"

// Error reports a rejected property.
type Error struct {
	Key     string
	Value   string
	Allowed []string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Value == "" && e.Err == nil:
		return fmt.Sprintf("props: unknown key %q, allowed keys: %s", e.Key, strings.Join(e.Allowed, ", "))
	case len(e.Allowed) > 0:
		return fmt.Sprintf("props: illegal %s %q, allowed values: %s", e.Key, e.Value, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("props: bad %s %q: %v", e.Key, e.Value, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrInput is returned when the input is neither an object nor a property
// string.
var ErrInput = errors.New("props: input must be a JSON object or key=value list")

var errNotFinite = errors.New("not a finite number")

type setter func(h *halo.Halo, key string, v any) error

// keys maps canonical keys to their setters; synonyms resolve through
// aliases first.
var keys = map[string]setter{
	"drawing":    setDrawing,
	"filled":     boolSetter((*halo.Halo).SetFilled),
	"isoflip":    boolSetter((*halo.Halo).SetIsoFlipped),
	"facing":     boolSetter((*halo.Halo).SetUseFacing),
	"image":      setImage,
	"opacity":    floatSetter((*halo.Halo).SetOpacity),
	"rotation":   floatSetter((*halo.Halo).SetRotation),
	"scale":      floatSetter((*halo.Halo).SetScaleFactor),
	"stockimage": setStockImage,
	"style":      setStyle,
	"type":       setType,
	"colours":    setColours,
	"filters":    setFilters,
}

var aliases = map[string]string{
	"path":        "drawing",
	"svg":         "drawing",
	"fill":        "filled",
	"flipiso":     "isoflip",
	"usefacing":   "facing",
	"imageid":     "image",
	"assetid":     "image",
	"stock_image": "stockimage",
	"colour":      "colours",
	"color":       "colours",
	"colors":      "colours",
	"filter":      "filters",
}

var fold = cases.Fold()

func canonical(key string) (string, bool) {
	k := fold.String(strings.TrimSpace(key))
	if a, ok := aliases[k]; ok {
		k = a
	}
	_, ok := keys[k]
	return k, ok
}

// Keys lists the canonical property keys.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Apply sets the properties in input on h. input is a map[string]any, a JSON
// object string or a "key=value;key=value" string. Keys ignore case and
// accept synonyms. Either every property is applied or, on error, h is left
// unchanged.
func Apply(h *halo.Halo, input any) error {
	m, err := decode(input)
	if err != nil {
		return err
	}
	work := h.Clone()
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	for _, name := range names {
		k, ok := canonical(name)
		if !ok {
			return &Error{Key: name, Allowed: Keys()}
		}
		if err := keys[k](work, k, m[name]); err != nil {
			return err
		}
	}
	*h = *work
	return nil
}

func decode(input any) (map[string]any, error) {
	switch v := input.(type) {
	case map[string]any:
		return v, nil
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return m, nil
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "{") {
			var m map[string]any
			if err := json.Unmarshal([]byte(s), &m); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInput, err)
			}
			return m, nil
		}
		return parseStrProp(s, DefaultDelimiter)
	}
	return nil, ErrInput
}

func parseStrProp(s, delim string) (map[string]any, error) {
	m := make(map[string]any)
	for _, part := range strings.Split(s, delim) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q has no value", ErrInput, part)
		}
		m[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return m, nil
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// asList splits a comma list or flattens an array.
func asList(v any) []string {
	switch x := v.(type) {
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			out = append(out, asString(e))
		}
		return out
	case []string:
		return slices.Clone(x)
	}
	s := strings.Trim(strings.TrimSpace(asString(v)), "[]")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func boolSetter(set func(*halo.Halo, bool)) setter {
	return func(h *halo.Halo, key string, v any) error {
		var b bool
		switch x := v.(type) {
		case bool:
			b = x
		case float64:
			b = x != 0
		default:
			var err error
			if b, err = strconv.ParseBool(strings.TrimSpace(asString(v))); err != nil {
				return &Error{Key: key, Value: asString(v), Err: err}
			}
		}
		set(h, b)
		return nil
	}
}

func floatSetter(set func(*halo.Halo, float64)) setter {
	return func(h *halo.Halo, key string, v any) error {
		f, ok := v.(float64)
		if !ok {
			var err error
			if f, err = strconv.ParseFloat(strings.TrimSpace(asString(v)), 64); err != nil {
				return &Error{Key: key, Value: asString(v), Err: err}
			}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &Error{Key: key, Value: asString(v), Err: errNotFinite}
		}
		set(h, f)
		return nil
	}
}

func setDrawing(h *halo.Halo, key string, v any) error {
	var paths []string
	if _, isList := v.([]any); isList {
		paths = asList(v)
	} else if s := strings.TrimSpace(asString(v)); s != "" {
		paths = []string{s}
	}
	if len(paths) == 0 {
		h.ClearDrawings()
		return nil
	}
	if err := h.SetDrawings(paths); err != nil {
		return &Error{Key: key, Value: strings.Join(paths, ","), Err: err}
	}
	return nil
}

func setImage(h *halo.Halo, _ string, v any) error {
	h.SetImageID(strings.TrimPrefix(strings.TrimSpace(asString(v)), assetScheme))
	return nil
}

func enumError(key string, v any, err error) error {
	e := &Error{Key: key, Value: asString(v), Err: err}
	var ee *halo.EnumError
	if errors.As(err, &ee) {
		e.Allowed = ee.Allowed
	}
	return e
}

func setStockImage(h *halo.Halo, key string, v any) error {
	id, err := halo.ParseStockImage(asString(v))
	if err == nil {
		err = h.SetStockImage(id)
	}
	if err != nil {
		return enumError(key, v, err)
	}
	return nil
}

func setStyle(h *halo.Halo, key string, v any) error {
	s, err := halo.ParseStyle(asString(v))
	if err == nil {
		err = h.SetStyle(s)
	}
	if err != nil {
		return enumError(key, v, err)
	}
	return nil
}

func setType(h *halo.Halo, key string, v any) error {
	t, err := halo.ParseType(asString(v))
	if err == nil {
		err = h.SetType(t)
	}
	if err != nil {
		return enumError(key, v, err)
	}
	return nil
}

func setColours(h *halo.Halo, _ string, v any) error {
	names := asList(v)
	cs := make([]color.NRGBA, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		cs = append(cs, halo.ResolveColour(n))
	}
	h.SetColours(cs)
	return nil
}

func setFilters(h *halo.Halo, key string, v any) error {
	names := asList(v)
	for _, n := range names {
		if _, ok := svg.LookupFilter(n); !ok {
			return &Error{Key: key, Value: n, Allowed: svg.Filters()}
		}
	}
	h.SetFilters(names)
	return nil
}

// SetColour replaces the colour list of h with the single colour name.
func SetColour(h *halo.Halo, name string) {
	h.SetColours([]color.NRGBA{halo.ResolveColour(name)})
}

// TokenColour returns the token's halo colour as "#rrggbb", or "None".
func TokenColour(t *token.Token) string {
	if t.HaloColour == nil {
		return "None"
	}
	c := *t.HaloColour
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// SetTokenColour sets the token's halo colour. An empty value, "none" or
// "default" clears it.
func SetTokenColour(t *token.Token, value string) {
	switch v := strings.TrimSpace(value); {
	case v == "", strings.EqualFold(v, "none"), strings.EqualFold(v, "default"):
		t.HaloColour = nil
	default:
		c := halo.ResolveColour(v)
		t.HaloColour = &c
	}
}

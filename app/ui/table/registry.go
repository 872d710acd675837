package table

import (
	"adminctl/app/dto"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Placeholder is rendered for missing values.
const Placeholder = "—"

type Renderer[T any] func(row *T) string

type Column[T any] struct {
	Key      string
	Header   string
	Sortable bool
	Render   Renderer[T]
}

// Registry maps column keys to renderers. Server column configs are turned
// into concrete columns through it; unknown keys fall back to the raw field
// value of the row.
type Registry[T any] struct {
	mu        sync.RWMutex
	renderers map[string]Renderer[T]
	defaults  []Column[T]
	actions   *Column[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		renderers: make(map[string]Renderer[T]),
	}
}

func (r *Registry[T]) Register(key string, renderer Renderer[T]) *Registry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.renderers[key] = renderer

	return r
}

// WithDefaults sets the columns used when the server sends no config.
func (r *Registry[T]) WithDefaults(columns ...Column[T]) *Registry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.defaults = columns

	return r
}

// WithActions appends an actions column to every generated set.
func (r *Registry[T]) WithActions(column Column[T]) *Registry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.actions = &column

	return r
}

func (r *Registry[T]) Lookup(key string) Renderer[T] {
	r.mu.RLock()
	renderer, ok := r.renderers[key]
	r.mu.RUnlock()

	if ok {
		return renderer
	}

	return FieldRenderer[T](key)
}

// Generate builds the visible columns from server configs. Hidden configs
// are skipped; an empty config list yields the defaults.
func (r *Registry[T]) Generate(configs []dto.ColumnConfig) []Column[T] {
	r.mu.RLock()
	defaults := r.defaults
	actions := r.actions
	r.mu.RUnlock()

	var columns []Column[T]

	if len(configs) == 0 {
		columns = append(columns, defaults...)
		for i := range columns {
			if columns[i].Render == nil {
				columns[i].Render = r.Lookup(columns[i].Key)
			}
		}
	} else {
		for _, cfg := range configs {
			if !cfg.Show {
				continue
			}

			key := cfg.EffectiveKey()
			header := cfg.Label
			if header == "" {
				header = Capitalize(key)
			}

			columns = append(columns, Column[T]{
				Key:      key,
				Header:   header,
				Sortable: cfg.Sortable,
				Render:   r.Lookup(key),
			})
		}
	}

	if actions != nil {
		columns = append(columns, *actions)
	}

	return columns
}

// FieldRenderer renders the json field key of the row as plain text.
func FieldRenderer[T any](key string) Renderer[T] {
	return func(row *T) string {
		if row == nil {
			return Placeholder
		}

		data, err := json.Marshal(row)
		if err != nil {
			return Placeholder
		}

		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			return Placeholder
		}

		return FormatValue(fields[key])
	}
}

func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return Placeholder
	case string:
		if v == "" {
			return Placeholder
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// Capitalize upper-cases the first letter and turns separators into
// spaces: "log_name" becomes "Log name".
func Capitalize(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	if s == "" {
		return s
	}

	first, size := utf8.DecodeRuneInString(s)

	return string(unicode.ToUpper(first)) + s[size:]
}
